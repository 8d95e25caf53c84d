package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rickgao/coinanalysis/internal/chart"
	"github.com/rickgao/coinanalysis/internal/poller"
	"github.com/rickgao/coinanalysis/internal/version"
)

func newTopCmd(a *app) *cobra.Command {
	var (
		n          int
		baseVolume bool
		basis      string
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the markets with the highest 24h volume",
		Long: `List the markets with the highest 24h volume, highest first.

Examples:
  coinanalysis top
  coinanalysis top --n 5 --basis BTC
  coinanalysis top --base-volume=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("n") {
				n = a.cfg.Ranker.TopN
			}
			if !cmd.Flags().Changed("base-volume") {
				baseVolume = a.cfg.Ranker.BaseVolume()
			}
			if !cmd.Flags().Changed("basis") {
				basis = a.cfg.Ranker.Basis
			}

			snaps, err := a.ranker().TopByVolume(cmd.Context(), n, baseVolume, basis)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, s := range snaps {
				fmt.Fprintf(out, "%d\t%s\n", i+1, s.Name())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "n", 0, "number of markets (default from ranker.top_n)")
	cmd.Flags().BoolVar(&baseVolume, "base-volume", true, "rank by volume in the basis asset")
	cmd.Flags().StringVar(&basis, "basis", "", "only markets priced in this asset, e.g. BTC")

	return cmd
}

func newMarketsCmd(a *app) *cobra.Command {
	var inactive bool

	cmd := &cobra.Command{
		Use:   "markets",
		Short: "List active or inactive markets",
		Long: `List active markets, or inactive ones with --inactive. Notices of inactive
markets are written to the log at info level.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := a.ranker().ListMarkets(cmd.Context(), !inactive)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range snaps {
				fmt.Fprintln(out, s.Name())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&inactive, "inactive", false, "list inactive markets instead")

	return cmd
}

func newTickerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ticker MARKET...",
		Short: "Print the last, bid and ask price of markets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 1, ' ', 0)
			for _, name := range args {
				s, err := a.snapshot(name)
				if err != nil {
					return err
				}
				if _, err := s.Ticker(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(w, s.String())
			}
			return w.Flush()
		},
	}
}

func newLedgerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ledger [MARKET...]",
		Short: "Print ledger-cli price entries",
		Long: `Print one ledger-cli pricedb entry per market, using the last traded price.
Without arguments the markets come from poller.markets.

Example:
  coinanalysis ledger BTC-LTC USDT-BTC >> prices.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.pollMarkets(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			handler := poller.HandlerFunc(func(e poller.Entry) error {
				_, err := fmt.Fprintln(out, e.Line)
				return err
			})

			p := poller.New(a.pollerConfig(), a.client, poller.StaticMarkets(names), handler, a.logger, a.snapshotOptions()...)
			res := p.PollOnce(cmd.Context())
			if res.Errors > 0 {
				return fmt.Errorf("%d of %d markets failed", res.Errors, res.Markets)
			}
			return nil
		},
	}
}

func newChartCmd(a *app) *cobra.Command {
	var (
		window int
		output string
	)

	cmd := &cobra.Command{
		Use:   "chart MARKET",
		Short: "Render the recent price history of a market",
		Long: `Render the recent trade prices of a market to an image file. The file
extension selects the format (png, svg, pdf, ...).

Examples:
  coinanalysis chart BTC-LTC
  coinanalysis chart USDT-BTC --window 10 --out btc.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.snapshot(args[0])
			if err != nil {
				return err
			}

			opts := chart.Options{
				Window: a.cfg.Chart.Window,
				Width:  a.cfg.Chart.Width,
				Height: a.cfg.Chart.Height,
				Output: a.cfg.Chart.Output,
			}
			if cmd.Flags().Changed("window") {
				opts.Window = window
			}
			if cmd.Flags().Changed("out") {
				opts.Output = output
			}

			if err := chart.Render(cmd.Context(), s, opts); err != nil {
				return err
			}
			a.logger.Info("chart written", "market", s.Name(), "output", opts.Output)
			return nil
		},
	}

	cmd.Flags().IntVar(&window, "window", 0, "rolling mean window in trades (default from chart.window)")
	cmd.Flags().StringVar(&output, "out", "", "output file (default from chart.output)")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "coinanalysis "+version.String())
		},
	}
}

func (a *app) pollerConfig() poller.Config {
	return poller.Config{
		Interval:    a.cfg.Poller.Interval,
		Concurrency: a.cfg.Poller.Concurrency,
		Timeout:     a.cfg.Poller.Timeout,
	}
}
