package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rickgao/coinanalysis/internal/chart"
	"github.com/rickgao/coinanalysis/internal/config"
	"github.com/rickgao/coinanalysis/internal/exchange"
	"github.com/rickgao/coinanalysis/internal/market"
	"github.com/rickgao/coinanalysis/internal/metrics"
)

var _ chart.HistorySource = (*market.Snapshot)(nil)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	logLevel   string
	apiURL     string
}

// app is the composition root built before any subcommand runs.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	client   *exchange.Client
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	a := &app{}

	root := &cobra.Command{
		Use:   "coinanalysis",
		Short: "Inspect Bittrex markets",
		Long: `coinanalysis queries the public Bittrex API. It ranks markets by volume,
lists active and inactive markets, prints tickers and ledger price entries, and
renders price charts from recent trade history.

Configuration is read from an optional YAML file. A .env file in the working
directory is loaded first so the file can reference ${VARIABLES}.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, flags)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (built-in defaults when empty)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.apiURL, "api-url", config.DefaultRestURL, "exchange REST base URL")

	root.AddCommand(
		newTopCmd(a),
		newMarketsCmd(a),
		newTickerCmd(a),
		newLedgerCmd(a),
		newWatchCmd(a),
		newChartCmd(a),
		newVersionCmd(),
	)

	return root
}

// setup loads configuration, applies flag overrides and builds the shared client.
func (a *app) setup(cmd *cobra.Command, flags rootFlags) error {
	cfg, err := config.LoadAndValidate(flags.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if cmd.Flags().Changed("api-url") {
		cfg.API.RestURL = flags.apiURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(a.logger)

	a.registry = prometheus.NewRegistry()
	m, err := metrics.NewExchange(a.registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	a.client = exchange.NewClient(
		cfg.API.RestURL,
		exchange.WithTimeout(cfg.API.Timeout),
		exchange.WithLogger(a.logger),
		exchange.WithMetrics(m),
		exchange.WithUserAgent(cfg.API.UserAgent),
	)
	a.cfg = cfg

	a.logger.Debug("configuration loaded",
		"config", flags.configPath,
		"api_url", cfg.API.RestURL,
		"log_level", cfg.Log.Level,
	)

	return nil
}

func (a *app) snapshotOptions() []market.SnapshotOption {
	return []market.SnapshotOption{
		market.WithLogger(a.logger),
		market.WithDefaultDepth(a.cfg.Snapshot.DefaultDepth),
	}
}

func (a *app) snapshot(name string) (*market.Snapshot, error) {
	return market.NewSnapshot(name, a.client, a.snapshotOptions()...)
}

func (a *app) ranker() *market.Ranker {
	return market.NewRanker(a.client, a.logger, market.WithDefaultDepth(a.cfg.Snapshot.DefaultDepth))
}

// pollMarkets returns args, or the configured poller markets when args is empty.
func (a *app) pollMarkets(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(a.cfg.Poller.Markets) > 0 {
		return a.cfg.Poller.Markets, nil
	}
	return nil, errors.New("no markets given and poller.markets is empty")
}
