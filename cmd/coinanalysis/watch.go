package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rickgao/coinanalysis/internal/config"
	"github.com/rickgao/coinanalysis/internal/poller"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch [MARKET...]",
		Short: "Print ledger price entries on an interval until interrupted",
		Long: `Poll markets on an interval and print one ledger-cli price entry per market
per cycle. Without arguments the markets come from poller.markets. When a metrics
address is set, Prometheus metrics and a health endpoint are served on it.

Examples:
  coinanalysis watch BTC-LTC --interval 30s
  coinanalysis watch --metrics-addr :9090 >> prices.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := a.pollMarkets(args)
			if err != nil {
				return err
			}

			cfg := a.pollerConfig()
			if cmd.Flags().Changed("interval") {
				if interval <= 0 {
					return fmt.Errorf("--interval must be > 0, got %s", interval)
				}
				cfg.Interval = interval
			}
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.Metrics.Addr = metricsAddr
				if err := a.cfg.Validate(); err != nil {
					return fmt.Errorf("validate config: %w", err)
				}
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var lastCycle atomic.Int64
			handler := poller.HandlerFunc(func(e poller.Entry) error {
				lastCycle.Store(time.Now().Unix())
				_, err := fmt.Fprintln(out, e.Line)
				return err
			})

			var server *http.Server
			if a.cfg.Metrics.Addr != "" {
				a.registry.MustRegister(
					collectors.NewGoCollector(),
					collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
				)
				server = &http.Server{
					Addr:    a.cfg.Metrics.Addr,
					Handler: newMetricsHandler(a.registry, a.cfg.Metrics.Path, &lastCycle, cfg.Interval),
				}
				go func() {
					a.logger.Info("starting metrics server",
						"addr", a.cfg.Metrics.Addr,
						"path", a.cfg.Metrics.Path,
					)
					if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error("metrics server error", "error", err)
					}
				}()
			}

			p := poller.New(cfg, a.client, poller.StaticMarkets(names), handler, a.logger, a.snapshotOptions()...)
			if err := p.Start(ctx); err != nil {
				return err
			}

			a.logger.Info("watching markets",
				"markets", len(names),
				"interval", cfg.Interval,
			)

			<-ctx.Done()
			a.logger.Info("shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := p.Stop(shutdownCtx); err != nil {
				a.logger.Warn("poller did not stop cleanly", "error", err)
			}
			if server != nil {
				if err := server.Shutdown(shutdownCtx); err != nil {
					a.logger.Warn("metrics server did not stop cleanly", "error", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from poller.interval)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve metrics on this address, e.g. :9090 (default from metrics.addr)")

	return cmd
}

// newMetricsHandler serves Prometheus metrics on path and a JSON health report on
// config.HealthPath. Health degrades when no entry was handled for three intervals.
func newMetricsHandler(reg *prometheus.Registry, path string, lastCycle *atomic.Int64, interval time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	mux.HandleFunc(config.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status    string `json:"status"`
			LastEntry string `json:"last_entry,omitempty"`
		}{
			Status: "healthy",
		}

		last := lastCycle.Load()
		switch {
		case last == 0:
			health.Status = "starting"
		case time.Since(time.Unix(last, 0)) > 3*interval:
			health.Status = "degraded"
		}
		if last != 0 {
			health.LastEntry = time.Unix(last, 0).UTC().Format(time.RFC3339)
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(health); err != nil {
			slog.Default().Debug("write health response", "error", err)
		}
	})

	return mux
}
