package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/coinanalysis/internal/market"
)

// MarketSource provides the market names to poll.
type MarketSource interface {
	Markets() []string
}

// StaticMarkets is a fixed MarketSource.
type StaticMarkets []string

func (s StaticMarkets) Markets() []string { return s }

// Entry is one polled ledger price line.
type Entry struct {
	Market string
	Line   string
}

// Handler receives polled entries.
type Handler interface {
	HandleEntry(entry Entry) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(Entry) error

func (f HandlerFunc) HandleEntry(e Entry) error {
	return f(e)
}

// Config holds poller configuration.
type Config struct {
	Interval    time.Duration // Poll interval (default: 1m)
	Concurrency int           // Max concurrent markets (default: 4)
	Timeout     time.Duration // Per-market timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:    time.Minute,
		Concurrency: 4,
		Timeout:     10 * time.Second,
	}
}

// CycleResult summarizes one poll cycle.
type CycleResult struct {
	Markets int
	Fetched int
	Errors  int
}

// Poller periodically fetches ledger price entries.
type Poller struct {
	cfg      Config
	ex       market.Exchange
	markets  MarketSource
	handler  Handler
	logger   *slog.Logger
	snapOpts []market.SnapshotOption

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. snapOpts are applied to the snapshots built each cycle.
func New(cfg Config, ex market.Exchange, markets MarketSource, handler Handler, logger *slog.Logger, snapOpts ...market.SnapshotOption) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Poller{
		cfg:      cfg,
		ex:       ex,
		markets:  markets,
		handler:  handler,
		logger:   logger,
		snapOpts: append([]market.SnapshotOption{market.WithLogger(logger)}, snapOpts...),
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run(ctx)

	p.logger.Info("price poller started",
		"interval", p.cfg.Interval,
		"concurrency", p.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("price poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.PollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

// PollOnce runs a single cycle. Per-market failures are logged and counted; they do
// not stop the other markets. Entries reach the handler in MarketSource order.
func (p *Poller) PollOnce(ctx context.Context) CycleResult {
	start := time.Now()

	names := p.markets.Markets()
	result := CycleResult{Markets: len(names)}
	if len(names) == 0 {
		p.logger.Debug("no markets to poll")
		return result
	}

	lines := make([]string, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(p.cfg.Concurrency)

	for i, name := range names {
		if ctx.Err() != nil {
			errs[i] = ctx.Err()
			continue
		}
		i, name := i, name
		g.Go(func() error {
			lines[i], errs[i] = p.pollMarket(ctx, name)
			return nil
		})
	}

	_ = g.Wait()

	for i, name := range names {
		if errs[i] != nil {
			p.logger.Warn("failed to poll market",
				"market", name,
				"err", errs[i],
			)
			result.Errors++
			continue
		}

		if p.handler != nil {
			if err := p.handler.HandleEntry(Entry{Market: name, Line: lines[i]}); err != nil {
				p.logger.Warn("failed to handle entry",
					"market", name,
					"err", err,
				)
				result.Errors++
				continue
			}
		}
		result.Fetched++
	}

	p.logger.Info("poll cycle complete",
		"markets", result.Markets,
		"fetched", result.Fetched,
		"errors", result.Errors,
		"duration", time.Since(start),
	)

	return result
}

// pollMarket fetches a single market's ledger entry with a fresh snapshot.
func (p *Poller) pollMarket(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	snap, err := market.NewSnapshot(name, p.ex, p.snapOpts...)
	if err != nil {
		return "", fmt.Errorf("poll %s: %w", name, err)
	}

	return snap.LedgerEntry(ctx)
}
