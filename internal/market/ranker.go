package market

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/rickgao/coinanalysis/internal/exchange"
	"github.com/rickgao/coinanalysis/internal/model"
)

// Ranker lists and ranks markets. It keeps no state between calls; every call makes
// exactly one listing request.
type Ranker struct {
	ex     Exchange
	logger *slog.Logger
	opts   []SnapshotOption
}

// NewRanker creates a Ranker. opts are applied to every Snapshot it returns.
func NewRanker(ex Exchange, logger *slog.Logger, opts ...SnapshotOption) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{
		ex:     ex,
		logger: logger,
		opts:   append([]SnapshotOption{WithLogger(logger)}, opts...),
	}
}

// TopByVolume returns the n markets with the highest 24h volume, highest first.
// useBaseVolume ranks by volume in the basis asset instead of the code asset. A
// non-empty basis keeps only markets priced in that asset. Markets with equal volume
// keep their listing order. n <= 0 returns an empty slice without a request.
func (r *Ranker) TopByVolume(ctx context.Context, n int, useBaseVolume bool, basis string) ([]*Snapshot, error) {
	if n <= 0 {
		return []*Snapshot{}, nil
	}

	env, err := r.ex.MarketSummaries(ctx)
	if err := responseErr(exchange.EndpointMarketSummaries, "", env, err); err != nil {
		return nil, fmt.Errorf("top markets by volume: %w", err)
	}

	var summaries []exchange.APIMarketSummary
	if err := env.Decode(&summaries); err != nil {
		return nil, err
	}

	ranked := make([]model.RankedMarket, 0, len(summaries))
	for _, s := range summaries {
		pair, err := model.ParsePair(s.MarketName)
		if err != nil {
			return nil, err
		}
		if basis != "" && pair.Basis != basis {
			continue
		}

		volume := s.Volume
		if useBaseVolume {
			volume = s.BaseVolume
		}
		ranked = append(ranked, model.RankedMarket{Volume: volume, Name: s.MarketName})
	}

	slices.SortStableFunc(ranked, func(a, b model.RankedMarket) int {
		return b.Volume.Cmp(a.Volume)
	})

	if n > len(ranked) {
		n = len(ranked)
	}

	names := make([]string, n)
	for i, rm := range ranked[:n] {
		names[i] = rm.Name
	}

	r.logger.Debug("ranked markets",
		"listed", len(summaries),
		"matched", len(ranked),
		"returned", n,
		"basis", basis,
		"base_volume", useBaseVolume,
	)

	return r.snapshots(names)
}

// ListMarkets returns the markets whose active flag equals activeOnly. When listing
// inactive markets, each market's notice is logged at Info level.
func (r *Ranker) ListMarkets(ctx context.Context, activeOnly bool) ([]*Snapshot, error) {
	env, err := r.ex.Markets(ctx)
	if err := responseErr(exchange.EndpointMarkets, "", env, err); err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	var wire []exchange.APIMarket
	if err := env.Decode(&wire); err != nil {
		return nil, err
	}

	var names []string
	for i := range wire {
		listing, err := wire[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("list markets %s: %w", wire[i].MarketName, err)
		}
		if listing.IsActive != activeOnly {
			continue
		}
		if !listing.IsActive {
			r.logger.Info("inactive market",
				"market", listing.MarketName,
				"notice", listing.Notice,
			)
		}
		names = append(names, listing.MarketName)
	}

	return r.snapshots(names)
}

func (r *Ranker) snapshots(names []string) ([]*Snapshot, error) {
	out := make([]*Snapshot, 0, len(names))
	for _, name := range names {
		s, err := NewSnapshot(name, r.ex, r.opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
