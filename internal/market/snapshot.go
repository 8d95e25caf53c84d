package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/rickgao/coinanalysis/internal/exchange"
	"github.com/rickgao/coinanalysis/internal/model"
)

// DefaultDepth is the orderbook depth requested when a caller passes depth <= 0.
const DefaultDepth = 20

// Snapshot is a lazily populated, memoized view of one market.
//
// Orderbook depth is only honored by the call that populates the field. Later calls
// return the cached book whatever depth they ask for.
type Snapshot struct {
	name   string
	pair   model.TradingPair
	ex     Exchange
	logger *slog.Logger

	defaultDepth int
	now          func() time.Time

	summary        lazy[model.MarketSummary]
	ticker         lazy[model.Ticker]
	history        lazy[[]model.TradeRecord]
	buyOrderbook   lazy[[]model.OrderLevel]
	sellOrderbook  lazy[[]model.OrderLevel]
	bothOrderbooks lazy[model.Orderbook]
}

// SnapshotOption configures a Snapshot.
type SnapshotOption func(*Snapshot)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SnapshotOption {
	return func(s *Snapshot) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultDepth sets the depth used when an orderbook accessor gets depth <= 0.
func WithDefaultDepth(depth int) SnapshotOption {
	return func(s *Snapshot) {
		if depth > 0 {
			s.defaultDepth = depth
		}
	}
}

// WithClock sets the time source used for ledger entries.
func WithClock(now func() time.Time) SnapshotOption {
	return func(s *Snapshot) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSnapshot creates an unfetched Snapshot for the market name (e.g. "BTC-LTC").
// No request is made until a field is accessed.
func NewSnapshot(name string, ex Exchange, opts ...SnapshotOption) (*Snapshot, error) {
	if ex == nil {
		return nil, errors.New("new snapshot: exchange is required")
	}

	pair, err := model.ParsePair(name)
	if err != nil {
		return nil, fmt.Errorf("new snapshot: %w", err)
	}

	s := &Snapshot{
		name:         name,
		pair:         pair,
		ex:           ex,
		logger:       slog.Default(),
		defaultDepth: DefaultDepth,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Name returns the market name.
func (s *Snapshot) Name() string { return s.name }

// Pair returns the parsed trading pair.
func (s *Snapshot) Pair() model.TradingPair { return s.pair }

// Fetched reports whether a field has been populated.
func (s *Snapshot) Fetched(f Field) bool {
	switch f {
	case FieldSummary:
		return s.summary.fetched
	case FieldTicker:
		return s.ticker.fetched
	case FieldHistory:
		return s.history.fetched
	case FieldBuyOrderbook:
		return s.buyOrderbook.fetched
	case FieldSellOrderbook:
		return s.sellOrderbook.fetched
	case FieldBothOrderbooks:
		return s.bothOrderbooks.fetched
	default:
		return false
	}
}

// Summary returns the market's 24h summary.
func (s *Snapshot) Summary(ctx context.Context) (model.MarketSummary, error) {
	return s.summary.get(func() (model.MarketSummary, error) {
		env, err := s.ex.MarketSummary(ctx, s.name)

		var wire []exchange.APIMarketSummary
		if err := s.decode(exchange.EndpointMarketSummary, env, err, &wire); err != nil {
			return model.MarketSummary{}, err
		}
		if len(wire) == 0 {
			return model.MarketSummary{}, &model.MalformedDataError{
				Field: "result",
				Value: "[]",
				Err:   errors.New("market summary list is empty"),
			}
		}

		summary, err := wire[0].ToModel()
		if err != nil {
			return model.MarketSummary{}, err
		}
		s.logFetched(FieldSummary)
		return summary, nil
	})
}

// Ticker returns the market's last, bid and ask prices.
func (s *Snapshot) Ticker(ctx context.Context) (model.Ticker, error) {
	return s.ticker.get(func() (model.Ticker, error) {
		env, err := s.ex.Ticker(ctx, s.name)

		var wire exchange.APITicker
		if err := s.decode(exchange.EndpointTicker, env, err, &wire); err != nil {
			return model.Ticker{}, err
		}
		s.logFetched(FieldTicker)
		return wire.ToModel(), nil
	})
}

// History returns the latest trades in exchange order.
func (s *Snapshot) History(ctx context.Context) ([]model.TradeRecord, error) {
	records, err := s.history.get(func() ([]model.TradeRecord, error) {
		env, err := s.ex.MarketHistory(ctx, s.name)

		var wire []exchange.APITrade
		if err := s.decode(exchange.EndpointMarketHistory, env, err, &wire); err != nil {
			return nil, err
		}

		records, err := exchange.TradesToModel(wire)
		if err != nil {
			return nil, fmt.Errorf("market history %s: %w", s.name, err)
		}
		s.logFetched(FieldHistory, "trades", len(records))
		return records, nil
	})
	return slices.Clone(records), err
}

// PriceTimeSeries returns one (time, price) point per history record, in history
// order. The exchange lists trades newest first.
func (s *Snapshot) PriceTimeSeries(ctx context.Context) ([]model.PricePoint, error) {
	records, err := s.History(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]model.PricePoint, len(records))
	for i, r := range records {
		points[i] = model.PricePoint{Time: r.Timestamp, Price: r.Price}
	}
	return points, nil
}

// BuyOrderbook returns the bid side of the book.
func (s *Snapshot) BuyOrderbook(ctx context.Context, depth int) ([]model.OrderLevel, error) {
	levels, err := s.buyOrderbook.get(func() ([]model.OrderLevel, error) {
		return s.fetchSide(ctx, exchange.OrderbookBuy, FieldBuyOrderbook, depth)
	})
	return slices.Clone(levels), err
}

// SellOrderbook returns the ask side of the book.
func (s *Snapshot) SellOrderbook(ctx context.Context, depth int) ([]model.OrderLevel, error) {
	levels, err := s.sellOrderbook.get(func() ([]model.OrderLevel, error) {
		return s.fetchSide(ctx, exchange.OrderbookSell, FieldSellOrderbook, depth)
	})
	return slices.Clone(levels), err
}

// BothOrderbooks returns both sides of the book from a single request.
// It is cached independently of BuyOrderbook and SellOrderbook.
func (s *Snapshot) BothOrderbooks(ctx context.Context, depth int) (model.Orderbook, error) {
	ob, err := s.bothOrderbooks.get(func() (model.Orderbook, error) {
		env, err := s.ex.Orderbook(ctx, s.name, exchange.OrderbookBoth, s.depth(depth))

		var wire exchange.APIOrderbook
		if err := s.decode(exchange.EndpointOrderbook, env, err, &wire); err != nil {
			return model.Orderbook{}, err
		}
		s.logFetched(FieldBothOrderbooks, "depth", s.depth(depth))
		return wire.ToModel(), nil
	})
	return model.Orderbook{Buy: slices.Clone(ob.Buy), Sell: slices.Clone(ob.Sell)}, err
}

// Prefetch populates every field in turn, stopping at the first error.
func (s *Snapshot) Prefetch(ctx context.Context, depth int) error {
	steps := []struct {
		field Field
		fetch func() error
	}{
		{FieldSummary, func() error { _, err := s.Summary(ctx); return err }},
		{FieldHistory, func() error { _, err := s.History(ctx); return err }},
		{FieldTicker, func() error { _, err := s.Ticker(ctx); return err }},
		{FieldBuyOrderbook, func() error { _, err := s.BuyOrderbook(ctx, depth); return err }},
		{FieldSellOrderbook, func() error { _, err := s.SellOrderbook(ctx, depth); return err }},
		{FieldBothOrderbooks, func() error { _, err := s.BothOrderbooks(ctx, depth); return err }},
	}

	for _, step := range steps {
		if err := step.fetch(); err != nil {
			return fmt.Errorf("prefetch %s %s: %w", s.name, step.field, err)
		}
	}
	return nil
}

// String returns the market name, followed by the ticker if it has been fetched.
// It never issues a request.
func (s *Snapshot) String() string {
	if !s.ticker.fetched {
		return s.name
	}
	t := s.ticker.value
	return fmt.Sprintf("%s\tLast=%s Bid=%s Ask=%s", s.name, t.Last, t.Bid, t.Ask)
}

func (s *Snapshot) fetchSide(ctx context.Context, side exchange.OrderbookSide, field Field, depth int) ([]model.OrderLevel, error) {
	env, err := s.ex.Orderbook(ctx, s.name, side, s.depth(depth))

	var wire []exchange.APIOrderLevel
	if err := s.decode(exchange.EndpointOrderbook, env, err, &wire); err != nil {
		return nil, err
	}
	s.logFetched(field, "depth", s.depth(depth))
	return exchange.LevelsToModel(wire), nil
}

// decode maps a boundary response to either a decoded payload or an error.
func (s *Snapshot) decode(endpoint string, env *exchange.Envelope, err error, out any) error {
	if err := responseErr(endpoint, s.name, env, err); err != nil {
		if model.IsUpstream(err) {
			s.logger.Warn("exchange request failed",
				"market", s.name,
				"endpoint", endpoint,
				"message", env.Message,
			)
		}
		return err
	}
	return env.Decode(out)
}

func (s *Snapshot) depth(depth int) int {
	if depth <= 0 {
		return s.defaultDepth
	}
	return depth
}

func (s *Snapshot) logFetched(field Field, args ...any) {
	s.logger.Debug("market field fetched",
		append([]any{"market", s.name, "field", field.String()}, args...)...,
	)
}
