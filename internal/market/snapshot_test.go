package market

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/coinanalysis/internal/exchange"
	"github.com/rickgao/coinanalysis/internal/model"
)

func TestNewSnapshot(t *testing.T) {
	t.Run("parses pair", func(t *testing.T) {
		s := mustSnapshot(t, "BTC-LTC", newStub())
		if s.Name() != "BTC-LTC" {
			t.Errorf("Name() = %q, want %q", s.Name(), "BTC-LTC")
		}
		if s.Pair().Basis != "BTC" || s.Pair().Code != "LTC" {
			t.Errorf("Pair() = %+v, want BTC/LTC", s.Pair())
		}
	})

	t.Run("no requests until accessed", func(t *testing.T) {
		ex := fullStub()
		s := mustSnapshot(t, "BTC-LTC", ex)
		for _, f := range []Field{FieldSummary, FieldTicker, FieldHistory, FieldBuyOrderbook, FieldSellOrderbook, FieldBothOrderbooks} {
			if s.Fetched(f) {
				t.Errorf("Fetched(%s) = true, want false", f)
			}
		}
		if ex.total() != 0 {
			t.Errorf("requests = %d, want 0", ex.total())
		}
	})

	t.Run("nil exchange", func(t *testing.T) {
		if _, err := NewSnapshot("BTC-LTC", nil); err == nil {
			t.Fatal("expected error for nil exchange, got nil")
		}
	})

	t.Run("malformed name", func(t *testing.T) {
		for _, name := range []string{"BTCLTC", "BTC-LTC-ETH", ""} {
			_, err := NewSnapshot(name, newStub())
			if !model.IsMalformed(err) {
				t.Errorf("NewSnapshot(%q) = %v, want MalformedDataError", name, err)
			}
		}
	})
}

func TestSnapshot_SummaryMemoized(t *testing.T) {
	ex := fullStub()
	s := mustSnapshot(t, "BTC-LTC", ex)
	ctx := context.Background()

	first, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	second, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if got := ex.calls[exchange.EndpointMarketSummary]; got != 1 {
		t.Errorf("getmarketsummary calls = %d, want 1", got)
	}
	if first.MarketName != second.MarketName || !first.Volume.Equal(second.Volume) {
		t.Errorf("second Summary() = %+v, want %+v", second, first)
	}
	if !first.BaseVolume.Equal(decimal.RequireFromString("47.03987026")) {
		t.Errorf("BaseVolume = %s, want 47.03987026", first.BaseVolume)
	}
	if !s.Fetched(FieldSummary) {
		t.Error("Fetched(summary) = false after success")
	}
	if ex.markets[0] != "BTC-LTC" {
		t.Errorf("requested market = %q, want %q", ex.markets[0], "BTC-LTC")
	}
}

func TestSnapshot_UpstreamFailureNotCached(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		key      string
		endpoint string
		result   string
		fetch    func(context.Context, *Snapshot) error
	}{
		{
			name: "summary", field: FieldSummary,
			key: exchange.EndpointMarketSummary, endpoint: exchange.EndpointMarketSummary, result: summaryJSON,
			fetch: func(ctx context.Context, s *Snapshot) error { _, err := s.Summary(ctx); return err },
		},
		{
			name: "ticker", field: FieldTicker,
			key: exchange.EndpointTicker, endpoint: exchange.EndpointTicker, result: tickerJSON,
			fetch: func(ctx context.Context, s *Snapshot) error { _, err := s.Ticker(ctx); return err },
		},
		{
			name: "history", field: FieldHistory,
			key: exchange.EndpointMarketHistory, endpoint: exchange.EndpointMarketHistory, result: historyJSON,
			fetch: func(ctx context.Context, s *Snapshot) error { _, err := s.History(ctx); return err },
		},
		{
			name: "price time series", field: FieldHistory,
			key: exchange.EndpointMarketHistory, endpoint: exchange.EndpointMarketHistory, result: historyJSON,
			fetch: func(ctx context.Context, s *Snapshot) error { _, err := s.PriceTimeSeries(ctx); return err },
		},
		{
			name: "buy orderbook", field: FieldBuyOrderbook,
			key: exchange.EndpointOrderbook + "/buy", endpoint: exchange.EndpointOrderbook, result: buyJSON,
			fetch: func(ctx context.Context, s *Snapshot) error { _, err := s.BuyOrderbook(ctx, 0); return err },
		},
		{
			name: "sell orderbook", field: FieldSellOrderbook,
			key: exchange.EndpointOrderbook + "/sell", endpoint: exchange.EndpointOrderbook, result: sellJSON,
			fetch: func(ctx context.Context, s *Snapshot) error { _, err := s.SellOrderbook(ctx, 0); return err },
		},
		{
			name: "both orderbooks", field: FieldBothOrderbooks,
			key: exchange.EndpointOrderbook + "/both", endpoint: exchange.EndpointOrderbook, result: bothJSON,
			fetch: func(ctx context.Context, s *Snapshot) error { _, err := s.BothOrderbooks(ctx, 0); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := newStub().fail(tt.key, "rate limited")
			logger, logs := captureLogger()
			s, err := NewSnapshot("BTC-LTC", ex, WithLogger(logger))
			if err != nil {
				t.Fatalf("NewSnapshot failed: %v", err)
			}
			ctx := context.Background()

			err = tt.fetch(ctx, s)
			var ue *model.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("error = %v, want *model.UpstreamError", err)
			}
			if ue.Message != "rate limited" {
				t.Errorf("Message = %q, want %q", ue.Message, "rate limited")
			}
			if ue.Market != "BTC-LTC" || ue.Endpoint != tt.endpoint {
				t.Errorf("UpstreamError = %+v, want BTC-LTC %s", ue, tt.endpoint)
			}
			if s.Fetched(tt.field) {
				t.Errorf("Fetched(%s) = true after failure", tt.field)
			}
			if !strings.Contains(logs.String(), "rate limited") {
				t.Errorf("log output %q should carry the exchange message", logs.String())
			}

			// Still failing: every call goes to the exchange.
			if err := tt.fetch(ctx, s); !model.IsUpstream(err) {
				t.Fatalf("second call error = %v, want UpstreamError", err)
			}

			ex.ok(tt.key, tt.result)
			if err := tt.fetch(ctx, s); err != nil {
				t.Fatalf("retry failed: %v", err)
			}
			if !s.Fetched(tt.field) {
				t.Errorf("Fetched(%s) = false after success", tt.field)
			}

			if err := tt.fetch(ctx, s); err != nil {
				t.Fatalf("cached call failed: %v", err)
			}
			if got := ex.calls[tt.key]; got != 3 {
				t.Errorf("%s calls = %d, want 3", tt.key, got)
			}
		})
	}
}

func TestSnapshot_NullTickerNotCached(t *testing.T) {
	ex := newStub().ok(exchange.EndpointTicker, `null`)
	s := mustSnapshot(t, "BTC-LTC", ex)
	ctx := context.Background()

	if _, err := s.Ticker(ctx); !model.IsMalformed(err) {
		t.Fatalf("Ticker() = %v, want MalformedDataError", err)
	}
	if s.Fetched(FieldTicker) {
		t.Error("Fetched(ticker) = true after a null result")
	}
	if line, err := s.LedgerEntry(ctx); err == nil {
		t.Errorf("LedgerEntry() = %q, want an error", line)
	}

	ex.ok(exchange.EndpointTicker, tickerJSON)
	tick, err := s.Ticker(ctx)
	if err != nil {
		t.Fatalf("Ticker retry failed: %v", err)
	}
	if !tick.Ask.Equal(decimal.RequireFromString("0.0125")) {
		t.Errorf("Ask = %s, want 0.0125", tick.Ask)
	}
}

func TestSnapshot_MissingEnvelope(t *testing.T) {
	ex := newStub().empty(exchange.EndpointMarketSummary)
	s := mustSnapshot(t, "BTC-LTC", ex)

	if _, err := s.Summary(context.Background()); !model.IsMalformed(err) {
		t.Errorf("Summary() = %v, want MalformedDataError", err)
	}
	if s.Fetched(FieldSummary) {
		t.Error("Fetched(summary) = true after a missing response")
	}
}

func TestSnapshot_TransportFailureNotCached(t *testing.T) {
	boom := errors.New("connection reset")
	ex := newStub().broken(exchange.EndpointMarketHistory, boom)
	s := mustSnapshot(t, "BTC-LTC", ex)

	_, err := s.History(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("History() = %v, want %v", err, boom)
	}
	if model.IsUpstream(err) {
		t.Error("transport failure reported as upstream error")
	}
	if s.Fetched(FieldHistory) {
		t.Error("Fetched(history) = true after failure")
	}
}

func TestSnapshot_MalformedPayload(t *testing.T) {
	tests := []struct {
		name  string
		ex    *stubExchange
		fetch func(*Snapshot) error
	}{
		{
			name: "empty summary list",
			ex:   newStub().ok(exchange.EndpointMarketSummary, `[]`),
			fetch: func(s *Snapshot) error {
				_, err := s.Summary(context.Background())
				return err
			},
		},
		{
			name: "ticker shape",
			ex:   newStub().ok(exchange.EndpointTicker, `[1,2,3]`),
			fetch: func(s *Snapshot) error {
				_, err := s.Ticker(context.Background())
				return err
			},
		},
		{
			name: "history timestamp",
			ex:   newStub().ok(exchange.EndpointMarketHistory, `[{"Id":1,"TimeStamp":"14/07/2014","Price":1,"OrderType":"BUY"}]`),
			fetch: func(s *Snapshot) error {
				_, err := s.History(context.Background())
				return err
			},
		},
		{
			name: "null ticker",
			ex:   newStub().ok(exchange.EndpointTicker, `null`),
			fetch: func(s *Snapshot) error {
				_, err := s.Ticker(context.Background())
				return err
			},
		},
		{
			name: "empty result",
			ex:   newStub().ok(exchange.EndpointOrderbook+"/buy", ``),
			fetch: func(s *Snapshot) error {
				_, err := s.BuyOrderbook(context.Background(), 0)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSnapshot(t, "BTC-LTC", tt.ex)
			err := tt.fetch(s)
			if !model.IsMalformed(err) {
				t.Fatalf("error = %v, want MalformedDataError", err)
			}
		})
	}
}

func TestSnapshot_HistoryAndPriceTimeSeries(t *testing.T) {
	ex := fullStub()
	s := mustSnapshot(t, "BTC-LTC", ex)
	ctx := context.Background()

	history, err := s.History(ctx)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(History) = %d, want 3", len(history))
	}
	if history[1].FillType != "PARTIAL_FILL" || history[1].Side != model.SideBuy {
		t.Errorf("History[1] = %+v, want PARTIAL_FILL BUY", history[1])
	}

	// Callers get their own copy.
	history[0].ID = 999

	points, err := s.PriceTimeSeries(ctx)
	if err != nil {
		t.Fatalf("PriceTimeSeries failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("len(PriceTimeSeries) = %d, want 3", len(points))
	}

	want := []struct {
		at    time.Time
		price string
	}{
		{time.Date(2014, 7, 9, 3, 21, 22, 500000000, time.UTC), "0.022"},
		{time.Date(2014, 7, 9, 3, 21, 21, 0, time.UTC), "0.021"},
		{time.Date(2014, 7, 9, 3, 21, 20, 80000000, time.UTC), "0.02"},
	}
	for i, w := range want {
		if !points[i].Time.Equal(w.at) {
			t.Errorf("points[%d].Time = %v, want %v", i, points[i].Time, w.at)
		}
		if !points[i].Price.Equal(decimal.RequireFromString(w.price)) {
			t.Errorf("points[%d].Price = %s, want %s", i, points[i].Price, w.price)
		}
	}

	again, _ := s.History(ctx)
	if again[0].ID != 3 {
		t.Errorf("cached History[0].ID = %d, want 3", again[0].ID)
	}
	if got := ex.calls[exchange.EndpointMarketHistory]; got != 1 {
		t.Errorf("getmarkethistory calls = %d, want 1", got)
	}
}

func TestSnapshot_OrderbookDepth(t *testing.T) {
	t.Run("depth honored on first fetch only", func(t *testing.T) {
		ex := fullStub()
		s := mustSnapshot(t, "BTC-LTC", ex)
		ctx := context.Background()

		first, err := s.BuyOrderbook(ctx, 5)
		if err != nil {
			t.Fatalf("BuyOrderbook failed: %v", err)
		}
		second, err := s.BuyOrderbook(ctx, 50)
		if err != nil {
			t.Fatalf("BuyOrderbook failed: %v", err)
		}

		if got := ex.calls[exchange.EndpointOrderbook+"/buy"]; got != 1 {
			t.Errorf("buy orderbook calls = %d, want 1", got)
		}
		if len(ex.depths) != 1 || ex.depths[0] != 5 {
			t.Errorf("requested depths = %v, want [5]", ex.depths)
		}
		if len(second) != len(first) {
			t.Errorf("len(second) = %d, want %d", len(second), len(first))
		}
	})

	t.Run("default depth", func(t *testing.T) {
		ex := fullStub()
		s := mustSnapshot(t, "BTC-LTC", ex)
		if _, err := s.SellOrderbook(context.Background(), 0); err != nil {
			t.Fatalf("SellOrderbook failed: %v", err)
		}
		if ex.depths[0] != DefaultDepth {
			t.Errorf("depth = %d, want %d", ex.depths[0], DefaultDepth)
		}
	})

	t.Run("configured default depth", func(t *testing.T) {
		ex := fullStub()
		s := mustSnapshot(t, "BTC-LTC", ex, WithDefaultDepth(7))
		if _, err := s.SellOrderbook(context.Background(), -1); err != nil {
			t.Fatalf("SellOrderbook failed: %v", err)
		}
		if ex.depths[0] != 7 {
			t.Errorf("depth = %d, want 7", ex.depths[0])
		}
	})
}

func TestSnapshot_OrderbookFieldsIndependent(t *testing.T) {
	ex := fullStub()
	s := mustSnapshot(t, "BTC-LTC", ex)
	ctx := context.Background()

	buy, err := s.BuyOrderbook(ctx, 10)
	if err != nil {
		t.Fatalf("BuyOrderbook failed: %v", err)
	}
	if len(buy) != 2 || !buy[0].Rate.Equal(decimal.RequireFromString("0.02525")) {
		t.Errorf("BuyOrderbook = %+v", buy)
	}
	if s.Fetched(FieldBothOrderbooks) || s.Fetched(FieldSellOrderbook) {
		t.Error("fetching buy side populated another orderbook field")
	}

	both, err := s.BothOrderbooks(ctx, 10)
	if err != nil {
		t.Fatalf("BothOrderbooks failed: %v", err)
	}
	if len(both.Buy) != 2 || len(both.Sell) != 1 {
		t.Errorf("BothOrderbooks = %d buy / %d sell, want 2 / 1", len(both.Buy), len(both.Sell))
	}
	if got := ex.calls[exchange.EndpointOrderbook+"/both"]; got != 1 {
		t.Errorf("both orderbook calls = %d, want 1", got)
	}
	if s.Fetched(FieldSellOrderbook) {
		t.Error("BothOrderbooks populated the sell field")
	}
}

func TestSnapshot_Prefetch(t *testing.T) {
	t.Run("populates every field", func(t *testing.T) {
		ex := fullStub()
		s := mustSnapshot(t, "BTC-LTC", ex)

		if err := s.Prefetch(context.Background(), 3); err != nil {
			t.Fatalf("Prefetch failed: %v", err)
		}
		for _, f := range []Field{FieldSummary, FieldTicker, FieldHistory, FieldBuyOrderbook, FieldSellOrderbook, FieldBothOrderbooks} {
			if !s.Fetched(f) {
				t.Errorf("Fetched(%s) = false after Prefetch", f)
			}
		}
		if ex.total() != 6 {
			t.Errorf("requests = %d, want 6", ex.total())
		}

		if err := s.Prefetch(context.Background(), 3); err != nil {
			t.Fatalf("second Prefetch failed: %v", err)
		}
		if ex.total() != 6 {
			t.Errorf("requests after second Prefetch = %d, want 6", ex.total())
		}
	})

	t.Run("stops at first failure", func(t *testing.T) {
		ex := fullStub().fail(exchange.EndpointMarketHistory, "INVALID_MARKET")
		s := mustSnapshot(t, "BTC-LTC", ex)

		err := s.Prefetch(context.Background(), 0)
		if !model.IsUpstream(err) {
			t.Fatalf("Prefetch() = %v, want UpstreamError", err)
		}
		if !strings.Contains(err.Error(), "history") {
			t.Errorf("error %q should name the failed field", err.Error())
		}
		if !s.Fetched(FieldSummary) {
			t.Error("summary should stay fetched")
		}
		if s.Fetched(FieldTicker) || ex.calls[exchange.EndpointTicker] != 0 {
			t.Error("ticker fetched after an earlier failure")
		}
	})
}

func TestSnapshot_String(t *testing.T) {
	ex := fullStub()
	s := mustSnapshot(t, "BTC-LTC", ex)

	if got := s.String(); got != "BTC-LTC" {
		t.Errorf("String() = %q, want %q", got, "BTC-LTC")
	}
	if ex.total() != 0 {
		t.Errorf("String() made %d requests, want 0", ex.total())
	}

	if _, err := s.Ticker(context.Background()); err != nil {
		t.Fatalf("Ticker failed: %v", err)
	}
	want := "BTC-LTC\tLast=0.0123 Bid=0.0123 Ask=0.0125"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSnapshot_LedgerEntry(t *testing.T) {
	clock := func() time.Time { return time.Date(2017, 8, 14, 23, 25, 46, 0, time.UTC) }

	tests := []struct {
		market string
		ticker string
		want   string
	}{
		{"BTC-LTC", `{"Bid":0.0123,"Ask":0.0125,"Last":0.0123}`, "P 2017/08/14 23:25:46 LTC 0.012300 BTC"},
		{"USDT-BTC", `{"Bid":4100,"Ask":4121,"Last":4120.5}`, "P 2017/08/14 23:25:46 BTC 4120.500000 USDT"},
		{"USD-BTC", `{"Bid":4100,"Ask":4121,"Last":4120.5}`, "P 2017/08/14 23:25:46 BTC $4120.50"},
		{"EUR-ETH", `{"Bid":300,"Ask":301,"Last":300.125}`, "P 2017/08/14 23:25:46 ETH €300.13"},
	}

	for _, tt := range tests {
		t.Run(tt.market, func(t *testing.T) {
			ex := newStub().ok(exchange.EndpointTicker, tt.ticker)
			s := mustSnapshot(t, tt.market, ex, WithClock(clock))

			got, err := s.LedgerEntry(context.Background())
			if err != nil {
				t.Fatalf("LedgerEntry failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("LedgerEntry() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("ticker failure", func(t *testing.T) {
		ex := newStub().fail(exchange.EndpointTicker, "INVALID_MARKET")
		s := mustSnapshot(t, "BTC-NOPE", ex, WithClock(clock))
		if _, err := s.LedgerEntry(context.Background()); !model.IsUpstream(err) {
			t.Errorf("LedgerEntry() = %v, want UpstreamError", err)
		}
	})
}

func TestFieldString(t *testing.T) {
	if FieldBothOrderbooks.String() != "both_orderbooks" {
		t.Errorf("String() = %q, want %q", FieldBothOrderbooks.String(), "both_orderbooks")
	}
	if Field(99).String() != "unknown" {
		t.Errorf("String() = %q, want %q", Field(99).String(), "unknown")
	}
}
