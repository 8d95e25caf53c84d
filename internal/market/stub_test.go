package market

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/rickgao/coinanalysis/internal/exchange"
)

// stubResponse is what stubExchange returns for one endpoint key.
type stubResponse struct {
	env *exchange.Envelope
	err error
}

// stubExchange answers from canned responses and counts calls per key. Orderbook
// keys are "getorderbook/<side>".
type stubExchange struct {
	responses map[string]stubResponse
	calls     map[string]int
	depths    []int
	markets   []string
}

func newStub() *stubExchange {
	return &stubExchange{
		responses: make(map[string]stubResponse),
		calls:     make(map[string]int),
	}
}

// ok registers a successful envelope whose result is the JSON text.
func (s *stubExchange) ok(key, result string) *stubExchange {
	s.responses[key] = stubResponse{env: &exchange.Envelope{Success: true, Result: json.RawMessage(result)}}
	return s
}

// fail registers an envelope with success=false.
func (s *stubExchange) fail(key, message string) *stubExchange {
	s.responses[key] = stubResponse{env: &exchange.Envelope{Success: false, Message: message}}
	return s
}

// empty registers a response with neither envelope nor error.
func (s *stubExchange) empty(key string) *stubExchange {
	s.responses[key] = stubResponse{}
	return s
}

// broken registers a transport error.
func (s *stubExchange) broken(key string, err error) *stubExchange {
	s.responses[key] = stubResponse{err: err}
	return s
}

func (s *stubExchange) respond(key, market string) (*exchange.Envelope, error) {
	s.calls[key]++
	if market != "" {
		s.markets = append(s.markets, market)
	}
	r, ok := s.responses[key]
	if !ok {
		return nil, errors.New("stub: no response for " + key)
	}
	return r.env, r.err
}

func (s *stubExchange) total() int {
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *stubExchange) MarketSummaries(ctx context.Context) (*exchange.Envelope, error) {
	return s.respond(exchange.EndpointMarketSummaries, "")
}

func (s *stubExchange) MarketSummary(ctx context.Context, market string) (*exchange.Envelope, error) {
	return s.respond(exchange.EndpointMarketSummary, market)
}

func (s *stubExchange) MarketHistory(ctx context.Context, market string) (*exchange.Envelope, error) {
	return s.respond(exchange.EndpointMarketHistory, market)
}

func (s *stubExchange) Ticker(ctx context.Context, market string) (*exchange.Envelope, error) {
	return s.respond(exchange.EndpointTicker, market)
}

func (s *stubExchange) Orderbook(ctx context.Context, market string, side exchange.OrderbookSide, depth int) (*exchange.Envelope, error) {
	s.depths = append(s.depths, depth)
	return s.respond(exchange.EndpointOrderbook+"/"+string(side), market)
}

func (s *stubExchange) Markets(ctx context.Context) (*exchange.Envelope, error) {
	return s.respond(exchange.EndpointMarkets, "")
}

var _ Exchange = (*stubExchange)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureLogger returns a logger writing text records into the returned builder.
func captureLogger() (*slog.Logger, *strings.Builder) {
	var b strings.Builder
	return slog.New(slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelDebug})), &b
}

func mustSnapshot(t *testing.T, name string, ex Exchange, opts ...SnapshotOption) *Snapshot {
	t.Helper()
	s, err := NewSnapshot(name, ex, append([]SnapshotOption{WithLogger(discardLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("NewSnapshot(%q) error: %v", name, err)
	}
	return s
}

const (
	summaryJSON = `[{"MarketName":"BTC-LTC","High":0.0135,"Low":0.012,"Volume":3833.97,"Last":0.01349998,"BaseVolume":47.03987026,"TimeStamp":"2014-07-09T07:22:16.72","Bid":0.01271001,"Ask":0.012911,"OpenBuyOrders":45,"OpenSellOrders":45,"PrevDay":0.01229501,"Created":"2014-02-13T00:00:00"}]`
	tickerJSON  = `{"Bid":0.0123,"Ask":0.0125,"Last":0.0123}`
	historyJSON = `[
		{"Id":3,"TimeStamp":"2014-07-09T03:21:22.5","Quantity":1,"Price":0.022,"Total":0.022,"FillType":"FILL","OrderType":"SELL"},
		{"Id":2,"TimeStamp":"2014-07-09T03:21:21","Quantity":2,"Price":0.021,"Total":0.042,"FillType":"PARTIAL_FILL","OrderType":"BUY"},
		{"Id":1,"TimeStamp":"2014-07-09T03:21:20.08","Quantity":3,"Price":0.020,"Total":0.06,"FillType":"FILL","OrderType":"BUY"}
	]`
	buyJSON  = `[{"Quantity":12.37,"Rate":0.02525},{"Quantity":5,"Rate":0.0252}]`
	sellJSON = `[{"Quantity":32.55,"Rate":0.0254}]`
	bothJSON = `{"buy":` + buyJSON + `,"sell":` + sellJSON + `}`
)

// fullStub answers every per-market endpoint successfully.
func fullStub() *stubExchange {
	return newStub().
		ok(exchange.EndpointMarketSummary, summaryJSON).
		ok(exchange.EndpointTicker, tickerJSON).
		ok(exchange.EndpointMarketHistory, historyJSON).
		ok(exchange.EndpointOrderbook+"/buy", buyJSON).
		ok(exchange.EndpointOrderbook+"/sell", sellJSON).
		ok(exchange.EndpointOrderbook+"/both", bothJSON)
}
