package market

import (
	"context"
	"errors"

	"github.com/rickgao/coinanalysis/internal/exchange"
	"github.com/rickgao/coinanalysis/internal/model"
)

// Exchange is the request/response boundary to the exchange.
// *exchange.Client implements it.
type Exchange interface {
	MarketSummaries(ctx context.Context) (*exchange.Envelope, error)
	MarketSummary(ctx context.Context, market string) (*exchange.Envelope, error)
	MarketHistory(ctx context.Context, market string) (*exchange.Envelope, error)
	Ticker(ctx context.Context, market string) (*exchange.Envelope, error)
	Orderbook(ctx context.Context, market string, side exchange.OrderbookSide, depth int) (*exchange.Envelope, error)
	Markets(ctx context.Context) (*exchange.Envelope, error)
}

var _ Exchange = (*exchange.Client)(nil)

// responseErr returns the transport error, a *model.MalformedDataError for a
// missing envelope, or the exchange-reported failure, in that order.
func responseErr(endpoint, market string, env *exchange.Envelope, err error) error {
	if err != nil {
		return err
	}
	if env == nil {
		return &model.MalformedDataError{Field: endpoint, Err: errors.New("empty response")}
	}
	return env.Err(endpoint, market)
}
