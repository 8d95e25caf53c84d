package exchange

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Endpoint names, also used as metric labels.
const (
	EndpointMarkets         = "getmarkets"
	EndpointMarketSummaries = "getmarketsummaries"
	EndpointMarketSummary   = "getmarketsummary"
	EndpointMarketHistory   = "getmarkethistory"
	EndpointTicker          = "getticker"
	EndpointOrderbook       = "getorderbook"
)

// OrderbookSide selects which side(s) of the book to fetch.
type OrderbookSide string

const (
	OrderbookBuy  OrderbookSide = "buy"
	OrderbookSell OrderbookSide = "sell"
	OrderbookBoth OrderbookSide = "both"
)

// Markets fetches the market catalogue. Result: []APIMarket.
func (c *Client) Markets(ctx context.Context) (*Envelope, error) {
	env, err := c.get(ctx, EndpointMarkets, nil)
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}
	return env, nil
}

// MarketSummaries fetches the 24h summary of every market. Result: []APIMarketSummary.
func (c *Client) MarketSummaries(ctx context.Context) (*Envelope, error) {
	env, err := c.get(ctx, EndpointMarketSummaries, nil)
	if err != nil {
		return nil, fmt.Errorf("get market summaries: %w", err)
	}
	return env, nil
}

// MarketSummary fetches one market's summary. Result: []APIMarketSummary with one element.
func (c *Client) MarketSummary(ctx context.Context, market string) (*Envelope, error) {
	env, err := c.get(ctx, EndpointMarketSummary, marketQuery(market))
	if err != nil {
		return nil, fmt.Errorf("get market summary %s: %w", market, err)
	}
	return env, nil
}

// MarketHistory fetches the latest trades of a market. Result: []APITrade.
func (c *Client) MarketHistory(ctx context.Context, market string) (*Envelope, error) {
	env, err := c.get(ctx, EndpointMarketHistory, marketQuery(market))
	if err != nil {
		return nil, fmt.Errorf("get market history %s: %w", market, err)
	}
	return env, nil
}

// Ticker fetches last/bid/ask of a market. Result: APITicker.
func (c *Client) Ticker(ctx context.Context, market string) (*Envelope, error) {
	env, err := c.get(ctx, EndpointTicker, marketQuery(market))
	if err != nil {
		return nil, fmt.Errorf("get ticker %s: %w", market, err)
	}
	return env, nil
}

// Orderbook fetches a market's orderbook.
// Result: []APIOrderLevel for buy/sell, APIOrderbook for both.
func (c *Client) Orderbook(ctx context.Context, market string, side OrderbookSide, depth int) (*Envelope, error) {
	query := marketQuery(market)
	query.Set("type", string(side))
	if depth > 0 {
		query.Set("depth", strconv.Itoa(depth))
	}

	env, err := c.get(ctx, EndpointOrderbook, query)
	if err != nil {
		return nil, fmt.Errorf("get %s orderbook %s: %w", side, market, err)
	}
	return env, nil
}

func marketQuery(market string) url.Values {
	query := url.Values{}
	query.Set("market", market)
	return query
}
