package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Market Listings
// -----------------------------------------------------------------------------

// MarketSummary holds the 24h statistics of one market.
type MarketSummary struct {
	MarketName     string
	High           decimal.Decimal
	Low            decimal.Decimal
	Volume         decimal.Decimal // 24h volume in the code asset
	BaseVolume     decimal.Decimal // 24h volume in the basis asset
	Last           decimal.Decimal
	Bid            decimal.Decimal
	Ask            decimal.Decimal
	PrevDay        decimal.Decimal
	OpenBuyOrders  int
	OpenSellOrders int
	TimeStamp      time.Time
	Created        time.Time // Zero if the exchange omitted it
}

// MarketListing is one entry of the exchange's market catalogue.
type MarketListing struct {
	MarketName         string
	MarketCurrency     string // Code asset
	BaseCurrency       string // Basis asset
	MarketCurrencyLong string
	BaseCurrencyLong   string
	MinTradeSize       decimal.Decimal
	IsActive           bool
	Notice             string // Operator notice, usually set for inactive markets
	Created            time.Time
}

// RankedMarket pairs a market with the volume it is ranked by.
type RankedMarket struct {
	Volume decimal.Decimal
	Name   string
}

// -----------------------------------------------------------------------------
// Per-Market Data
// -----------------------------------------------------------------------------

// Side is the taker side of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeRecord is one filled trade from the market history.
type TradeRecord struct {
	ID        int64
	Timestamp time.Time
	Price     decimal.Decimal
	Quantity  decimal.Decimal
	Total     decimal.Decimal
	Side      Side
	FillType  string // FILL or PARTIAL_FILL
}

// Ticker holds the latest prices of a market.
type Ticker struct {
	Last decimal.Decimal
	Bid  decimal.Decimal
	Ask  decimal.Decimal
}

// OrderLevel is one price level of an orderbook.
type OrderLevel struct {
	Rate     decimal.Decimal
	Quantity decimal.Decimal
}

// Orderbook holds both sides of a market's book, best price first.
type Orderbook struct {
	Buy  []OrderLevel
	Sell []OrderLevel
}

// PricePoint is one sample of a price time series.
type PricePoint struct {
	Time  time.Time
	Price decimal.Decimal
}
