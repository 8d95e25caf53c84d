package exchange

import "github.com/shopspring/decimal"

// APIMarket from GET /public/getmarkets
type APIMarket struct {
	MarketName         string          `json:"MarketName"`
	MarketCurrency     string          `json:"MarketCurrency"`
	BaseCurrency       string          `json:"BaseCurrency"`
	MarketCurrencyLong string          `json:"MarketCurrencyLong"`
	BaseCurrencyLong   string          `json:"BaseCurrencyLong"`
	MinTradeSize       decimal.Decimal `json:"MinTradeSize"`
	IsActive           bool            `json:"IsActive"`
	Notice             string          `json:"Notice"`
	Created            string          `json:"Created"`
}

// APIMarketSummary from GET /public/getmarketsummaries and /public/getmarketsummary
type APIMarketSummary struct {
	MarketName     string          `json:"MarketName"`
	High           decimal.Decimal `json:"High"`
	Low            decimal.Decimal `json:"Low"`
	Volume         decimal.Decimal `json:"Volume"`
	BaseVolume     decimal.Decimal `json:"BaseVolume"`
	Last           decimal.Decimal `json:"Last"`
	Bid            decimal.Decimal `json:"Bid"`
	Ask            decimal.Decimal `json:"Ask"`
	PrevDay        decimal.Decimal `json:"PrevDay"`
	OpenBuyOrders  int             `json:"OpenBuyOrders"`
	OpenSellOrders int             `json:"OpenSellOrders"`
	TimeStamp      string          `json:"TimeStamp"`
	Created        string          `json:"Created"`
}

// APITrade from GET /public/getmarkethistory
type APITrade struct {
	ID        int64           `json:"Id"`
	TimeStamp string          `json:"TimeStamp"`
	Quantity  decimal.Decimal `json:"Quantity"`
	Price     decimal.Decimal `json:"Price"`
	Total     decimal.Decimal `json:"Total"`
	FillType  string          `json:"FillType"`
	OrderType string          `json:"OrderType"`
}

// APITicker from GET /public/getticker
type APITicker struct {
	Bid  decimal.Decimal `json:"Bid"`
	Ask  decimal.Decimal `json:"Ask"`
	Last decimal.Decimal `json:"Last"`
}

// APIOrderLevel is one level from GET /public/getorderbook
type APIOrderLevel struct {
	Quantity decimal.Decimal `json:"Quantity"`
	Rate     decimal.Decimal `json:"Rate"`
}

// APIOrderbook from GET /public/getorderbook?type=both
type APIOrderbook struct {
	Buy  []APIOrderLevel `json:"buy"`
	Sell []APIOrderLevel `json:"sell"`
}
