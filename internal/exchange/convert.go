package exchange

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickgao/coinanalysis/internal/model"
)

// timestampLayouts are tried in order. Parsing accepts a fractional second after
// the seconds field even when the layout omits it.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an exchange timestamp such as "2017-08-14T23:25:46.12".
// Values without a zone are UTC.
func ParseTimestamp(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, &model.MalformedDataError{Field: field, Value: s, Err: errors.New("empty timestamp")}
	}

	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, &model.MalformedDataError{Field: field, Value: s, Err: lastErr}
}

// parseOptionalTimestamp is ParseTimestamp that maps an empty value to the zero time.
func parseOptionalTimestamp(field, s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return ParseTimestamp(field, s)
}

// ToModel converts an APIMarket to model.MarketListing.
func (m *APIMarket) ToModel() (model.MarketListing, error) {
	created, err := parseOptionalTimestamp("Created", m.Created)
	if err != nil {
		return model.MarketListing{}, err
	}

	return model.MarketListing{
		MarketName:         m.MarketName,
		MarketCurrency:     m.MarketCurrency,
		BaseCurrency:       m.BaseCurrency,
		MarketCurrencyLong: m.MarketCurrencyLong,
		BaseCurrencyLong:   m.BaseCurrencyLong,
		MinTradeSize:       m.MinTradeSize,
		IsActive:           m.IsActive,
		Notice:             m.Notice,
		Created:            created,
	}, nil
}

// ToModel converts an APIMarketSummary to model.MarketSummary.
func (s *APIMarketSummary) ToModel() (model.MarketSummary, error) {
	ts, err := parseOptionalTimestamp("TimeStamp", s.TimeStamp)
	if err != nil {
		return model.MarketSummary{}, err
	}
	created, err := parseOptionalTimestamp("Created", s.Created)
	if err != nil {
		return model.MarketSummary{}, err
	}

	return model.MarketSummary{
		MarketName:     s.MarketName,
		High:           s.High,
		Low:            s.Low,
		Volume:         s.Volume,
		BaseVolume:     s.BaseVolume,
		Last:           s.Last,
		Bid:            s.Bid,
		Ask:            s.Ask,
		PrevDay:        s.PrevDay,
		OpenBuyOrders:  s.OpenBuyOrders,
		OpenSellOrders: s.OpenSellOrders,
		TimeStamp:      ts,
		Created:        created,
	}, nil
}

// ToModel converts an APITrade to model.TradeRecord.
func (t *APITrade) ToModel() (model.TradeRecord, error) {
	ts, err := ParseTimestamp("TimeStamp", t.TimeStamp)
	if err != nil {
		return model.TradeRecord{}, err
	}

	side := model.Side(strings.ToUpper(t.OrderType))
	if side != model.SideBuy && side != model.SideSell {
		return model.TradeRecord{}, &model.MalformedDataError{
			Field: "OrderType",
			Value: t.OrderType,
			Err:   fmt.Errorf("want %s or %s", model.SideBuy, model.SideSell),
		}
	}

	return model.TradeRecord{
		ID:        t.ID,
		Timestamp: ts,
		Price:     t.Price,
		Quantity:  t.Quantity,
		Total:     t.Total,
		Side:      side,
		FillType:  t.FillType,
	}, nil
}

// TradesToModel converts a history payload, preserving record order.
func TradesToModel(trades []APITrade) ([]model.TradeRecord, error) {
	records := make([]model.TradeRecord, 0, len(trades))
	for i := range trades {
		r, err := trades[i].ToModel()
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", trades[i].ID, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// ToModel converts an APITicker to model.Ticker.
func (t *APITicker) ToModel() model.Ticker {
	return model.Ticker{
		Last: t.Last,
		Bid:  t.Bid,
		Ask:  t.Ask,
	}
}

// LevelsToModel converts orderbook levels, preserving exchange order (best first).
func LevelsToModel(levels []APIOrderLevel) []model.OrderLevel {
	out := make([]model.OrderLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, model.OrderLevel{
			Rate:     l.Rate,
			Quantity: l.Quantity,
		})
	}
	return out
}

// ToModel converts an APIOrderbook to model.Orderbook.
func (o *APIOrderbook) ToModel() model.Orderbook {
	return model.Orderbook{
		Buy:  LevelsToModel(o.Buy),
		Sell: LevelsToModel(o.Sell),
	}
}
