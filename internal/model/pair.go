package model

import (
	"errors"
	"strings"
)

// PairSeparator splits a market name into basis and code.
const PairSeparator = "-"

// TradingPair is a parsed market name.
type TradingPair struct {
	Basis string // Quote asset the price is expressed in (e.g. "BTC", "USDT")
	Code  string // Base asset being priced (e.g. "LTC")
}

// ParsePair splits a market name such as "BTC-LTC" into its basis and code.
func ParsePair(name string) (TradingPair, error) {
	parts := strings.Split(name, PairSeparator)
	if len(parts) != 2 {
		return TradingPair{}, &MalformedDataError{
			Field: "MarketName",
			Value: name,
			Err:   errors.New("want exactly two tokens separated by " + PairSeparator),
		}
	}
	if parts[0] == "" || parts[1] == "" {
		return TradingPair{}, &MalformedDataError{
			Field: "MarketName",
			Value: name,
			Err:   errors.New("empty token"),
		}
	}
	return TradingPair{Basis: parts[0], Code: parts[1]}, nil
}

// String returns the exchange market name.
func (p TradingPair) String() string {
	return p.Basis + PairSeparator + p.Code
}
