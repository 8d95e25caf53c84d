package market

import (
	"context"
	"fmt"
)

// LedgerTimeFormat is the ledger-cli pricedb timestamp layout.
const LedgerTimeFormat = "2006/01/02 15:04:05"

// fiatSymbols maps fiat bases to the commodity symbol ledger prints before amounts.
var fiatSymbols = map[string]string{
	"$":   "$",
	"¥":   "¥",
	"£":   "£",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// LedgerEntry returns a ledger-cli price directive for the market's last price:
//
//	P 2017/08/14 23:25:46 BTC $4120.50
//	P 2017/08/14 23:25:46 LTC 0.012300 BTC
//
// It fetches the ticker if needed.
func (s *Snapshot) LedgerEntry(ctx context.Context) (string, error) {
	t, err := s.Ticker(ctx)
	if err != nil {
		return "", fmt.Errorf("ledger entry %s: %w", s.name, err)
	}

	stamp := s.now().Format(LedgerTimeFormat)
	if sym, ok := fiatSymbols[s.pair.Basis]; ok {
		return fmt.Sprintf("P %s %s %s%s", stamp, s.pair.Code, sym, t.Last.StringFixed(2)), nil
	}
	return fmt.Sprintf("P %s %s %s %s", stamp, s.pair.Code, t.Last.StringFixed(6), s.pair.Basis), nil
}
