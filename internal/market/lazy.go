package market

// lazy holds a value that is Unfetched until the first successful get and Fetched
// forever after.
type lazy[T any] struct {
	value   T
	fetched bool
}

// get returns the cached value, or calls fetch and caches its result on success.
// On error nothing is cached.
func (l *lazy[T]) get(fetch func() (T, error)) (T, error) {
	if l.fetched {
		return l.value, nil
	}

	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	l.value = v
	l.fetched = true
	return v, nil
}

// Field names a lazily populated Snapshot field.
type Field int

const (
	FieldSummary Field = iota
	FieldTicker
	FieldHistory
	FieldBuyOrderbook
	FieldSellOrderbook
	FieldBothOrderbooks
)

func (f Field) String() string {
	switch f {
	case FieldSummary:
		return "summary"
	case FieldTicker:
		return "ticker"
	case FieldHistory:
		return "history"
	case FieldBuyOrderbook:
		return "buy_orderbook"
	case FieldSellOrderbook:
		return "sell_orderbook"
	case FieldBothOrderbooks:
		return "both_orderbooks"
	default:
		return "unknown"
	}
}
