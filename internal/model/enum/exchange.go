package enum

// Exchange supported replay venues
type Exchange uint8

const (
	_exchange_beg Exchange = iota
	ExchangeBinanceSpot
	ExchangeBinanceFutures
	ExchangeOKXSpot
	_exchange_end
)

func (e Exchange) IsAvailable() bool {
	return e > _exchange_beg && e < _exchange_end
}

func (e Exchange) String() string {
	switch e {
	case ExchangeBinanceSpot:
		return "BinanceSpot"
	case ExchangeBinanceFutures:
		return "BinanceFutures"
	case ExchangeOKXSpot:
		return "OKXSpot"
	default:
		return "Unknown"
	}
}

func (e Exchange) MarshalJSON() ([]byte, error) {
	return marshalWireString(e.IsAvailable(), e.String())
}

func (e *Exchange) UnmarshalJSON(data []byte) error {
	v, err := unmarshalWireString(data, map[string]Exchange{
		"BinanceSpot":    ExchangeBinanceSpot,
		"BinanceFutures": ExchangeBinanceFutures,
		"OKXSpot":        ExchangeOKXSpot,
	})
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// ParseExchange maps a venue name to its enum value.
func ParseExchange(name string) (Exchange, bool) {
	switch name {
	case "BinanceSpot":
		return ExchangeBinanceSpot, true
	case "BinanceFutures":
		return ExchangeBinanceFutures, true
	case "OKXSpot":
		return ExchangeOKXSpot, true
	default:
		return 0, false
	}
}
