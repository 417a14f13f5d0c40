package enum

import "main/pkg/exception"

// OrderSide buy, sell
type OrderSide uint8

const (
	_order_side_beg OrderSide = iota
	OrderSideBuy
	OrderSideSell
	_order_side_end
)

func (s OrderSide) IsAvailable() bool {
	return s > _order_side_beg && s < _order_side_end
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "Buy"
	case OrderSideSell:
		return "Sell"
	default:
		return "Unknown"
	}
}

func (s OrderSide) MarshalJSON() ([]byte, error) {
	return marshalWireString(s.IsAvailable(), s.String())
}

func (s *OrderSide) UnmarshalJSON(data []byte) error {
	v, err := unmarshalWireString(data, map[string]OrderSide{
		"Buy":  OrderSideBuy,
		"Sell": OrderSideSell,
	})
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// OrderState open, partial filled, filled, canceled
type OrderState uint8

const (
	_order_state_beg OrderState = iota
	OrderStateOpen
	OrderStatePartialFilled
	OrderStateFilled
	OrderStateCanceled
	_order_state_end
)

func (s OrderState) IsAvailable() bool {
	return s > _order_state_beg && s < _order_state_end
}

func (s OrderState) String() string {
	switch s {
	case OrderStateOpen:
		return "Open"
	case OrderStatePartialFilled:
		return "PartialFilled"
	case OrderStateFilled:
		return "Filled"
	case OrderStateCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

func (s OrderState) MarshalJSON() ([]byte, error) {
	return marshalWireString(s.IsAvailable(), s.String())
}

func (s *OrderState) UnmarshalJSON(data []byte) error {
	v, err := unmarshalWireString(data, map[string]OrderState{
		"Open":          OrderStateOpen,
		"PartialFilled": OrderStatePartialFilled,
		"Filled":        OrderStateFilled,
		"Canceled":      OrderStateCanceled,
	})
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// OrderType limit, market
type OrderType uint8

const (
	_order_type_beg OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
	_order_type_end
)

func (t OrderType) IsAvailable() bool {
	return t > _order_type_beg && t < _order_type_end
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "Limit"
	case OrderTypeMarket:
		return "Market"
	default:
		return "Unknown"
	}
}

func (t OrderType) MarshalJSON() ([]byte, error) {
	return marshalWireString(t.IsAvailable(), t.String())
}

func (t *OrderType) UnmarshalJSON(data []byte) error {
	v, err := unmarshalWireString(data, map[string]OrderType{
		"Limit":  OrderTypeLimit,
		"Market": OrderTypeMarket,
	})
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// TimeInForce GTC, IOC, FOK
type TimeInForce uint8

const (
	_time_in_force_beg TimeInForce = iota
	TimeInForceGTC
	TimeInForceIOC
	TimeInForceFOK
	_time_in_force_end
)

func (f TimeInForce) IsAvailable() bool {
	return f > _time_in_force_beg && f < _time_in_force_end
}

func (f TimeInForce) String() string {
	switch f {
	case TimeInForceGTC:
		return "Gtc"
	case TimeInForceIOC:
		return "Ioc"
	case TimeInForceFOK:
		return "Fok"
	default:
		return "Unknown"
	}
}

func (f TimeInForce) MarshalJSON() ([]byte, error) {
	return marshalWireString(f.IsAvailable(), f.String())
}

func (f *TimeInForce) UnmarshalJSON(data []byte) error {
	v, err := unmarshalWireString(data, map[string]TimeInForce{
		"Gtc": TimeInForceGTC,
		"Ioc": TimeInForceIOC,
		"Fok": TimeInForceFOK,
	})
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func marshalWireString(ok bool, s string) ([]byte, error) {
	if !ok {
		return nil, exception.ErrInvalidArgument
	}
	return []byte(`"` + s + `"`), nil
}

func unmarshalWireString[T any](data []byte, table map[string]T) (T, error) {
	var zero T
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return zero, exception.ErrInvalidArgument
	}
	v, ok := table[string(data[1:len(data)-1])]
	if !ok {
		return zero, exception.ErrInvalidArgument
	}
	return v, nil
}
