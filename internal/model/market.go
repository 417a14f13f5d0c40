package model

// Level is one price level: [0] price, [1] quantity.
type Level [2]float64

func (l Level) Price() float64 {
	return l[0]
}

func (l Level) Quantity() float64 {
	return l[1]
}

// Depth is one point-in-time book snapshot. Bids are ordered descending by
// price, asks ascending; the best levels sit at index zero.
type Depth struct {
	Symbol    string  `json:"symbol"`
	Bids      []Level `json:"bids"`
	Asks      []Level `json:"asks"`
	Timestamp int64   `json:"timestamp"`
}

// BestBid returns the highest bid level.
func (d Depth) BestBid() (Level, bool) {
	if len(d.Bids) == 0 {
		return Level{}, false
	}
	return d.Bids[0], true
}

// BestAsk returns the lowest ask level.
func (d Depth) BestAsk() (Level, bool) {
	if len(d.Asks) == 0 {
		return Level{}, false
	}
	return d.Asks[0], true
}

// TickSnapshot is the nested payload of a successful tick reply.
type TickSnapshot struct {
	Depth   Depth   `json:"depth"`
	Account Account `json:"account"`
}
