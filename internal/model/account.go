package model

// Position is the server's view of the held instrument amount.
type Position struct {
	Amount          float64 `json:"amount"`
	AmountAvailable float64 `json:"amount_available"`
	AmountFreezed   float64 `json:"amount_freezed"`
	AvgPrice        float64 `json:"avg_price"`
}

// Account is the server-side account snapshot. Read-only on the client; the
// driver only checks it, never mutates it.
type Account struct {
	BacktestID string   `json:"backtest_id"`
	Balance    Balance  `json:"balance"`
	Position   Position `json:"position"`
}
