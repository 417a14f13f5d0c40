package model

import "main/internal/model/enum"

// Order is the POST_ORDER wire body. The "filed_amount" tag is the server's
// spelling and must not be corrected.
type Order struct {
	Exchange     enum.Exchange    `json:"exchange"`
	CID          string           `json:"cid"`
	Symbol       string           `json:"symbol"`
	Price        float64          `json:"price"`
	Amount       float64          `json:"amount"`
	FilledAmount float64          `json:"filed_amount"`
	AvgPrice     float64          `json:"avg_price"`
	Side         enum.OrderSide   `json:"side"`
	State        enum.OrderState  `json:"state"`
	OrderType    enum.OrderType   `json:"order_type"`
	TimeInForce  enum.TimeInForce `json:"time_in_force"`
	Timestamp    int64            `json:"timestamp"`
}
