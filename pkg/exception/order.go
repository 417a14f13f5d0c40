package exception

import "github.com/yanun0323/errors"

// Order errors
var (
	ErrOrderNilController  = errors.New("order: nil controller")
	ErrOrderInvalidRequest = errors.New("order: invalid request")
	ErrOrderRejected       = errors.New("order: rejected by server")
	ErrOrderUnknownID      = errors.New("order: unknown client order id")
	ErrOrderCancelRejected = errors.New("order: cancel rejected by server")
)
