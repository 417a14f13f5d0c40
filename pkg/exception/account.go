package exception

import "github.com/yanun0323/errors"

// Account errors
var (
	// ErrAccountFault is returned when the account info request fails.
	// It is fatal to the session: balance correctness can no longer be
	// verified against the server.
	ErrAccountFault = errors.New("account: account info fault")
)
