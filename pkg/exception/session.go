package exception

import "github.com/yanun0323/errors"

// Session errors
var (
	// ErrSessionLaunch is returned when the bootstrap launch request fails.
	ErrSessionLaunch = errors.New("session: launch failed")

	// ErrSessionEmptyID is returned when a launch reply carries no session id.
	ErrSessionEmptyID = errors.New("session: empty backtest id in launch reply")

	// ErrSessionTerminated is returned when an operation is attempted on a
	// session whose tick loop has already exited.
	ErrSessionTerminated = errors.New("session: terminated")

	// ErrTickFault is returned when a tick request returns a non-ok status,
	// an undecodable reply, or a channel failure.
	ErrTickFault = errors.New("session: tick fault")
)
