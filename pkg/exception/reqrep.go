package exception

import "github.com/yanun0323/errors"

// Request/reply channel errors
var (
	// ErrEmptyPathChannel is returned when an endpoint path is empty.
	ErrEmptyPathChannel = errors.New("reqrep: empty endpoint path")

	// ErrNilChannel is returned when a nil channel receiver is used.
	ErrNilChannel = errors.New("reqrep: nil channel")

	// ErrChannelClosed is returned when a request is made on a closed channel.
	ErrChannelClosed = errors.New("reqrep: channel closed")

	// ErrChannelNotDialed is returned when Request is called before Dial.
	ErrChannelNotDialed = errors.New("reqrep: channel not dialed")

	// ErrChannelTimeout is returned when a round trip exceeds its deadline.
	ErrChannelTimeout = errors.New("reqrep: request timed out")

	// ErrFrameTooLarge is returned when a frame exceeds the size limit.
	ErrFrameTooLarge = errors.New("reqrep: frame too large")

	// ErrPathNotSocket is returned when the endpoint path exists and is not a socket.
	ErrPathNotSocket = errors.New("reqrep: path exists and is not a socket")
)
