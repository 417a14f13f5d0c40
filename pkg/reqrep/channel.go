package reqrep

import (
	"context"
	"net"
	"os"
	"sync"
	"time"

	"main/pkg/exception"
)

const unixNetwork = "unix"

// Channel is the client side of a synchronous request/reply channel bound to
// a named local endpoint. A channel carries at most one in-flight request:
// Request holds an internal lock for the whole round trip, so a second caller
// blocks until the first reply has been fully consumed.
type Channel struct {
	addr net.UnixAddr

	mu     sync.Mutex
	conn   *net.UnixConn
	closed bool
}

// NewChannel creates a channel for the provided endpoint path.
func NewChannel(path string) (*Channel, error) {
	if path == "" {
		return nil, exception.ErrEmptyPathChannel
	}
	return &Channel{addr: net.UnixAddr{Name: path, Net: unixNetwork}}, nil
}

// Path returns the configured endpoint path.
func (c *Channel) Path() string {
	if c == nil {
		return ""
	}
	return c.addr.Name
}

// Dial connects the channel to its endpoint.
func (c *Channel) Dial() error {
	if c == nil {
		return exception.ErrNilChannel
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return exception.ErrChannelClosed
	}

	conn, err := net.DialUnix(unixNetwork, nil, &c.addr)
	if err != nil {
		return err
	}

	c.conn = conn
	return nil
}

// Request sends one framed request and blocks for exactly one framed reply.
// A context deadline bounds the whole round trip; expiry is reported as
// exception.ErrChannelTimeout so callers can treat it like a faulted reply.
// Without a deadline the wait is unbounded.
//
// Any write or read failure mid round trip, a timeout included, closes the
// channel: the stream may hold a half-written request or an unconsumed late
// reply, and pairing the next request with the wrong reply is worse than
// failing every request after it.
func (c *Channel) Request(ctx context.Context, payload []byte) ([]byte, error) {
	if c == nil {
		return nil, exception.ErrNilChannel
	}
	if len(payload) > maxFrameSize {
		return nil, exception.ErrFrameTooLarge
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, exception.ErrChannelClosed
	}
	if c.conn == nil {
		return nil, exception.ErrChannelNotDialed
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.conn.SetDeadline(deadline); err != nil {
			return nil, err
		}
		defer func() {
			if c.conn != nil {
				_ = c.conn.SetDeadline(time.Time{})
			}
		}()
	}

	if err := writeFrame(c.conn, payload); err != nil {
		return nil, c.poison(err)
	}

	reply, err := readFrame(c.conn)
	if err != nil {
		return nil, c.poison(err)
	}

	return reply, nil
}

// poison tears down the connection after a broken round trip. Called with
// the lock held.
func (c *Channel) poison(err error) error {
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	return mapTimeout(err)
}

// Close tears down the connection. Requests after Close fail.
func (c *Channel) Close() error {
	if c == nil {
		return exception.ErrNilChannel
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	return err
}

func mapTimeout(err error) error {
	if os.IsTimeout(err) {
		return exception.ErrChannelTimeout
	}
	return err
}
