package reqrep

import (
	"context"
	"errors"
	"net"
	"os"
	"sync"

	"main/pkg/exception"
)

// Handler answers a single request frame with a single reply frame.
type Handler func(request []byte) []byte

// Server is the reply side of a request/reply endpoint. It answers each
// connection frame-per-frame, preserving the one-request-one-reply discipline.
type Server struct {
	addr net.UnixAddr
	ln   *net.UnixListener
}

// NewServer creates a server for the provided endpoint path.
func NewServer(path string) (*Server, error) {
	if path == "" {
		return nil, exception.ErrEmptyPathChannel
	}
	return &Server{addr: net.UnixAddr{Name: path, Net: unixNetwork}}, nil
}

// Path returns the configured endpoint path.
func (s *Server) Path() string {
	if s == nil {
		return ""
	}
	return s.addr.Name
}

// Listen starts listening on the endpoint path. An existing socket file is
// removed first; any other file type at the path is an error.
func (s *Server) Listen() error {
	if s == nil {
		return exception.ErrNilInstance
	}
	if err := RemoveIfExists(s.addr.Name); err != nil {
		return err
	}

	ln, err := net.ListenUnix(unixNetwork, &s.addr)
	if err != nil {
		return err
	}
	ln.SetUnlinkOnClose(true)
	s.ln = ln
	return nil
}

// Serve accepts connections until the context is done or the listener closes.
// Each connection is answered frame-per-frame by the handler.
func (s *Server) Serve(ctx context.Context, handler Handler) error {
	if s == nil || s.ln == nil {
		return exception.ErrNilInstance
	}
	if handler == nil {
		return exception.ErrInvalidArgument
	}

	ln := s.ln
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.AcceptUnix()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			return err
		}

		wg.Add(1)
		go func(c *net.UnixConn) {
			defer wg.Done()
			serveConn(c, handler)
		}(conn)
	}

	wg.Wait()
	return nil
}

// Close stops the listener.
func (s *Server) Close() error {
	if s == nil || s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.ln = nil
	return err
}

func serveConn(conn *net.UnixConn, handler Handler) {
	defer conn.Close()

	for {
		request, err := readFrame(conn)
		if err != nil {
			return
		}

		if err := writeFrame(conn, handler(request)); err != nil {
			return
		}
	}
}

// RemoveIfExists removes the socket file at path if it exists.
func RemoveIfExists(path string) error {
	if path == "" {
		return exception.ErrEmptyPathChannel
	}

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSocket == 0 {
		return exception.ErrPathNotSocket
	}
	return os.Remove(path)
}
