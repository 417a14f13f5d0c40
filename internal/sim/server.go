// Package sim is an in-memory stand-in for the backtest server. It speaks
// the full command protocol over reqrep endpoints and replays a canned depth
// series. It acknowledges and tracks resting orders without matching them;
// engine semantics stay on the real server.
package sim

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"

	"main/internal/codec"
	"main/internal/model"
	"main/internal/session"
	"main/pkg/reqrep"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/logs"
)

// Config shapes the simulated replay.
type Config struct {
	// BootstrapPath is the launch endpoint to bind.
	BootstrapPath string

	// EndpointDir is where per-session endpoints are created.
	EndpointDir string

	// Ticks is the depth series each session replays. When exhausted the
	// tick command answers a non-ok status, like end of data.
	Ticks []model.Depth

	// FailCancel maps client order ids to an error message the cancel
	// command answers instead of succeeding. Used to exercise best-effort
	// sweeps.
	FailCancel map[string]string
}

// Server accepts launch requests and spawns one endpoint per session.
type Server struct {
	cfg       Config
	bootstrap *reqrep.Server

	mu       sync.Mutex
	sessions []*reqrep.Server
}

// NewServer creates a simulation server with the given replay config.
func NewServer(cfg Config) (*Server, error) {
	if cfg.BootstrapPath == "" {
		cfg.BootstrapPath = session.DefaultBootstrapPath
	}
	if cfg.EndpointDir == "" {
		cfg.EndpointDir = session.DefaultEndpointDir
	}

	bootstrap, err := reqrep.NewServer(cfg.BootstrapPath)
	if err != nil {
		return nil, err
	}

	return &Server{cfg: cfg, bootstrap: bootstrap}, nil
}

// Start binds the bootstrap endpoint and serves launch requests until the
// context is done.
func (s *Server) Start(ctx context.Context) error {
	if err := s.bootstrap.Listen(); err != nil {
		return err
	}

	logs.Infof("sim server listening: %s", s.bootstrap.Path())
	return s.bootstrap.Serve(ctx, func(request []byte) []byte {
		return s.handleBootstrap(ctx, request)
	})
}

// Close stops the bootstrap endpoint and every session endpoint.
func (s *Server) Close() error {
	err := s.bootstrap.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, srv := range s.sessions {
		_ = srv.Close()
	}
	s.sessions = nil
	return err
}

func (s *Server) handleBootstrap(ctx context.Context, request []byte) []byte {
	tag := codec.CommandLaunch.Tag()
	message := string(request)
	if !strings.HasPrefix(message, tag) {
		return marshalEnvelope("", "error", "Unknown command.")
	}

	var cfg model.LaunchConfig
	if err := sonic.ConfigFastest.Unmarshal([]byte(strings.TrimPrefix(message, tag)), &cfg); err != nil {
		return marshalEnvelope("", "error", "Backtest launched failed."+err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return marshalEnvelope("", "error", "Backtest launched failed."+err.Error())
	}

	id := "bt-" + randomID()
	endpoint, err := reqrep.NewServer(session.EndpointPath(s.cfg.EndpointDir, id))
	if err != nil {
		return marshalEnvelope("", "error", err.Error())
	}
	if err := endpoint.Listen(); err != nil {
		return marshalEnvelope("", "error", err.Error())
	}

	bt := newBacktest(id, cfg, s.cfg.Ticks, s.cfg.FailCancel)
	go func() {
		if err := endpoint.Serve(ctx, bt.handle); err != nil {
			logs.Warnf("sim session %s serve, err: %+v", id, err)
		}
	}()

	s.mu.Lock()
	s.sessions = append(s.sessions, endpoint)
	s.mu.Unlock()

	logs.Infof("sim session launched: %s", id)
	return marshalEnvelope(id, "ok", id)
}

func randomID() string {
	var buf [6]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "000000000000"
	}
	return hex.EncodeToString(buf[:])
}

func marshalEnvelope(backtestID, status, message string) []byte {
	out, err := sonic.ConfigFastest.Marshal(codec.Envelope{
		BacktestID: backtestID,
		Status:     status,
		Message:    message,
	})
	if err != nil {
		return []byte(`{"status":"error","message":"internal encode failure"}`)
	}
	return out
}
