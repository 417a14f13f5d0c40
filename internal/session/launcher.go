package session

import (
	"context"

	"main/internal/codec"
	"main/internal/model"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Transport is a request/reply channel as the session layer sees it.
type Transport interface {
	Request(ctx context.Context, payload []byte) ([]byte, error)
}

// Launcher starts backtest sessions over the bootstrap endpoint.
type Launcher struct {
	bootstrap Transport
}

// NewLauncher creates a launcher on the bootstrap channel.
func NewLauncher(bootstrap Transport) (*Launcher, error) {
	if bootstrap == nil {
		return nil, exception.ErrNilInstance
	}
	return &Launcher{bootstrap: bootstrap}, nil
}

// Launch performs exactly one launch round trip and returns the session id.
// It never retries; a failure is surfaced immediately and the caller decides
// whether to try again with new parameters.
func (l *Launcher) Launch(ctx context.Context, cfg model.LaunchConfig) (string, error) {
	if l == nil {
		return "", exception.ErrNilInstance
	}
	if err := cfg.Validate(); err != nil {
		return "", errors.Wrap(exception.ErrSessionLaunch, err.Error())
	}

	request, err := codec.EncodeCommand(codec.CommandLaunch, cfg)
	if err != nil {
		return "", errors.Wrap(exception.ErrSessionLaunch, err.Error())
	}

	reply, err := l.bootstrap.Request(ctx, request)
	if err != nil {
		return "", errors.Wrap(exception.ErrSessionLaunch, err.Error())
	}

	envelope, err := codec.DecodeEnvelope(reply)
	if err != nil {
		return "", errors.Wrap(exception.ErrSessionLaunch, err.Error())
	}
	if !envelope.OK() {
		return "", errors.Wrap(exception.ErrSessionLaunch, envelope.Message)
	}

	// Older server revisions return the id in the message field only.
	id := envelope.BacktestID
	if id == "" {
		id = envelope.Message
	}
	if id == "" {
		return "", exception.ErrSessionEmptyID
	}

	logs.Infof("backtest launched, id: %s", id)
	return id, nil
}
