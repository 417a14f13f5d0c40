package account

import (
	"context"

	"main/internal/codec"
	"main/internal/model"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Transport is the session channel as the monitor sees it.
type Transport interface {
	Request(ctx context.Context, payload []byte) ([]byte, error)
}

// Monitor verifies server-side account state. Any failure here is fatal to
// the session: the client cannot independently verify balance correctness,
// so trading against a server that cannot report its own state must stop.
type Monitor struct {
	transport Transport
}

// NewMonitor creates a monitor bound to one session channel.
func NewMonitor(transport Transport) (*Monitor, error) {
	if transport == nil {
		return nil, exception.ErrNilInstance
	}
	return &Monitor{transport: transport}, nil
}

// Check requests the account snapshot and decodes it from the nested reply
// payload. Every failure path maps to ErrAccountFault.
func (m *Monitor) Check(ctx context.Context) (model.Account, error) {
	if m == nil {
		return model.Account{}, exception.ErrNilInstance
	}

	request, err := codec.EncodeCommand(codec.CommandGetAccountInfo, nil)
	if err != nil {
		return model.Account{}, errors.Wrap(exception.ErrAccountFault, err.Error())
	}

	reply, err := m.transport.Request(ctx, request)
	if err != nil {
		return model.Account{}, errors.Wrap(exception.ErrAccountFault, err.Error())
	}

	envelope, err := codec.DecodeEnvelope(reply)
	if err != nil {
		return model.Account{}, errors.Wrap(exception.ErrAccountFault, err.Error())
	}
	if !envelope.OK() {
		return model.Account{}, errors.Wrap(exception.ErrAccountFault, envelope.Message)
	}

	snapshot, err := codec.DecodeAccountPayload(envelope.Message)
	if err != nil {
		return model.Account{}, errors.Wrap(exception.ErrAccountFault, err.Error())
	}

	return snapshot, nil
}
