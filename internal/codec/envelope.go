package codec

import (
	"main/internal/model"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"
)

const statusOK = "ok"

// Envelope is the outer reply frame of every command. For tick and account
// replies the Message field itself holds a second JSON document.
type Envelope struct {
	BacktestID string `json:"backtest_id"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// OK reports whether the server answered with a success status.
func (e Envelope) OK() bool {
	return e.Status == statusOK
}

// Err converts a non-ok envelope into an error carrying the server message.
func (e Envelope) Err() error {
	if e.OK() {
		return nil
	}
	return errors.Errorf("server status %q: %s", e.Status, e.Message)
}

// DecodeEnvelope parses the outer reply frame. A malformed frame is
// reported as an error and must be treated like a non-ok status by callers.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var envelope Envelope
	if err := sonic.ConfigFastest.Unmarshal(raw, &envelope); err != nil {
		return Envelope{}, errors.Wrap(err, "decode reply envelope")
	}
	return envelope, nil
}

// DecodeTickPayload parses the nested tick snapshot out of an ok envelope's
// message field.
func DecodeTickPayload(message string) (model.TickSnapshot, error) {
	var snapshot model.TickSnapshot
	if err := sonic.ConfigFastest.Unmarshal([]byte(message), &snapshot); err != nil {
		return model.TickSnapshot{}, errors.Wrap(err, "decode tick snapshot")
	}
	return snapshot, nil
}

// DecodeAccountPayload parses the nested account snapshot out of an ok
// envelope's message field.
func DecodeAccountPayload(message string) (model.Account, error) {
	var account model.Account
	if err := sonic.ConfigFastest.Unmarshal([]byte(message), &account); err != nil {
		return model.Account{}, errors.Wrap(err, "decode account snapshot")
	}
	return account, nil
}
