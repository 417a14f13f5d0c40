package account

import (
	"context"
	"testing"

	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptTransport struct {
	reply    string
	err      error
	requests []string
}

func (s *scriptTransport) Request(_ context.Context, payload []byte) ([]byte, error) {
	s.requests = append(s.requests, string(payload))
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.reply), nil
}

func TestCheckDecodesNestedSnapshot(t *testing.T) {
	transport := &scriptTransport{
		reply: `{"status":"ok","message":"{\"backtest_id\":\"bt-1\",\"balance\":{\"total\":100,\"available\":70,\"freezed\":30}}"}`,
	}
	monitor, err := NewMonitor(transport)
	require.NoError(t, err)

	account, err := monitor.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bt-1", account.BacktestID)
	assert.Equal(t, 70.0, account.Balance.Available)
	assert.Equal(t, 30.0, account.Balance.Freezed)

	require.Len(t, transport.requests, 1)
	assert.Equal(t, "GET_ACCOUNT_INFO", transport.requests[0])
}

func TestCheckNonOKIsFault(t *testing.T) {
	transport := &scriptTransport{reply: `{"status":"error","message":"engine halted"}`}
	monitor, err := NewMonitor(transport)
	require.NoError(t, err)

	_, err = monitor.Check(context.Background())
	assert.ErrorIs(t, err, exception.ErrAccountFault)
	assert.ErrorContains(t, err, "engine halted")
}

func TestCheckMalformedReplyIsFault(t *testing.T) {
	transport := &scriptTransport{reply: `{"status":`}
	monitor, err := NewMonitor(transport)
	require.NoError(t, err)

	_, err = monitor.Check(context.Background())
	assert.ErrorIs(t, err, exception.ErrAccountFault)
}

func TestCheckMalformedNestedPayloadIsFault(t *testing.T) {
	transport := &scriptTransport{reply: `{"status":"ok","message":"not json"}`}
	monitor, err := NewMonitor(transport)
	require.NoError(t, err)

	_, err = monitor.Check(context.Background())
	assert.ErrorIs(t, err, exception.ErrAccountFault)
}

func TestCheckChannelErrorIsFault(t *testing.T) {
	transport := &scriptTransport{err: exception.ErrChannelTimeout}
	monitor, err := NewMonitor(transport)
	require.NoError(t, err)

	_, err = monitor.Check(context.Background())
	assert.ErrorIs(t, err, exception.ErrAccountFault)
}
