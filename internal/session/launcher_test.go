package session

import (
	"context"
	"strings"
	"testing"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLaunchConfig() model.LaunchConfig {
	return model.LaunchConfig{
		Exchanges: []enum.Exchange{enum.ExchangeBinanceSpot},
		Symbol:    "BTC_USDT",
		StartTime: 0,
		EndTime:   1728885047114,
		Balance:   model.Balance{Total: 100000000, Available: 100000000},
		FeeRate:   model.FeeRate{},
	}
}

func TestLaunchReturnsSessionID(t *testing.T) {
	transport := &scriptTransport{replies: []string{
		`{"backtest_id":"bt-abc123","status":"ok","message":"bt-abc123"}`,
	}}
	launcher, err := NewLauncher(transport)
	require.NoError(t, err)

	id, err := launcher.Launch(context.Background(), testLaunchConfig())
	require.NoError(t, err)
	assert.Equal(t, "bt-abc123", id)

	// Exactly one round trip, tagged and followed by the JSON body.
	require.Len(t, transport.requests, 1)
	request := transport.requests[0]
	assert.True(t, strings.HasPrefix(request, "LAUNCH_BACKTEST{"))
	assert.Contains(t, request, `"exchanges":["BinanceSpot"]`)
	assert.Contains(t, request, `"source":"Database"`)
}

func TestLaunchIDFallsBackToMessage(t *testing.T) {
	transport := &scriptTransport{replies: []string{
		`{"status":"ok","message":"bt-from-message"}`,
	}}
	launcher, err := NewLauncher(transport)
	require.NoError(t, err)

	id, err := launcher.Launch(context.Background(), testLaunchConfig())
	require.NoError(t, err)
	assert.Equal(t, "bt-from-message", id)
}

func TestLaunchFailureCreatesNoSession(t *testing.T) {
	transport := &scriptTransport{replies: []string{
		`{"status":"error","message":"Backtest launched failed."}`,
	}}
	launcher, err := NewLauncher(transport)
	require.NoError(t, err)

	_, err = launcher.Launch(context.Background(), testLaunchConfig())
	assert.ErrorIs(t, err, exception.ErrSessionLaunch)
	assert.ErrorContains(t, err, "Backtest launched failed.")
	assert.Len(t, transport.requests, 1, "the launcher never retries")
}

func TestLaunchEmptyIDIsError(t *testing.T) {
	transport := &scriptTransport{replies: []string{`{"status":"ok","message":""}`}}
	launcher, err := NewLauncher(transport)
	require.NoError(t, err)

	_, err = launcher.Launch(context.Background(), testLaunchConfig())
	assert.ErrorIs(t, err, exception.ErrSessionEmptyID)
}

func TestLaunchInvalidConfigSendsNothing(t *testing.T) {
	transport := &scriptTransport{}
	launcher, err := NewLauncher(transport)
	require.NoError(t, err)

	_, err = launcher.Launch(context.Background(), model.LaunchConfig{})
	assert.ErrorIs(t, err, exception.ErrSessionLaunch)
	assert.Empty(t, transport.requests)
}

func TestEndpointPath(t *testing.T) {
	assert.Equal(t, "/tmp/zilean_backtest/bt-1.ipc", EndpointPath("", "bt-1"))
	assert.Equal(t, "/run/bt/bt-2.ipc", EndpointPath("/run/bt", "bt-2"))
}
