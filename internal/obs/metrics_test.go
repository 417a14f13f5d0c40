package obs

import (
	"context"
	"testing"
	"time"

	"main/internal/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest(codec.CommandTick, 2*time.Millisecond, false)
	m.ObserveRequest(codec.CommandTick, 4*time.Millisecond, true)
	m.ObserveRequest(codec.CommandPostOrder, time.Millisecond, false)

	stats := m.Snapshot()
	assert.Equal(t, uint64(2), stats.RequestCounts[codec.CommandTick])
	assert.Equal(t, uint64(1), stats.RequestCounts[codec.CommandPostOrder])
	assert.Equal(t, uint64(1), stats.FaultCounts[codec.CommandTick])

	assert.Equal(t, uint64(3), stats.RoundTrip.Count)
	assert.Equal(t, uint64(2), stats.Tick.Count)
	assert.Equal(t, 2*time.Millisecond, stats.Tick.Min)
	assert.Equal(t, 4*time.Millisecond, stats.Tick.Max)
	assert.Equal(t, 3*time.Millisecond, stats.Tick.Avg)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(codec.CommandTick, time.Millisecond, false)
	m.IncRejection()
	m.IncSweepFailure()
	assert.Zero(t, m.Snapshot().RoundTrip.Count)
}

type echoTransport struct {
	requests [][]byte
}

func (e *echoTransport) Request(_ context.Context, payload []byte) ([]byte, error) {
	e.requests = append(e.requests, payload)
	return payload, nil
}

func TestMeteredTransport(t *testing.T) {
	echo := &echoTransport{}
	m := NewMetrics()
	metered := Meter(echo, m)

	reply, err := metered.Request(context.Background(), []byte("TICK"))
	require.NoError(t, err)
	assert.Equal(t, []byte("TICK"), reply)

	_, err = metered.Request(context.Background(), []byte(`CANCEL_ORDER3`))
	require.NoError(t, err)

	// Unknown tags pass through without a sample.
	_, err = metered.Request(context.Background(), []byte("NOPE"))
	require.NoError(t, err)

	stats := m.Snapshot()
	assert.Equal(t, uint64(1), stats.RequestCounts[codec.CommandTick])
	assert.Equal(t, uint64(1), stats.RequestCounts[codec.CommandCancelOrder])
	assert.Equal(t, uint64(2), stats.RoundTrip.Count)
	assert.Len(t, echo.requests, 3)
}
