// Package obs collects in-process counters and latency stats for one
// driver run. Everything is atomics, safe to observe from the tick loop
// without slowing it down.
package obs

import (
	"context"
	"sync/atomic"
	"time"

	"main/internal/codec"
)

const maxCommand = int(codec.CommandClose)

// Metrics aggregates per-command round-trip counters and latency stats.
type Metrics struct {
	requestCounts [maxCommand + 1]uint64
	faultCounts   [maxCommand + 1]uint64
	rejections    uint64
	sweepFailures uint64

	roundTrip LatencyStats
	tick      LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	RequestCounts map[codec.Command]uint64
	FaultCounts   map[codec.Command]uint64
	Rejections    uint64
	SweepFailures uint64
	RoundTrip     LatencySnapshot
	Tick          LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveRequest records one round trip of the given command.
func (m *Metrics) ObserveRequest(cmd codec.Command, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	idx := int(cmd)
	if idx < 0 || idx >= len(m.requestCounts) {
		return
	}
	atomic.AddUint64(&m.requestCounts[idx], 1)
	if failed {
		atomic.AddUint64(&m.faultCounts[idx], 1)
	}
	m.roundTrip.Observe(d)
	if cmd == codec.CommandTick {
		m.tick.Observe(d)
	}
}

// IncRejection records an order the server refused.
func (m *Metrics) IncRejection() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.rejections, 1)
}

// IncSweepFailure records a recovery cancel the server refused.
func (m *Metrics) IncSweepFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sweepFailures, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	requests := make(map[codec.Command]uint64)
	faults := make(map[codec.Command]uint64)
	for i := range m.requestCounts {
		if v := atomic.LoadUint64(&m.requestCounts[i]); v > 0 {
			requests[codec.Command(i)] = v
		}
		if v := atomic.LoadUint64(&m.faultCounts[i]); v > 0 {
			faults[codec.Command(i)] = v
		}
	}
	return Snapshot{
		RequestCounts: requests,
		FaultCounts:   faults,
		Rejections:    atomic.LoadUint64(&m.rejections),
		SweepFailures: atomic.LoadUint64(&m.sweepFailures),
		RoundTrip:     m.roundTrip.Snapshot(),
		Tick:          m.tick.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}

// Transport is a request/reply channel as the meter sees it.
type Transport interface {
	Request(ctx context.Context, payload []byte) ([]byte, error)
}

// MeteredTransport wraps a channel and records one sample per round trip,
// keyed by the command tag of the outgoing request.
type MeteredTransport struct {
	next    Transport
	metrics *Metrics
}

// Meter wraps transport. A nil metrics passes requests through unobserved.
func Meter(transport Transport, metrics *Metrics) *MeteredTransport {
	return &MeteredTransport{next: transport, metrics: metrics}
}

func (t *MeteredTransport) Request(ctx context.Context, payload []byte) ([]byte, error) {
	cmd, known := codec.CommandOf(payload)

	begin := time.Now()
	reply, err := t.next.Request(ctx, payload)
	if known {
		t.metrics.ObserveRequest(cmd, time.Since(begin), err != nil)
	}
	return reply, err
}

// Close forwards to the wrapped channel when it supports closing.
func (t *MeteredTransport) Close() error {
	if closer, ok := t.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
