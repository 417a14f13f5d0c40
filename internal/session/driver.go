package session

import (
	"context"
	"errors"

	"main/internal/model"
	"main/internal/order"
	"main/pkg/exception"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

// State is the tick driver position in its request cycle.
type State uint8

const (
	StateIdle State = iota
	StateRequesting
	StateProcessing
	StateExhausted
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRequesting:
		return "Requesting"
	case StateProcessing:
		return "Processing"
	case StateExhausted:
		return "Exhausted"
	case StateFaulted:
		return "Faulted"
	default:
		return "Unknown"
	}
}

// TickHandler consumes one tick. Returning an error stops the loop; an
// account fault is the expected fatal case. Order rejections should be
// handled inside the handler, they do not have to stop the replay.
type TickHandler func(ctx context.Context, tick model.TickSnapshot) error

// Report describes how a replay ended.
type Report struct {
	State State
	Ticks int

	// Cause is the tick fault that ended the replay. End of data and an
	// unrecoverable server error are observationally identical here.
	Cause error

	// Sweep holds the per-id outcome of the recovery sweep, when one ran.
	Sweep []order.SweepResult
}

// Run drives the tick loop until the server faults a tick request, the
// handler returns an error, or the context is cancelled. A faulted tick
// triggers the recovery sweep exactly once, then the session is terminated.
// The channel is closed before Run returns, whatever the cause.
func (s *Session) Run(ctx context.Context, handler TickHandler) (Report, error) {
	if s == nil {
		return Report{}, exception.ErrNilInstance
	}
	if handler == nil {
		return Report{}, exception.ErrInvalidArgument
	}
	if s.terminated {
		return Report{}, exception.ErrSessionTerminated
	}

	report := Report{State: StateIdle}
	defer s.shutdown(&report)

	for {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case <-sys.Shutdown():
			return report, exception.ErrSessionTerminated
		default:
		}

		report.State = StateRequesting
		tick, err := s.NextTick(ctx)
		if err != nil {
			report.State = StateFaulted
			report.Cause = err
			report.Sweep = s.orders.Sweep(ctx)
			report.State = StateExhausted
			return report, nil
		}

		report.State = StateProcessing
		report.Ticks++
		if err := handler(ctx, tick); err != nil {
			if errors.Is(err, exception.ErrAccountFault) {
				// No sweep here: the server state itself is untrustworthy.
				report.Cause = err
			}
			return report, err
		}

		report.State = StateIdle
	}
}

func (s *Session) shutdown(report *Report) {
	s.terminated = true
	if closer, ok := s.channel.(Closer); ok {
		if err := closer.Close(); err != nil {
			logs.Warnf("session %s close channel, err: %+v", s.id, err)
		}
	}

	if report.Cause != nil {
		logs.Infof("session %s terminated after %d ticks, state: %s, cause: %+v",
			s.id, report.Ticks, report.State, report.Cause)
		return
	}
	logs.Infof("session %s terminated after %d ticks, state: %s", s.id, report.Ticks, report.State)
}
