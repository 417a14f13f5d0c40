package session

import (
	"context"
	"time"

	"main/internal/account"
	"main/internal/codec"
	"main/internal/model"
	"main/internal/order"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Options tune one session's protocol behavior.
type Options struct {
	// TickWithSessionID appends the session id to the tick command tag,
	// the form newer server revisions expect.
	TickWithSessionID bool

	// RequestTimeout bounds every round trip on the session channel.
	// Zero keeps the protocol's original unbounded wait. A timeout is
	// treated exactly like a faulted reply for the same request kind.
	RequestTimeout time.Duration

	// Recorder receives order lifecycle events. May be nil.
	Recorder order.Recorder
}

// Closer is the subset of the channel the session needs beyond Transport.
type Closer interface {
	Close() error
}

// Session is one backtest run: its id, its channel, its own order id space.
// Sessions share nothing; concurrent backtests each own a Session.
type Session struct {
	id      string
	channel Transport
	orders  *order.Controller
	monitor *account.Monitor
	opt     Options

	terminated bool
}

// New binds a launched session to its per-session channel. The first
// exchange of the launch config is the venue orders are routed to.
func New(id string, channel Transport, cfg model.LaunchConfig, opt Options) (*Session, error) {
	if id == "" {
		return nil, exception.ErrSessionEmptyID
	}
	if channel == nil {
		return nil, exception.ErrNilInstance
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	orders, err := order.NewController(channel, cfg.Exchanges[0], cfg.Symbol, opt.Recorder)
	if err != nil {
		return nil, err
	}
	monitor, err := account.NewMonitor(channel)
	if err != nil {
		return nil, err
	}

	return &Session{
		id:      id,
		channel: channel,
		orders:  orders,
		monitor: monitor,
		opt:     opt,
	}, nil
}

// ID returns the server-issued session identifier.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Orders returns the session's order controller.
func (s *Session) Orders() *order.Controller {
	if s == nil {
		return nil
	}
	return s.orders
}

// NextTick requests the next replay step and decodes the nested snapshot.
// Any failure, a non-ok status, an undecodable reply or a channel error, is
// a tick fault.
func (s *Session) NextTick(ctx context.Context) (model.TickSnapshot, error) {
	if s == nil {
		return model.TickSnapshot{}, exception.ErrNilInstance
	}
	if s.terminated {
		return model.TickSnapshot{}, exception.ErrSessionTerminated
	}

	arg := ""
	if s.opt.TickWithSessionID {
		arg = s.id
	}
	request, err := codec.EncodeCommandRaw(codec.CommandTick, arg)
	if err != nil {
		return model.TickSnapshot{}, errors.Wrap(exception.ErrTickFault, err.Error())
	}

	ctx, cancel := s.requestCtx(ctx)
	defer cancel()

	reply, err := s.channel.Request(ctx, request)
	if err != nil {
		return model.TickSnapshot{}, errors.Wrap(exception.ErrTickFault, err.Error())
	}

	envelope, err := codec.DecodeEnvelope(reply)
	if err != nil {
		return model.TickSnapshot{}, errors.Wrap(exception.ErrTickFault, err.Error())
	}
	if !envelope.OK() {
		return model.TickSnapshot{}, errors.Wrap(exception.ErrTickFault, envelope.Message)
	}

	snapshot, err := codec.DecodeTickPayload(envelope.Message)
	if err != nil {
		return model.TickSnapshot{}, errors.Wrap(exception.ErrTickFault, err.Error())
	}

	return snapshot, nil
}

// CheckAccount fetches the server-side account snapshot. A failure is fatal
// to the session.
func (s *Session) CheckAccount(ctx context.Context) (model.Account, error) {
	if s == nil {
		return model.Account{}, exception.ErrNilInstance
	}
	if s.terminated {
		return model.Account{}, exception.ErrSessionTerminated
	}

	ctx, cancel := s.requestCtx(ctx)
	defer cancel()

	return s.monitor.Check(ctx)
}

// ClosePosition asks the server to flatten the position held in symbol.
// A refusal is surfaced to the caller; it does not terminate the session.
func (s *Session) ClosePosition(ctx context.Context, symbol string) error {
	if s == nil {
		return exception.ErrNilInstance
	}
	if s.terminated {
		return exception.ErrSessionTerminated
	}
	if symbol == "" {
		return exception.ErrInvalidArgument
	}

	request, err := codec.EncodeCommandRaw(codec.CommandClosePosition, symbol)
	if err != nil {
		return errors.Wrap(err, "encode close position request")
	}

	ctx, cancel := s.requestCtx(ctx)
	defer cancel()

	reply, err := s.channel.Request(ctx, request)
	if err != nil {
		return errors.Wrap(err, "close position "+symbol)
	}

	envelope, err := codec.DecodeEnvelope(reply)
	if err != nil {
		return errors.Wrap(err, "close position "+symbol)
	}
	return envelope.Err()
}

// Close performs a graceful CLOSE round trip when possible, then closes the
// channel. Safe to call after the tick loop has already terminated.
func (s *Session) Close(ctx context.Context) error {
	if s == nil {
		return exception.ErrNilInstance
	}

	if !s.terminated {
		s.terminated = true

		request, err := codec.EncodeCommand(codec.CommandClose, nil)
		if err == nil {
			closeCtx, cancel := s.requestCtx(ctx)
			if _, err := s.channel.Request(closeCtx, request); err != nil {
				logs.Warnf("session %s close command, err: %+v", s.id, err)
			}
			cancel()
		}
	}

	if closer, ok := s.channel.(Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *Session) requestCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opt.RequestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opt.RequestTimeout)
}
