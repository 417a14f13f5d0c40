package order

import (
	"context"
	"strconv"
	"time"

	"main/internal/codec"
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Transport is the session channel as the controller sees it: one request,
// one reply, blocking.
type Transport interface {
	Request(ctx context.Context, payload []byte) ([]byte, error)
}

// Recorder receives order lifecycle events for auditing. Implementations
// must not fail the trading path; errors stay on their side.
type Recorder interface {
	RecordOrder(order model.Order)
	RecordCancel(cid string, accepted bool)
}

// SweepResult is the outcome of one cancellation issued by a recovery sweep.
type SweepResult struct {
	CID string
	Err error
}

// Controller issues client order ids and keeps the outstanding-order set.
// Ids are strictly increasing for the lifetime of the session and are never
// reused, even after cancellation: the server routes cancellations by cid,
// so a collision corrupts cancel routing.
//
// A controller is owned by its session's tick loop and is not safe for
// concurrent use.
type Controller struct {
	transport Transport
	exchange  enum.Exchange
	symbol    string
	recorder  Recorder

	next        uint64
	outstanding map[string]struct{}
}

// NewController creates a controller bound to one session channel.
// The recorder may be nil.
func NewController(transport Transport, exchange enum.Exchange, symbol string, recorder Recorder) (*Controller, error) {
	if transport == nil {
		return nil, exception.ErrOrderNilController
	}
	if !exchange.IsAvailable() || symbol == "" {
		return nil, exception.ErrOrderInvalidRequest
	}

	return &Controller{
		transport:   transport,
		exchange:    exchange,
		symbol:      symbol,
		recorder:    recorder,
		outstanding: make(map[string]struct{}),
	}, nil
}

// Submit posts a limit order and returns the client order id on success.
// The id is consumed whether or not the server accepts the order; a rejected
// id is discarded, never reissued.
func (c *Controller) Submit(ctx context.Context, side enum.OrderSide, price, amount float64) (string, error) {
	if c == nil {
		return "", exception.ErrOrderNilController
	}
	if !side.IsAvailable() || price <= 0 || amount <= 0 {
		return "", exception.ErrOrderInvalidRequest
	}

	c.next++
	cid := strconv.FormatUint(c.next, 10)

	ord := model.Order{
		Exchange:     c.exchange,
		CID:          cid,
		Symbol:       c.symbol,
		Price:        price,
		Amount:       amount,
		FilledAmount: 0,
		AvgPrice:     price,
		Side:         side,
		State:        enum.OrderStateOpen,
		OrderType:    enum.OrderTypeLimit,
		TimeInForce:  enum.TimeInForceGTC,
		Timestamp:    time.Now().UnixMilli(),
	}

	request, err := codec.EncodeCommand(codec.CommandPostOrder, ord)
	if err != nil {
		return "", errors.Wrap(err, "encode order request")
	}

	reply, err := c.transport.Request(ctx, request)
	if err != nil {
		return "", errors.Wrap(err, "post order "+cid)
	}

	envelope, err := codec.DecodeEnvelope(reply)
	if err != nil {
		return "", errors.Wrap(exception.ErrOrderRejected, err.Error())
	}
	if !envelope.OK() {
		return "", errors.Wrap(exception.ErrOrderRejected, envelope.Message)
	}

	c.outstanding[cid] = struct{}{}
	if c.recorder != nil {
		c.recorder.RecordOrder(ord)
	}
	return cid, nil
}

// Cancel requests cancellation of a previously submitted order. The id
// leaves the outstanding set whatever the server answers; the server
// reconciles already-cancelled or already-filled orders on its side.
func (c *Controller) Cancel(ctx context.Context, cid string) error {
	if c == nil {
		return exception.ErrOrderNilController
	}
	if _, ok := c.outstanding[cid]; !ok {
		return exception.ErrOrderUnknownID
	}

	delete(c.outstanding, cid)

	request, err := codec.EncodeCommandRaw(codec.CommandCancelOrder, cid)
	if err != nil {
		return errors.Wrap(err, "encode cancel request")
	}

	reply, err := c.transport.Request(ctx, request)
	if err != nil {
		if c.recorder != nil {
			c.recorder.RecordCancel(cid, false)
		}
		return errors.Wrap(err, "cancel order "+cid)
	}

	envelope, err := codec.DecodeEnvelope(reply)
	accepted := err == nil && envelope.OK()
	if c.recorder != nil {
		c.recorder.RecordCancel(cid, accepted)
	}

	if err != nil {
		return errors.Wrap(exception.ErrOrderCancelRejected, err.Error())
	}
	if !envelope.OK() {
		return errors.Wrap(exception.ErrOrderCancelRejected, envelope.Message)
	}
	return nil
}

// Sweep cancels every outstanding order, one request at a time, and reports
// the per-id outcome. Failures do not stop the sweep; the policy is
// best-effort cleanup so resting orders do not leak past a faulted session.
func (c *Controller) Sweep(ctx context.Context) []SweepResult {
	if c == nil || len(c.outstanding) == 0 {
		return nil
	}

	cids := c.Outstanding()
	results := make([]SweepResult, 0, len(cids))
	for _, cid := range cids {
		err := c.Cancel(ctx, cid)
		if err != nil {
			logs.Warnf("sweep cancel %s, err: %+v", cid, err)
		}
		results = append(results, SweepResult{CID: cid, Err: err})
	}
	return results
}

// Outstanding returns a snapshot of the outstanding client order ids.
func (c *Controller) Outstanding() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.outstanding))
	for cid := range c.outstanding {
		out = append(out, cid)
	}
	return out
}

// Issued returns how many ids the controller has generated so far.
func (c *Controller) Issued() uint64 {
	if c == nil {
		return 0
	}
	return c.next
}
