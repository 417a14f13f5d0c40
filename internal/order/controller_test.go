package order

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"testing"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	replyOK       = `{"status":"ok","message":"accepted"}`
	replyRejected = `{"status":"error","message":"Insufficient balance."}`
	replyNotFound = `{"status":"error","message":"Order not found"}`
)

// scriptTransport answers requests from a queue and records what was sent.
type scriptTransport struct {
	replies  []string
	requests []string
}

func (s *scriptTransport) Request(_ context.Context, payload []byte) ([]byte, error) {
	s.requests = append(s.requests, string(payload))
	if len(s.replies) == 0 {
		return []byte(replyOK), nil
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return []byte(reply), nil
}

func newTestController(t *testing.T, transport Transport) *Controller {
	t.Helper()
	controller, err := NewController(transport, enum.ExchangeBinanceSpot, "BTC_USDT", nil)
	require.NoError(t, err)
	return controller
}

func TestSubmitInsertsOutstanding(t *testing.T) {
	transport := &scriptTransport{}
	controller := newTestController(t, transport)

	cid, err := controller.Submit(context.Background(), enum.OrderSideBuy, 65009.9, 1.0)
	require.NoError(t, err)
	assert.Equal(t, "1", cid)
	assert.Equal(t, []string{"1"}, controller.Outstanding())

	request := transport.requests[0]
	assert.True(t, strings.HasPrefix(request, "POST_ORDER{"))
	assert.Contains(t, request, `"cid":"1"`)
	assert.Contains(t, request, `"price":65009.9`)
	assert.Contains(t, request, `"filed_amount":0`)
	assert.Contains(t, request, `"avg_price":65009.9`)
}

func TestSubmitRejectedDiscardsID(t *testing.T) {
	transport := &scriptTransport{replies: []string{replyRejected, replyOK}}
	controller := newTestController(t, transport)

	_, err := controller.Submit(context.Background(), enum.OrderSideBuy, 100, 1)
	assert.ErrorIs(t, err, exception.ErrOrderRejected)
	assert.Empty(t, controller.Outstanding())

	// The rejected id is consumed, never reissued.
	cid, err := controller.Submit(context.Background(), enum.OrderSideBuy, 100, 1)
	require.NoError(t, err)
	assert.Equal(t, "2", cid)
}

func TestSubmitInvalidArguments(t *testing.T) {
	controller := newTestController(t, &scriptTransport{})

	_, err := controller.Submit(context.Background(), enum.OrderSide(0), 100, 1)
	assert.ErrorIs(t, err, exception.ErrOrderInvalidRequest)
	_, err = controller.Submit(context.Background(), enum.OrderSideBuy, 0, 1)
	assert.ErrorIs(t, err, exception.ErrOrderInvalidRequest)
	_, err = controller.Submit(context.Background(), enum.OrderSideBuy, 100, 0)
	assert.ErrorIs(t, err, exception.ErrOrderInvalidRequest)
	assert.Zero(t, controller.Issued())
}

// Ids must be strictly increasing for the session lifetime, across both
// rejections and cancellations.
func TestIDsStrictlyIncreasing(t *testing.T) {
	transport := &scriptTransport{replies: []string{
		replyOK, replyRejected, replyOK, replyOK, replyOK,
	}}
	controller := newTestController(t, transport)
	ctx := context.Background()

	issued := make([]uint64, 0, 3)

	cid1, err := controller.Submit(ctx, enum.OrderSideBuy, 100, 1)
	require.NoError(t, err)
	issued = append(issued, mustParse(t, cid1))

	_, err = controller.Submit(ctx, enum.OrderSideSell, 100, 1)
	require.Error(t, err)

	cid2, err := controller.Submit(ctx, enum.OrderSideSell, 100, 1)
	require.NoError(t, err)
	issued = append(issued, mustParse(t, cid2))

	require.NoError(t, controller.Cancel(ctx, cid1))

	cid3, err := controller.Submit(ctx, enum.OrderSideBuy, 100, 1)
	require.NoError(t, err)
	issued = append(issued, mustParse(t, cid3))

	for i := 1; i < len(issued); i++ {
		assert.Greater(t, issued[i], issued[i-1])
	}
}

func TestCancelRemovesOutstanding(t *testing.T) {
	transport := &scriptTransport{}
	controller := newTestController(t, transport)
	ctx := context.Background()

	cid, err := controller.Submit(ctx, enum.OrderSideBuy, 100, 1)
	require.NoError(t, err)

	require.NoError(t, controller.Cancel(ctx, cid))
	assert.Empty(t, controller.Outstanding())
	assert.Equal(t, "CANCEL_ORDER"+cid, transport.requests[1])
}

func TestCancelUnknownID(t *testing.T) {
	transport := &scriptTransport{}
	controller := newTestController(t, transport)

	err := controller.Cancel(context.Background(), "999")
	assert.ErrorIs(t, err, exception.ErrOrderUnknownID)
	assert.Empty(t, transport.requests, "no request may reach the server for an id it never saw")
}

func TestCancelRejectedNotReinserted(t *testing.T) {
	transport := &scriptTransport{replies: []string{replyOK, replyNotFound}}
	controller := newTestController(t, transport)
	ctx := context.Background()

	cid, err := controller.Submit(ctx, enum.OrderSideBuy, 100, 1)
	require.NoError(t, err)

	err = controller.Cancel(ctx, cid)
	assert.ErrorIs(t, err, exception.ErrOrderCancelRejected)
	assert.Empty(t, controller.Outstanding())
}

// A sweep issues exactly one cancellation per outstanding id and keeps
// going past individual failures.
func TestSweepBestEffort(t *testing.T) {
	transport := &scriptTransport{replies: []string{
		replyOK, replyOK, replyOK, // three submits
		replyOK, replyNotFound, replyOK, // sweep: second cancel fails
	}}
	controller := newTestController(t, transport)
	ctx := context.Background()

	for range 3 {
		_, err := controller.Submit(ctx, enum.OrderSideBuy, 100, 1)
		require.NoError(t, err)
	}

	results := controller.Sweep(ctx)
	require.Len(t, results, 3)

	var failures int
	swept := make([]string, 0, 3)
	for _, result := range results {
		swept = append(swept, result.CID)
		if result.Err != nil {
			failures++
		}
	}
	sort.Strings(swept)
	assert.Equal(t, []string{"1", "2", "3"}, swept)
	assert.Equal(t, 1, failures)
	assert.Empty(t, controller.Outstanding())

	var cancels int
	for _, request := range transport.requests {
		if strings.HasPrefix(request, "CANCEL_ORDER") {
			cancels++
		}
	}
	assert.Equal(t, 3, cancels)
}

func TestSweepEmptySet(t *testing.T) {
	transport := &scriptTransport{}
	controller := newTestController(t, transport)
	assert.Nil(t, controller.Sweep(context.Background()))
	assert.Empty(t, transport.requests)
}

func mustParse(t *testing.T, cid string) uint64 {
	t.Helper()
	v, err := strconv.ParseUint(cid, 10, 64)
	require.NoError(t, err)
	return v
}

var _ Recorder = recorderSpy{}

type recorderSpy struct {
	orders  *[]model.Order
	cancels *[]string
}

func (r recorderSpy) RecordOrder(ord model.Order) {
	*r.orders = append(*r.orders, ord)
}

func (r recorderSpy) RecordCancel(cid string, accepted bool) {
	*r.cancels = append(*r.cancels, cid+":"+strconv.FormatBool(accepted))
}

func TestRecorderObservesLifecycle(t *testing.T) {
	var orders []model.Order
	var cancels []string
	transport := &scriptTransport{replies: []string{replyOK, replyNotFound, replyOK}}

	controller, err := NewController(transport, enum.ExchangeBinanceSpot, "BTC_USDT",
		recorderSpy{orders: &orders, cancels: &cancels})
	require.NoError(t, err)
	ctx := context.Background()

	cid, err := controller.Submit(ctx, enum.OrderSideSell, 200, 2)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, cid, orders[0].CID)
	assert.Equal(t, enum.OrderStateOpen, orders[0].State)

	_ = controller.Cancel(ctx, cid)
	assert.Equal(t, []string{cid + ":false"}, cancels)
}
