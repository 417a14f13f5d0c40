package sim

import (
	"strings"
	"sync"

	"main/internal/codec"
	"main/internal/model"
	"main/internal/model/enum"

	"github.com/bytedance/sonic"
)

type backtest struct {
	mu         sync.Mutex
	id         string
	cfg        model.LaunchConfig
	ticks      []model.Depth
	cursor     int
	account    model.Account
	resting    map[string]model.Order
	failCancel map[string]string
}

func newBacktest(id string, cfg model.LaunchConfig, ticks []model.Depth, failCancel map[string]string) *backtest {
	return &backtest{
		id:    id,
		cfg:   cfg,
		ticks: ticks,
		account: model.Account{
			BacktestID: id,
			Balance:    cfg.Balance,
		},
		resting:    make(map[string]model.Order),
		failCancel: failCancel,
	}
}

// handle dispatches one request frame.
func (bt *backtest) handle(request []byte) []byte {
	bt.mu.Lock()
	defer bt.mu.Unlock()

	cmd, ok := codec.CommandOf(request)
	if !ok {
		return marshalEnvelope(bt.id, "error", "Unknown command.")
	}
	arg := strings.TrimPrefix(string(request), cmd.Tag())

	switch cmd {
	case codec.CommandTick:
		return bt.onTick()
	case codec.CommandPostOrder:
		return bt.onPostOrder(arg)
	case codec.CommandCancelOrder:
		return bt.onCancelOrder(arg)
	case codec.CommandClosePosition:
		return bt.onClosePosition(arg)
	case codec.CommandGetAccountInfo:
		return bt.onAccountInfo()
	case codec.CommandClose:
		return marshalEnvelope(bt.id, "ok", "Server closed.")
	default:
		return marshalEnvelope(bt.id, "error", "Unknown command.")
	}
}

func (bt *backtest) onTick() []byte {
	if bt.cursor >= len(bt.ticks) {
		return marshalEnvelope(bt.id, "error", "No more data, backtest finished")
	}

	snapshot := model.TickSnapshot{
		Depth:   bt.ticks[bt.cursor],
		Account: bt.account,
	}
	bt.cursor++

	payload, err := sonic.ConfigFastest.Marshal(snapshot)
	if err != nil {
		return marshalEnvelope(bt.id, "error", err.Error())
	}
	return marshalEnvelope(bt.id, "ok", string(payload))
}

func (bt *backtest) onPostOrder(body string) []byte {
	var ord model.Order
	if err := sonic.ConfigFastest.Unmarshal([]byte(body), &ord); err != nil {
		return marshalEnvelope(bt.id, "error", "Error parsing order: "+err.Error())
	}
	if ord.CID == "" {
		return marshalEnvelope(bt.id, "error", "Error parsing order: empty cid")
	}
	if _, dup := bt.resting[ord.CID]; dup {
		return marshalEnvelope(bt.id, "error", "Duplicate cid: "+ord.CID)
	}

	if !ord.Side.IsAvailable() {
		return marshalEnvelope(bt.id, "error", "Error parsing order: invalid side")
	}

	value := ord.Price * ord.Amount
	if ord.Side == enum.OrderSideBuy && bt.account.Balance.Available < value {
		return marshalEnvelope(bt.id, "error", "Insufficient balance.")
	}
	if ord.Side == enum.OrderSideSell && bt.account.Position.AmountAvailable < ord.Amount {
		return marshalEnvelope(bt.id, "error", "Insufficient amount.")
	}

	bt.resting[ord.CID] = ord
	if ord.Side == enum.OrderSideBuy {
		bt.account.Balance.Available -= value
		bt.account.Balance.Freezed += value
	} else {
		bt.account.Position.AmountAvailable -= ord.Amount
		bt.account.Position.AmountFreezed += ord.Amount
	}
	return marshalEnvelope(bt.id, "ok", "cid: "+ord.CID+" order posted.")
}

func (bt *backtest) onCancelOrder(cid string) []byte {
	if msg, ok := bt.failCancel[cid]; ok {
		return marshalEnvelope(bt.id, "error", msg)
	}

	ord, ok := bt.resting[cid]
	if !ok {
		return marshalEnvelope(bt.id, "error", "Order not found")
	}
	delete(bt.resting, cid)

	value := ord.Price * ord.Amount
	if ord.Side == enum.OrderSideBuy {
		bt.account.Balance.Available += value
		bt.account.Balance.Freezed -= value
	} else {
		bt.account.Position.AmountAvailable += ord.Amount
		bt.account.Position.AmountFreezed -= ord.Amount
	}
	return marshalEnvelope(bt.id, "ok", "cid: "+cid+" order canceled.")
}

func (bt *backtest) onClosePosition(symbol string) []byte {
	if symbol != bt.cfg.Symbol {
		return marshalEnvelope(bt.id, "error", "Unknown symbol: "+symbol)
	}
	bt.account.Position = model.Position{}
	return marshalEnvelope(bt.id, "ok", "position closed.")
}

func (bt *backtest) onAccountInfo() []byte {
	payload, err := sonic.ConfigFastest.Marshal(bt.account)
	if err != nil {
		return marshalEnvelope(bt.id, "error", err.Error())
	}
	return marshalEnvelope(bt.id, "ok", string(payload))
}
