package service

import (
	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
)

// ledger is the capital book and position state machine of one simulation
// run. It has exactly two states: flat (holding == false, position zeroed)
// and holding one open lot. Every transition appends an immutable trade to
// the log. The risk check (stopLossHit) takes precedence over strategy
// signals; buys while holding and sells while flat are rejected by
// construction.
type ledger struct {
	cash     float64
	position model.Position
	holding  bool

	trades        []dto.Trade
	stopLossCount int
	skippedBuys   int
}

func newLedger(initialCapital float64) *ledger {
	return &ledger{cash: initialCapital}
}

// stopLossHit reports whether the current price has fallen to or below the
// stop-loss line. The boundary is inclusive: a close at exactly
// entry*(1-stopLossPct) triggers.
func (l *ledger) stopLossHit(price, stopLossPct float64) bool {
	return l.holding && price <= l.position.EntryPrice*(1-stopLossPct)
}

// buy opens a position sized as a fraction of current cash, fee deducted
// from the acquired quantity. An unfundable or sub-minimum buy is a no-op,
// counted as a skipped opportunity, never an error.
func (l *ledger) buy(bar model.Bar, sim config.Simulation) (dto.Trade, bool) {
	if l.holding || bar.Close <= 0 {
		return dto.Trade{}, false
	}

	spend := l.cash * sim.PositionSizePct
	if spend <= 0 || spend > l.cash {
		l.skippedBuys++
		return dto.Trade{}, false
	}
	quantity := spend / bar.Close * (1 - sim.FeeRate)
	if quantity < sim.MinTradeUnit {
		l.skippedBuys++
		return dto.Trade{}, false
	}

	l.cash -= spend
	l.position = model.Position{
		EntryPrice: bar.Close,
		Quantity:   quantity,
		EntryTime:  bar.Time,
	}
	l.holding = true

	trade := dto.Trade{
		Time:       bar.Time,
		Action:     dto.ActionBuy,
		Price:      bar.Close,
		Quantity:   quantity,
		Fee:        spend * sim.FeeRate,
		CashAfter:  l.cash,
		AssetAfter: quantity,
		Reason:     dto.ReasonSignal,
	}
	l.trades = append(l.trades, trade)
	return trade, true
}

// sell liquidates the full open quantity at the bar's close. Callers must
// hold a position.
func (l *ledger) sell(bar model.Bar, sim config.Simulation, reason dto.TradeReason) dto.Trade {
	fee := l.position.Quantity * bar.Close * sim.FeeRate
	proceeds := l.position.Quantity*bar.Close - fee
	l.cash += proceeds

	trade := dto.Trade{
		Time:       bar.Time,
		Action:     dto.ActionSell,
		Price:      bar.Close,
		Quantity:   l.position.Quantity,
		Fee:        fee,
		CashAfter:  l.cash,
		AssetAfter: 0,
		Reason:     reason,
	}
	l.trades = append(l.trades, trade)

	if reason == dto.ReasonStopLoss {
		l.stopLossCount++
	}
	l.position = model.Position{}
	l.holding = false
	return trade
}

// equity values the book at the given price: cash plus the open quantity
// marked to market.
func (l *ledger) equity(price float64) float64 {
	if l.holding {
		return l.cash + l.position.Quantity*price
	}
	return l.cash
}

// openPosition returns a copy of the open lot, if any.
func (l *ledger) openPosition() *model.Position {
	if !l.holding {
		return nil
	}
	pos := l.position
	return &pos
}
