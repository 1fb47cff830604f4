package service

import (
	"context"
	"fmt"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/indicator"
	"golang-backtest/internal/model"
	"golang-backtest/internal/strategy"
	"golang-backtest/pkg/logger"
)

// SimulatorService runs one strategy over one bar range against a simulated
// capital ledger.
type SimulatorService interface {
	Run(ctx context.Context, bars []model.Bar, strat strategy.Strategy, sim config.Simulation) (*dto.SimulationResult, error)
}

type simulatorService struct {
	log      *logger.Logger
	indCache *indicator.Cache
}

// NewSimulatorService creates a new instance of simulatorService.
func NewSimulatorService(log *logger.Logger, indCache *indicator.Cache) SimulatorService {
	return &simulatorService{
		log:      log,
		indCache: indCache,
	}
}

// Run processes bars strictly in order. On every bar while holding, the
// stop-loss check runs first and, when it fires, the strategy's signal for
// that bar is discarded. While flat only a BUY can act. A position still open
// after the last bar is reported as-is, not force-liquidated. The run is a
// pure function of its inputs: no randomness, no wall clock.
func (s *simulatorService) Run(ctx context.Context, bars []model.Bar, strat strategy.Strategy, sim config.Simulation) (*dto.SimulationResult, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("simulation requires at least one bar")
	}

	if err := strat.Prepare(bars, s.indCache); err != nil {
		return nil, fmt.Errorf("prepare strategy %s: %w", strat.Label(), err)
	}

	book := newLedger(sim.InitialCapital)
	equity := make([]float64, 0, len(bars))

	for i, bar := range bars {
		if book.holding {
			if book.stopLossHit(bar.Close, sim.StopLossPct) {
				trade := book.sell(bar, sim, dto.ReasonStopLoss)
				s.log.DebugContext(ctx, "Stop loss executed",
					logger.StringField("strategy", strat.Label()),
					logger.FloatField("price", trade.Price),
					logger.FloatField("cash", trade.CashAfter))
			} else if sig := strat.Signal(i); sig == dto.SignalSell {
				book.sell(bar, sim, dto.ReasonSignal)
			}
			// BUY while holding is ignored: no pyramiding.
		} else {
			if sig := strat.Signal(i); sig == dto.SignalBuy {
				if _, ok := book.buy(bar, sim); !ok {
					s.log.DebugContext(ctx, "Buy signal skipped, below minimum trade unit",
						logger.StringField("strategy", strat.Label()),
						logger.FloatField("cash", book.cash),
						logger.FloatField("price", bar.Close))
				}
			}
			// SELL while flat is ignored: nothing to liquidate.
		}

		equity = append(equity, book.equity(bar.Close))
	}

	lastClose := bars[len(bars)-1].Close
	result := &dto.SimulationResult{
		Variant:      strat.Name(),
		Label:        strat.Label(),
		Trades:       book.trades,
		SkippedBuys:  book.skippedBuys,
		FinalCash:    book.cash,
		OpenPosition: book.openPosition(),
		Metrics:      computeMetrics(sim.InitialCapital, book, equity, lastClose),
	}
	return result, nil
}
