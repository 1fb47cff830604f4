package service

import (
	"sort"

	"golang-backtest/internal/dto"
)

// LosslessProfitFactor stands in for the unbounded profit factor of a run
// that closed winning trades and no losing ones.
const LosslessProfitFactor = 9999.0

// computeMetrics derives performance metrics from a completed run. The
// headline return marks any open position to the last close (no exit fee,
// since no exit happened); the unrealized part is also reported on its own so
// realized-only performance stays recoverable.
func computeMetrics(initialCapital float64, book *ledger, equity []float64, lastClose float64) dto.Metrics {
	m := dto.Metrics{
		StopLossCount: book.stopLossCount,
		FinalCapital:  book.equity(lastClose),
	}
	m.ReturnPct = (m.FinalCapital - initialCapital) / initialCapital * 100

	if book.holding {
		m.UnrealizedPnL = book.position.Quantity * (lastClose - book.position.EntryPrice)
	}

	// Round trips: each sell closes the immediately preceding buy. P&L nets
	// the sell fee against the position's entry cost.
	var entryPrice float64
	var wins int
	var totalProfit, totalLoss float64
	for _, t := range book.trades {
		if t.Action == dto.ActionBuy {
			entryPrice = t.Price
			continue
		}
		pnl := (t.Price*t.Quantity - t.Fee) - t.Quantity*entryPrice
		m.TradeCount++
		if pnl > 0 {
			wins++
			totalProfit += pnl
		} else {
			totalLoss += -pnl
		}
	}

	if m.TradeCount > 0 {
		m.WinRate = float64(wins) / float64(m.TradeCount) * 100
	}
	switch {
	case totalLoss > 0:
		m.ProfitFactor = totalProfit / totalLoss
	case totalProfit > 0:
		// An infinite ratio would not survive JSON encoding.
		m.ProfitFactor = LosslessProfitFactor
	}

	m.MaxDrawdownPct = maxDrawdown(equity)
	return m
}

// maxDrawdown returns the largest peak-to-trough decline of the equity curve
// as a positive percentage.
func maxDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}
	peak := equity[0]
	var maxDD float64
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// RankResults orders results best-first by return percentage, breaking ties
// in favor of fewer completed trades, and truncates to topN.
func RankResults(results []*dto.SimulationResult, topN int) []*dto.SimulationResult {
	ranked := make([]*dto.SimulationResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Metrics.ReturnPct != ranked[j].Metrics.ReturnPct {
			return ranked[i].Metrics.ReturnPct > ranked[j].Metrics.ReturnPct
		}
		return ranked[i].Metrics.TradeCount < ranked[j].Metrics.TradeCount
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
