package dto

import (
	"time"

	"golang-backtest/internal/model"
)

// Trade records one executed order. The log is append-only; entries are never
// mutated after being recorded.
type Trade struct {
	Time       time.Time   `json:"time"`
	Action     TradeAction `json:"action"`
	Price      float64     `json:"price"`
	Quantity   float64     `json:"quantity"`
	Fee        float64     `json:"fee"`
	CashAfter  float64     `json:"cash_after"`
	AssetAfter float64     `json:"asset_after"`
	Reason     TradeReason `json:"reason"`
}

// Metrics are derived from a completed trade log and equity curve.
type Metrics struct {
	ReturnPct      float64 `json:"return_pct"`
	WinRate        float64 `json:"win_rate"`
	TradeCount     int     `json:"trade_count"` // completed round trips
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	ProfitFactor   float64 `json:"profit_factor"`
	StopLossCount  int     `json:"stop_loss_count"`
	FinalCapital   float64 `json:"final_capital"`
	UnrealizedPnL  float64 `json:"unrealized_pnl"`
}

// SimulationResult is the outcome of one simulation run: the parameter
// combination, its full trade log, the final capital state and the derived
// metrics. An open position left at the last bar is reported as-is, never
// force-liquidated.
type SimulationResult struct {
	Variant      Variant         `json:"variant"`
	Label        string          `json:"label"`
	Split        Split           `json:"split,omitempty"`
	Trades       []Trade         `json:"trades"`
	SkippedBuys  int             `json:"skipped_buys"`
	FinalCash    float64         `json:"final_cash"`
	OpenPosition *model.Position `json:"open_position,omitempty"`
	Metrics      Metrics         `json:"metrics"`
}

// RankedReport is the best-first, top-N truncated result list for one
// (variant, split) pair.
type RankedReport struct {
	Variant Variant             `json:"variant"`
	Split   Split               `json:"split"`
	Results []*SimulationResult `json:"results"`
}

// ComparisonRow summarizes one variant's best test-split combination against
// its train-split performance.
type ComparisonRow struct {
	Variant        Variant `json:"variant"`
	Label          string  `json:"label"`
	TrainReturnPct float64 `json:"train_return_pct"`
	TestReturnPct  float64 `json:"test_return_pct"`
	ReturnGapPct   float64 `json:"return_gap_pct"`
	Overfit        bool    `json:"overfit"`
	TestWinRate    float64 `json:"test_win_rate"`
	TestTrades     int     `json:"test_trades"`
	TestDrawdown   float64 `json:"test_drawdown"`
}

// SweepReport is the full output of a parameter sweep: per-variant per-split
// rankings plus the cross-strategy comparison.
type SweepReport struct {
	TrainStart time.Time       `json:"train_start"`
	TrainEnd   time.Time       `json:"train_end"`
	TestStart  time.Time       `json:"test_start"`
	TestEnd    time.Time       `json:"test_end"`
	Reports    []RankedReport  `json:"reports"`
	Comparison []ComparisonRow `json:"comparison"`
}

// SweepRequest is the HTTP request for a full parameter sweep.
type SweepRequest struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Days     int    `json:"days" validate:"omitempty,gt=0"`
}

// RunRequest is the HTTP request for a single simulation run.
type RunRequest struct {
	Variant  string `json:"variant" validate:"required,oneof=crossover_ma rsi_reversal trend_filtered_crossover"`
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Days     int    `json:"days" validate:"omitempty,gt=0"`

	ShortPeriod int `json:"short_period"`
	LongPeriod  int `json:"long_period"`

	RSIPeriod  int     `json:"rsi_period"`
	Oversold   float64 `json:"oversold"`
	Overbought float64 `json:"overbought"`

	FilterMode   string  `json:"filter_mode"`
	ATRPeriod    int     `json:"atr_period"`
	ATRThreshold float64 `json:"atr_threshold"`
	ADXPeriod    int     `json:"adx_period"`
	ADXThreshold float64 `json:"adx_threshold"`
	HigherFactor int     `json:"higher_factor"`
	HigherShort  int     `json:"higher_short"`
	HigherLong   int     `json:"higher_long"`
}
