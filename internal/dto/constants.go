package dto

// Signal is the decision a strategy emits for a single bar.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// TradeAction is the side of an executed trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// TradeReason records what caused a trade: the strategy's own signal or the
// risk check overriding it.
type TradeReason string

const (
	ReasonSignal   TradeReason = "signal"
	ReasonStopLoss TradeReason = "stop_loss"
)

// Variant identifies a strategy family.
type Variant string

const (
	VariantCrossover     Variant = "crossover_ma"
	VariantRSIReversal   Variant = "rsi_reversal"
	VariantTrendFiltered Variant = "trend_filtered_crossover"
)

// Split names one side of the walk-forward partition.
type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)
