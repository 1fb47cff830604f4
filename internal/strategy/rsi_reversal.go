package strategy

import (
	"fmt"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/indicator"
	"golang-backtest/internal/model"
)

// RSIReversalParams configures the RSI contrarian variant.
type RSIReversalParams struct {
	Period     int     `json:"period" validate:"required,gt=0"`
	Oversold   float64 `json:"oversold" validate:"required,gt=0,lt=100"`
	Overbought float64 `json:"overbought" validate:"required,gt=0,lt=100,gtfield=Oversold"`
}

// RSIReversal buys oversold and sells overbought. Bars where RSI is still
// undefined produce HOLD.
type RSIReversal struct {
	params RSIReversalParams
	rsi    indicator.Series
}

// NewRSIReversal validates the parameters and returns the strategy.
func NewRSIReversal(p RSIReversalParams) (*RSIReversal, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid rsi reversal params: %w", err)
	}
	return &RSIReversal{params: p}, nil
}

func (s *RSIReversal) Name() dto.Variant {
	return dto.VariantRSIReversal
}

func (s *RSIReversal) Label() string {
	return fmt.Sprintf("RSI(%d, %.0f/%.0f)", s.params.Period, s.params.Oversold, s.params.Overbought)
}

func (s *RSIReversal) Prepare(bars []model.Bar, ind *indicator.Cache) error {
	s.rsi = ind.RSI(bars, s.params.Period)
	return nil
}

func (s *RSIReversal) Signal(i int) dto.Signal {
	rsi, ok := s.rsi.At(i)
	if !ok {
		return dto.SignalHold
	}
	if rsi < s.params.Oversold {
		return dto.SignalBuy
	}
	if rsi > s.params.Overbought {
		return dto.SignalSell
	}
	return dto.SignalHold
}
