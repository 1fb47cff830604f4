package strategy

import (
	"fmt"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/indicator"
	"golang-backtest/internal/model"
)

// FilterMode selects the trend-confirmation predicate gating crossover buys.
type FilterMode string

const (
	FilterATR      FilterMode = "atr"
	FilterADX      FilterMode = "adx"
	FilterHigherTF FilterMode = "higher_tf"
)

// atrAvgPeriod is the window for the ATR's own rolling average, against which
// the threshold multiplier is applied.
const atrAvgPeriod = 20

// TrendFilteredParams configures the trend-filtered crossover variant. Only
// the fields of the selected mode are consulted.
type TrendFilteredParams struct {
	ShortPeriod int        `json:"short_period" validate:"required,gt=0"`
	LongPeriod  int        `json:"long_period" validate:"required,gt=0,gtfield=ShortPeriod"`
	Mode        FilterMode `json:"mode" validate:"required,oneof=atr adx higher_tf"`

	ATRPeriod    int     `json:"atr_period" validate:"required_if=Mode atr,omitempty,gt=0"`
	ATRThreshold float64 `json:"atr_threshold" validate:"required_if=Mode atr,omitempty,gt=0"`

	ADXPeriod    int     `json:"adx_period" validate:"required_if=Mode adx,omitempty,gt=0"`
	ADXThreshold float64 `json:"adx_threshold" validate:"required_if=Mode adx,omitempty,gt=0"`

	HigherFactor int `json:"higher_factor" validate:"required_if=Mode higher_tf,omitempty,gt=1"`
	HigherShort  int `json:"higher_short" validate:"required_if=Mode higher_tf,omitempty,gt=0"`
	HigherLong   int `json:"higher_long" validate:"required_if=Mode higher_tf,omitempty,gt=0,gtfield=HigherShort"`
}

// TrendFiltered gates crossover buys behind a trend-confirmation predicate.
// Sell signals pass through ungated: exits are never filtered. Undefined
// filter inputs count as "trend not confirmed".
type TrendFiltered struct {
	params TrendFilteredParams
	base   *Crossover

	atr    indicator.Series
	atrAvg indicator.Series
	adx    indicator.Series

	higherShort indicator.Series
	higherLong  indicator.Series
}

// NewTrendFiltered validates the parameters and returns the strategy.
func NewTrendFiltered(p TrendFilteredParams) (*TrendFiltered, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid trend filter params: %w", err)
	}
	base, err := NewCrossover(CrossoverParams{ShortPeriod: p.ShortPeriod, LongPeriod: p.LongPeriod})
	if err != nil {
		return nil, err
	}
	return &TrendFiltered{params: p, base: base}, nil
}

func (s *TrendFiltered) Name() dto.Variant {
	return dto.VariantTrendFiltered
}

func (s *TrendFiltered) Label() string {
	switch s.params.Mode {
	case FilterATR:
		return fmt.Sprintf("MA(%d/%d)+ATR(%d, %.1f)", s.params.ShortPeriod, s.params.LongPeriod, s.params.ATRPeriod, s.params.ATRThreshold)
	case FilterADX:
		return fmt.Sprintf("MA(%d/%d)+ADX(%d, %.0f)", s.params.ShortPeriod, s.params.LongPeriod, s.params.ADXPeriod, s.params.ADXThreshold)
	default:
		return fmt.Sprintf("MA(%d/%d)+HTF(x%d, %d/%d)", s.params.ShortPeriod, s.params.LongPeriod, s.params.HigherFactor, s.params.HigherShort, s.params.HigherLong)
	}
}

func (s *TrendFiltered) Prepare(bars []model.Bar, ind *indicator.Cache) error {
	if err := s.base.Prepare(bars, ind); err != nil {
		return err
	}

	switch s.params.Mode {
	case FilterATR:
		s.atr = ind.ATR(bars, s.params.ATRPeriod)
		s.atrAvg = indicator.SMAOf(s.atr, atrAvgPeriod)
	case FilterADX:
		s.adx = ind.ADX(bars, s.params.ADXPeriod)
	case FilterHigherTF:
		higher := model.Resample(bars, s.params.HigherFactor)
		s.higherShort = ind.SMA(higher, s.params.HigherShort)
		s.higherLong = ind.SMA(higher, s.params.HigherLong)
	}
	return nil
}

func (s *TrendFiltered) Signal(i int) dto.Signal {
	sig := s.base.Signal(i)
	if sig != dto.SignalBuy {
		return sig
	}
	if s.confirmed(i) {
		return dto.SignalBuy
	}
	return dto.SignalHold
}

func (s *TrendFiltered) confirmed(i int) bool {
	switch s.params.Mode {
	case FilterATR:
		atr, ok1 := s.atr.At(i)
		avg, ok2 := s.atrAvg.At(i)
		return ok1 && ok2 && atr > avg*s.params.ATRThreshold
	case FilterADX:
		adx, ok := s.adx.At(i)
		return ok && adx > s.params.ADXThreshold
	case FilterHigherTF:
		// Only completed higher-timeframe buckets may be consulted, so bar
		// i reads the last bucket whose final source bar is at or before i.
		j := (i+1)/s.params.HigherFactor - 1
		hs, ok1 := s.higherShort.At(j)
		hl, ok2 := s.higherLong.At(j)
		return ok1 && ok2 && hs > hl
	}
	return false
}
