package strategy

import (
	"fmt"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/indicator"
	"golang-backtest/internal/model"
)

// CrossoverParams configures the moving-average crossover variant.
type CrossoverParams struct {
	ShortPeriod int `json:"short_period" validate:"required,gt=0"`
	LongPeriod  int `json:"long_period" validate:"required,gt=0,gtfield=ShortPeriod"`
}

// Crossover buys on a golden cross of the short SMA over the long SMA and
// sells on the dead cross. Equality at a bar counts as "not yet crossed"; the
// cross is only recognized once the relation strictly reverses against the
// prior bar.
type Crossover struct {
	params CrossoverParams
	short  indicator.Series
	long   indicator.Series
}

// NewCrossover validates the parameters and returns the strategy.
func NewCrossover(p CrossoverParams) (*Crossover, error) {
	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("invalid crossover params: %w", err)
	}
	return &Crossover{params: p}, nil
}

func (s *Crossover) Name() dto.Variant {
	return dto.VariantCrossover
}

func (s *Crossover) Label() string {
	return fmt.Sprintf("MA(%d/%d)", s.params.ShortPeriod, s.params.LongPeriod)
}

func (s *Crossover) Prepare(bars []model.Bar, ind *indicator.Cache) error {
	s.short = ind.SMA(bars, s.params.ShortPeriod)
	s.long = ind.SMA(bars, s.params.LongPeriod)
	return nil
}

func (s *Crossover) Signal(i int) dto.Signal {
	if i < 1 {
		return dto.SignalHold
	}
	prevShort, ok1 := s.short.At(i - 1)
	prevLong, ok2 := s.long.At(i - 1)
	curShort, ok3 := s.short.At(i)
	curLong, ok4 := s.long.At(i)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return dto.SignalHold
	}

	if prevShort <= prevLong && curShort > curLong {
		return dto.SignalBuy
	}
	if prevShort >= prevLong && curShort < curLong {
		return dto.SignalSell
	}
	return dto.SignalHold
}
