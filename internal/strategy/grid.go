package strategy

import (
	"fmt"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
)

// BuildGrid enumerates the full parameter cross-product for a variant and
// returns one freshly constructed strategy per combination. Crossover pairs
// with short >= long are not valid combinations and are skipped at
// enumeration, not treated as errors. Strategies carry per-run state, so the
// caller builds a separate grid for every data split.
func BuildGrid(variant dto.Variant, grids config.Grids) ([]Strategy, error) {
	switch variant {
	case dto.VariantCrossover:
		return buildCrossoverGrid(grids.Crossover)
	case dto.VariantRSIReversal:
		return buildRSIGrid(grids.RSI)
	case dto.VariantTrendFiltered:
		return buildTrendFilterGrid(grids.TrendFilter)
	default:
		return nil, fmt.Errorf("unknown strategy variant: %s", variant)
	}
}

// Variants lists every strategy family the sweep covers.
func Variants() []dto.Variant {
	return []dto.Variant{dto.VariantCrossover, dto.VariantRSIReversal, dto.VariantTrendFiltered}
}

func buildCrossoverGrid(g config.CrossoverGrid) ([]Strategy, error) {
	var out []Strategy
	for _, short := range g.ShortPeriods {
		for _, long := range g.LongPeriods {
			if short >= long {
				continue
			}
			s, err := NewCrossover(CrossoverParams{ShortPeriod: short, LongPeriod: long})
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func buildRSIGrid(g config.RSIGrid) ([]Strategy, error) {
	var out []Strategy
	for _, period := range g.Periods {
		for _, oversold := range g.Oversold {
			for _, overbought := range g.Overbought {
				s, err := NewRSIReversal(RSIReversalParams{
					Period:     period,
					Oversold:   oversold,
					Overbought: overbought,
				})
				if err != nil {
					return nil, err
				}
				out = append(out, s)
			}
		}
	}
	return out, nil
}

func buildTrendFilterGrid(g config.TrendFilterGrid) ([]Strategy, error) {
	var out []Strategy

	for _, period := range g.ATRPeriods {
		for _, threshold := range g.ATRThresholds {
			s, err := NewTrendFiltered(TrendFilteredParams{
				ShortPeriod:  g.ShortPeriod,
				LongPeriod:   g.LongPeriod,
				Mode:         FilterATR,
				ATRPeriod:    period,
				ATRThreshold: threshold,
			})
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}

	for _, period := range g.ADXPeriods {
		for _, threshold := range g.ADXThresholds {
			s, err := NewTrendFiltered(TrendFilteredParams{
				ShortPeriod:  g.ShortPeriod,
				LongPeriod:   g.LongPeriod,
				Mode:         FilterADX,
				ADXPeriod:    period,
				ADXThreshold: threshold,
			})
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
	}

	for _, factor := range g.HigherFactors {
		s, err := NewTrendFiltered(TrendFilteredParams{
			ShortPeriod:  g.ShortPeriod,
			LongPeriod:   g.LongPeriod,
			Mode:         FilterHigherTF,
			HigherFactor: factor,
			HigherShort:  g.HigherShort,
			HigherLong:   g.HigherLong,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, nil
}
