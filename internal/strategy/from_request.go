package strategy

import (
	"fmt"

	"golang-backtest/internal/dto"
)

// FromRunRequest builds a single strategy from an API request. Parameter
// validation happens in the variant constructors.
func FromRunRequest(req dto.RunRequest) (Strategy, error) {
	switch dto.Variant(req.Variant) {
	case dto.VariantCrossover:
		return NewCrossover(CrossoverParams{
			ShortPeriod: req.ShortPeriod,
			LongPeriod:  req.LongPeriod,
		})
	case dto.VariantRSIReversal:
		return NewRSIReversal(RSIReversalParams{
			Period:     req.RSIPeriod,
			Oversold:   req.Oversold,
			Overbought: req.Overbought,
		})
	case dto.VariantTrendFiltered:
		return NewTrendFiltered(TrendFilteredParams{
			ShortPeriod:  req.ShortPeriod,
			LongPeriod:   req.LongPeriod,
			Mode:         FilterMode(req.FilterMode),
			ATRPeriod:    req.ATRPeriod,
			ATRThreshold: req.ATRThreshold,
			ADXPeriod:    req.ADXPeriod,
			ADXThreshold: req.ADXThreshold,
			HigherFactor: req.HigherFactor,
			HigherShort:  req.HigherShort,
			HigherLong:   req.HigherLong,
		})
	default:
		return nil, fmt.Errorf("unknown strategy variant: %s", req.Variant)
	}
}
