package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
)

func barsFromCloses(closes []float64) []model.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{
			Time:  base.Add(time.Duration(i) * time.Hour),
			Open:  c,
			High:  c + 1,
			Low:   c - 1,
			Close: c,
		}
	}
	return bars
}

func TestNewCrossoverValidation(t *testing.T) {
	tests := []struct {
		name    string
		params  CrossoverParams
		wantErr bool
	}{
		{name: "valid", params: CrossoverParams{ShortPeriod: 10, LongPeriod: 20}},
		{name: "short equals long", params: CrossoverParams{ShortPeriod: 20, LongPeriod: 20}, wantErr: true},
		{name: "short above long", params: CrossoverParams{ShortPeriod: 30, LongPeriod: 20}, wantErr: true},
		{name: "zero short", params: CrossoverParams{ShortPeriod: 0, LongPeriod: 20}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCrossover(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCrossoverSignals(t *testing.T) {
	// SMA(2) crosses SMA(4) upward between index 6 and 7 and downward between
	// index 4 and 5.
	closes := []float64{100, 102, 101, 105, 103, 98, 107, 110}
	bars := barsFromCloses(closes)

	s, err := NewCrossover(CrossoverParams{ShortPeriod: 2, LongPeriod: 4})
	assert.NoError(t, err)
	assert.NoError(t, s.Prepare(bars, nil))

	assert.Equal(t, "MA(2/4)", s.Label())
	assert.Equal(t, dto.VariantCrossover, s.Name())

	got := make([]dto.Signal, len(bars))
	for i := range bars {
		got[i] = s.Signal(i)
	}
	want := []dto.Signal{
		dto.SignalHold, dto.SignalHold, dto.SignalHold, dto.SignalHold,
		dto.SignalHold, dto.SignalSell, dto.SignalHold, dto.SignalBuy,
	}
	assert.Equal(t, want, got)
}

func TestCrossoverEqualityIsNotACross(t *testing.T) {
	// The short average touches the long average exactly and then retreats.
	// Neither bar produces a signal: touching is not crossing.
	s := &Crossover{params: CrossoverParams{ShortPeriod: 2, LongPeriod: 4}}
	bars := barsFromCloses([]float64{100, 100, 100, 100, 100, 100})
	assert.NoError(t, s.Prepare(bars, nil))

	for i := range bars {
		assert.Equal(t, dto.SignalHold, s.Signal(i), "index %d", i)
	}
}

func TestCrossoverEqualPrevThenAboveIsGolden(t *testing.T) {
	// prev bar equal, current bar strictly above counts as a golden cross.
	closes := []float64{100, 100, 100, 100, 100, 108}
	bars := barsFromCloses(closes)

	s, err := NewCrossover(CrossoverParams{ShortPeriod: 2, LongPeriod: 4})
	assert.NoError(t, err)
	assert.NoError(t, s.Prepare(bars, nil))

	// At index 5: SMA2 = 104 > SMA4 = 102, prev both 100.
	assert.Equal(t, dto.SignalBuy, s.Signal(5))
}

func TestRSIReversalSignals(t *testing.T) {
	s, err := NewRSIReversal(RSIReversalParams{Period: 2, Oversold: 30, Overbought: 70})
	assert.NoError(t, err)

	// Steady fall pins RSI at 0, steady rise at 100.
	bars := barsFromCloses([]float64{100, 98, 96, 94, 96, 98, 100, 102})
	assert.NoError(t, s.Prepare(bars, nil))

	assert.Equal(t, dto.SignalHold, s.Signal(0), "undefined RSI holds")
	assert.Equal(t, dto.SignalHold, s.Signal(1), "undefined RSI holds")
	assert.Equal(t, dto.SignalBuy, s.Signal(2))
	assert.Equal(t, dto.SignalBuy, s.Signal(3))
	assert.Equal(t, dto.SignalSell, s.Signal(6))
	assert.Equal(t, dto.SignalSell, s.Signal(7))
}

func TestNewRSIReversalValidation(t *testing.T) {
	_, err := NewRSIReversal(RSIReversalParams{Period: 14, Oversold: 70, Overbought: 30})
	assert.Error(t, err, "overbought must exceed oversold")

	_, err = NewRSIReversal(RSIReversalParams{Period: 14, Oversold: 30, Overbought: 30})
	assert.Error(t, err)
}

func TestNewTrendFilteredValidation(t *testing.T) {
	tests := []struct {
		name    string
		params  TrendFilteredParams
		wantErr bool
	}{
		{
			name:   "valid atr",
			params: TrendFilteredParams{ShortPeriod: 10, LongPeriod: 20, Mode: FilterATR, ATRPeriod: 14, ATRThreshold: 1.2},
		},
		{
			name:    "atr mode missing threshold",
			params:  TrendFilteredParams{ShortPeriod: 10, LongPeriod: 20, Mode: FilterATR, ATRPeriod: 14},
			wantErr: true,
		},
		{
			name:   "valid adx",
			params: TrendFilteredParams{ShortPeriod: 10, LongPeriod: 20, Mode: FilterADX, ADXPeriod: 14, ADXThreshold: 25},
		},
		{
			name:   "valid higher timeframe",
			params: TrendFilteredParams{ShortPeriod: 10, LongPeriod: 20, Mode: FilterHigherTF, HigherFactor: 4, HigherShort: 10, HigherLong: 20},
		},
		{
			name:    "higher timeframe factor of one",
			params:  TrendFilteredParams{ShortPeriod: 10, LongPeriod: 20, Mode: FilterHigherTF, HigherFactor: 1, HigherShort: 10, HigherLong: 20},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			params:  TrendFilteredParams{ShortPeriod: 10, LongPeriod: 20, Mode: "vibes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrendFiltered(tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTrendFilteredGatesOnlyBuys(t *testing.T) {
	// ADX threshold of 101 can never be confirmed, so every buy collapses to
	// HOLD while sells pass through untouched.
	closes := []float64{100, 102, 101, 105, 103, 98, 107, 110}
	bars := barsFromCloses(closes)

	s, err := NewTrendFiltered(TrendFilteredParams{
		ShortPeriod: 2, LongPeriod: 4,
		Mode: FilterADX, ADXPeriod: 2, ADXThreshold: 101,
	})
	assert.NoError(t, err)
	assert.NoError(t, s.Prepare(bars, nil))

	assert.Equal(t, dto.SignalSell, s.Signal(5), "sells are never filtered")
	assert.Equal(t, dto.SignalHold, s.Signal(7), "unconfirmed buy becomes hold")
}

func TestTrendFilteredPassesConfirmedBuys(t *testing.T) {
	closes := []float64{100, 102, 101, 105, 103, 98, 107, 110}
	bars := barsFromCloses(closes)

	// Threshold 0.1 is well below any realized ADX in this range, so the buy
	// at index 7 survives.
	s, err := NewTrendFiltered(TrendFilteredParams{
		ShortPeriod: 2, LongPeriod: 4,
		Mode: FilterADX, ADXPeriod: 2, ADXThreshold: 0.1,
	})
	assert.NoError(t, err)
	assert.NoError(t, s.Prepare(bars, nil))

	assert.Equal(t, dto.SignalBuy, s.Signal(7))
}

func TestTrendFilteredHigherTimeframeUsesCompletedBuckets(t *testing.T) {
	// 16 rising closes, factor 4: bars 0..3 form higher bucket 0, bars 4..7
	// bucket 1, and so on. Bar i may only read buckets whose last source bar
	// is at or before i.
	closes := make([]float64, 16)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := barsFromCloses(closes)

	s, err := NewTrendFiltered(TrendFilteredParams{
		ShortPeriod: 2, LongPeriod: 4,
		Mode: FilterHigherTF, HigherFactor: 4, HigherShort: 2, HigherLong: 3,
	})
	assert.NoError(t, err)
	assert.NoError(t, s.Prepare(bars, nil))

	// Bucket SMA(3) needs three completed buckets, first available after bar
	// 11. Before that no buy can be confirmed.
	for i := 0; i < 11; i++ {
		assert.False(t, s.confirmed(i), "bar %d must not see incomplete buckets", i)
	}
	assert.True(t, s.confirmed(11), "bar 11 closes the third bucket")
	assert.True(t, s.confirmed(15))
}

func TestBuildGridCounts(t *testing.T) {
	grids := config.Grids{
		Crossover: config.CrossoverGrid{
			ShortPeriods: []int{5, 10, 20},
			LongPeriods:  []int{20, 30},
		},
		RSI: config.RSIGrid{
			Periods:    []int{7, 14},
			Oversold:   []float64{25, 30},
			Overbought: []float64{70, 75},
		},
		TrendFilter: config.TrendFilterGrid{
			ShortPeriod:   20,
			LongPeriod:    50,
			ATRPeriods:    []int{14, 20},
			ATRThresholds: []float64{1.0, 1.5},
			ADXPeriods:    []int{14},
			ADXThresholds: []float64{20, 25},
			HigherFactors: []int{4, 24},
			HigherShort:   10,
			HigherLong:    20,
		},
	}

	crossover, err := BuildGrid(dto.VariantCrossover, grids)
	assert.NoError(t, err)
	// (5,20) (5,30) (10,20) (10,30) (20,30); (20,20) is skipped.
	assert.Len(t, crossover, 5)

	rsi, err := BuildGrid(dto.VariantRSIReversal, grids)
	assert.NoError(t, err)
	assert.Len(t, rsi, 8)

	trend, err := BuildGrid(dto.VariantTrendFiltered, grids)
	assert.NoError(t, err)
	// 4 ATR + 2 ADX + 2 higher-timeframe combinations.
	assert.Len(t, trend, 8)

	_, err = BuildGrid(dto.Variant("unknown"), grids)
	assert.Error(t, err)
}

func TestBuildGridLabelsAreUnique(t *testing.T) {
	grids := config.Grids{
		Crossover: config.CrossoverGrid{
			ShortPeriods: []int{5, 10},
			LongPeriods:  []int{20, 30},
		},
	}
	grid, err := BuildGrid(dto.VariantCrossover, grids)
	assert.NoError(t, err)

	seen := make(map[string]bool)
	for _, s := range grid {
		assert.False(t, seen[s.Label()], "duplicate label %s", s.Label())
		seen[s.Label()] = true
	}
}

func TestFromRunRequest(t *testing.T) {
	tests := []struct {
		name     string
		req      dto.RunRequest
		want     string
		wantErr  bool
		wantName dto.Variant
	}{
		{
			name:     "crossover",
			req:      dto.RunRequest{Variant: string(dto.VariantCrossover), ShortPeriod: 10, LongPeriod: 20},
			want:     "MA(10/20)",
			wantName: dto.VariantCrossover,
		},
		{
			name:     "rsi",
			req:      dto.RunRequest{Variant: string(dto.VariantRSIReversal), RSIPeriod: 14, Oversold: 30, Overbought: 70},
			want:     "RSI(14, 30/70)",
			wantName: dto.VariantRSIReversal,
		},
		{
			name: "trend filtered atr",
			req: dto.RunRequest{
				Variant: string(dto.VariantTrendFiltered), ShortPeriod: 20, LongPeriod: 50,
				FilterMode: string(FilterATR), ATRPeriod: 14, ATRThreshold: 1.2,
			},
			want:     "MA(20/50)+ATR(14, 1.2)",
			wantName: dto.VariantTrendFiltered,
		},
		{
			name:    "unknown variant",
			req:     dto.RunRequest{Variant: "martingale"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromRunRequest(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, s.Label())
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}
