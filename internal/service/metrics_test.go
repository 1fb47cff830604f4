package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"golang-backtest/internal/dto"
)

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		equity []float64
		want   float64
	}{
		{
			name:   "peak to trough",
			equity: []float64{100, 120, 90, 100, 80},
			want:   100.0 / 3, // 120 down to 80
		},
		{
			name:   "monotonically rising",
			equity: []float64{100, 110, 120},
			want:   0,
		},
		{
			name:   "flat",
			equity: []float64{100, 100, 100},
			want:   0,
		},
		{
			name:   "recovers fully",
			equity: []float64{100, 80, 120},
			want:   20,
		},
		{
			name:   "empty",
			equity: nil,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, maxDrawdown(tt.equity), 1e-9)
		})
	}
}

func rankedInput() []*dto.SimulationResult {
	return []*dto.SimulationResult{
		{Label: "A", Metrics: dto.Metrics{ReturnPct: 5, TradeCount: 10}},
		{Label: "B", Metrics: dto.Metrics{ReturnPct: 5, TradeCount: 4}},
		{Label: "C", Metrics: dto.Metrics{ReturnPct: 3, TradeCount: 1}},
	}
}

func TestRankResults(t *testing.T) {
	ranked := RankResults(rankedInput(), 2)

	assert.Len(t, ranked, 2)
	// Equal returns break the tie in favor of fewer trades.
	assert.Equal(t, "B", ranked[0].Label)
	assert.Equal(t, "A", ranked[1].Label)
}

func TestRankResultsNoTruncationWhenTopNCoversAll(t *testing.T) {
	ranked := RankResults(rankedInput(), 5)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "C", ranked[2].Label)
}

func TestRankResultsDoesNotMutateInput(t *testing.T) {
	input := rankedInput()
	RankResults(input, 1)

	assert.Equal(t, "A", input[0].Label)
	assert.Equal(t, "B", input[1].Label)
	assert.Equal(t, "C", input[2].Label)
}
