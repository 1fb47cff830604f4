package model

import "time"

// Bar is one OHLCV observation for a fixed interval. Bars are immutable once
// produced; the engine only ever reads a chronologically ordered slice of
// them.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Closes extracts the close series.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high series.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low series.
func Lows(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// SplitAt partitions bars at the cutoff timestamp: bars strictly before the
// cutoff form the train range, the rest the test range. Both sub-slices keep
// chronological order.
func SplitAt(bars []Bar, cutoff time.Time) (train, test []Bar) {
	for i, b := range bars {
		if !b.Time.Before(cutoff) {
			return bars[:i], bars[i:]
		}
	}
	return bars, nil
}

// Resample aggregates consecutive groups of factor bars into one
// higher-timeframe bar (open of the first, high/low extremes, close and
// timestamp of the last). A trailing incomplete group is dropped so that
// every resampled bar is fully in the past once its source bars are.
func Resample(bars []Bar, factor int) []Bar {
	if factor < 2 || len(bars) < factor {
		return nil
	}
	out := make([]Bar, 0, len(bars)/factor)
	for start := 0; start+factor <= len(bars); start += factor {
		group := bars[start : start+factor]
		agg := Bar{
			Time: group[len(group)-1].Time,
			Open: group[0].Open,
			High: group[0].High,
			Low:  group[0].Low,
		}
		for _, b := range group {
			if b.High > agg.High {
				agg.High = b.High
			}
			if b.Low < agg.Low {
				agg.Low = b.Low
			}
			agg.Volume += b.Volume
		}
		agg.Close = group[len(group)-1].Close
		out = append(out, agg)
	}
	return out
}
