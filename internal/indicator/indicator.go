package indicator

import "math"

// Series holds indicator values aligned to the input indices. Leading values
// that cannot be computed yet are explicitly undefined, never zero. A Series
// is write-once: populated by the computing function and read-only afterwards.
type Series struct {
	values  []float64
	defined []bool
}

// NewSeries returns an all-undefined series of length n.
func NewSeries(n int) Series {
	return Series{
		values:  make([]float64, n),
		defined: make([]bool, n),
	}
}

func (s *Series) set(i int, v float64) {
	s.values[i] = v
	s.defined[i] = true
}

// At returns the value at index i and whether it is defined.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.values) || !s.defined[i] {
		return 0, false
	}
	return s.values[i], true
}

// Len returns the series length.
func (s Series) Len() int {
	return len(s.values)
}

// SMA computes the simple moving average over the trailing period values.
// Undefined for indices below period-1.
func SMA(values []float64, period int) Series {
	s := NewSeries(len(values))
	if period < 1 {
		return s
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			s.set(i, sum/float64(period))
		}
	}
	return s
}

// RSI computes the relative strength index from simple rolling means of gains
// and losses. With no losses in the window and at least one gain, RSI is 100
// by definition; with neither gains nor losses the value is undefined (a flat
// window carries no strength to rate). Defined from index period onward.
func RSI(closes []float64, period int) Series {
	s := NewSeries(len(closes))
	if period < 1 || len(closes) < 2 {
		return s
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		switch {
		case avgLoss == 0 && avgGain == 0:
			// flat window, leave undefined
		case avgLoss == 0:
			s.set(i, 100)
		default:
			rs := avgGain / avgLoss
			s.set(i, 100-100/(1+rs))
		}
	}
	return s
}

// SMAOf computes a rolling mean over another series, defined only where the
// full trailing window of the source is defined.
func SMAOf(src Series, period int) Series {
	s := NewSeries(src.Len())
	if period < 1 {
		return s
	}
	for i := period - 1; i < src.Len(); i++ {
		var sum float64
		ok := true
		for j := i - period + 1; j <= i; j++ {
			v, defined := src.At(j)
			if !defined {
				ok = false
				break
			}
			sum += v
		}
		if ok {
			s.set(i, sum/float64(period))
		}
	}
	return s
}

// trueRange computes the per-bar true range. The first bar has no previous
// close, so its true range is just high-low.
func trueRange(high, low, close []float64) []float64 {
	tr := make([]float64, len(close))
	for i := range close {
		hl := high[i] - low[i]
		if i == 0 {
			tr[i] = hl
			continue
		}
		hc := math.Abs(high[i] - close[i-1])
		lc := math.Abs(low[i] - close[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// ATR computes the average true range as a rolling mean of the true range.
// Undefined for indices below period-1.
func ATR(high, low, close []float64, period int) Series {
	s := NewSeries(len(close))
	if period < 1 || len(close) == 0 {
		return s
	}
	tr := trueRange(high, low, close)
	var sum float64
	for i := range tr {
		sum += tr[i]
		if i >= period {
			sum -= tr[i-period]
		}
		if i >= period-1 {
			s.set(i, sum/float64(period))
		}
	}
	return s
}

// ADX computes the average directional index. Directional movement is taken
// from consecutive high/low deltas, each DM kept only when it exceeds both
// zero and the opposing movement. DI values fall back to 0 when the smoothed
// true range is 0 so a flat market yields ADX 0 rather than a division fault,
// and DX is 0 when +DI and -DI sum to 0.
func ADX(high, low, close []float64, period int) Series {
	s := NewSeries(len(close))
	if period < 1 || len(close) < 2 {
		return s
	}

	tr := trueRange(high, low, close)
	plusDM := make([]float64, len(close))
	minusDM := make([]float64, len(close))
	for i := 1; i < len(close); i++ {
		up := high[i] - high[i-1]
		down := low[i-1] - low[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	// DX is defined from index period onward (the DM series starts at 1),
	// ADX after a further rolling mean over period DX values.
	dx := NewSeries(len(close))
	var trSum, plusSum, minusSum float64
	for i := 1; i < len(close); i++ {
		trSum += tr[i]
		plusSum += plusDM[i]
		minusSum += minusDM[i]
		if i > period {
			trSum -= tr[i-period]
			plusSum -= plusDM[i-period]
			minusSum -= minusDM[i-period]
		}
		if i < period {
			continue
		}

		var plusDI, minusDI float64
		if atr := trSum / float64(period); atr > 0 {
			plusDI = 100 * (plusSum / float64(period)) / atr
			minusDI = 100 * (minusSum / float64(period)) / atr
		}
		if sum := plusDI + minusDI; sum > 0 {
			dx.set(i, 100*math.Abs(plusDI-minusDI)/sum)
		} else {
			dx.set(i, 0)
		}
	}

	var dxSum float64
	for i := period; i < len(close); i++ {
		v, _ := dx.At(i)
		dxSum += v
		if i >= 2*period {
			prev, _ := dx.At(i - period)
			dxSum -= prev
		}
		if i >= 2*period-1 {
			s.set(i, dxSum/float64(period))
		}
	}
	return s
}
