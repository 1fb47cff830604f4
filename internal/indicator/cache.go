package indicator

import (
	"fmt"

	"golang-backtest/internal/model"
	"golang-backtest/pkg/cache"
)

// Cache memoizes indicator series shared across strategy variants. Entries
// are keyed by (kind, period, bar range) and never mutated after population,
// so concurrent readers are safe. A nil Cache computes without memoizing.
type Cache struct {
	store cache.Cache
}

// NewCache wraps the given store.
func NewCache(store cache.Cache) *Cache {
	return &Cache{store: store}
}

func rangeKey(kind string, period int, bars []model.Bar) string {
	if len(bars) == 0 {
		return fmt.Sprintf("%s:%d:empty", kind, period)
	}
	first := bars[0].Time.UnixNano()
	last := bars[len(bars)-1].Time.UnixNano()
	return fmt.Sprintf("%s:%d:%d:%d:%d", kind, period, first, last, len(bars))
}

func (c *Cache) memoize(kind string, period int, bars []model.Bar, compute func() Series) Series {
	if c == nil || c.store == nil {
		return compute()
	}
	key := rangeKey(kind, period, bars)
	if s, ok := cache.GetTyped[Series](c.store, key); ok {
		return s
	}
	s := compute()
	c.store.Set(key, s, cache.NoExpiration)
	return s
}

// SMA returns the memoized simple moving average of the close series.
func (c *Cache) SMA(bars []model.Bar, period int) Series {
	return c.memoize("sma", period, bars, func() Series {
		return SMA(model.Closes(bars), period)
	})
}

// RSI returns the memoized relative strength index of the close series.
func (c *Cache) RSI(bars []model.Bar, period int) Series {
	return c.memoize("rsi", period, bars, func() Series {
		return RSI(model.Closes(bars), period)
	})
}

// ATR returns the memoized average true range.
func (c *Cache) ATR(bars []model.Bar, period int) Series {
	return c.memoize("atr", period, bars, func() Series {
		return ATR(model.Highs(bars), model.Lows(bars), model.Closes(bars), period)
	})
}

// ADX returns the memoized average directional index.
func (c *Cache) ADX(bars []model.Bar, period int) Series {
	return c.memoize("adx", period, bars, func() Series {
		return ADX(model.Highs(bars), model.Lows(bars), model.Closes(bars), period)
	})
}
