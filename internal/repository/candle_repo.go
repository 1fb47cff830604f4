package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang-backtest/config"
	"golang-backtest/internal/model"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/logger"
)

// CandleRepository supplies the normalized bar series the engine consumes.
// Lookups go memory cache, then a per-(symbol, interval) CSV file cache, then
// Binance; fresh fetches are written back to both caches.
type CandleRepository interface {
	GetBars(ctx context.Context, symbol string, interval string, days int) ([]model.Bar, error)
}

type candleRepository struct {
	cfg     *config.Config
	log     *logger.Logger
	binance BinanceRepository
	cache   cache.Cache
}

func NewCandleRepository(cfg *config.Config, log *logger.Logger, inmemoryCache cache.Cache, binance BinanceRepository) CandleRepository {
	return &candleRepository{
		cfg:     cfg,
		log:     log,
		binance: binance,
		cache:   inmemoryCache,
	}
}

func (r *candleRepository) GetBars(ctx context.Context, symbol string, interval string, days int) ([]model.Bar, error) {
	cacheKey := fmt.Sprintf("bars:%s:%s:%d", symbol, interval, days)
	if bars, ok := cache.GetTyped[[]model.Bar](r.cache, cacheKey); ok {
		return bars, nil
	}

	if bars, ok := r.loadCSV(ctx, symbol, interval, days); ok {
		r.cache.Set(cacheKey, bars, cache.NoExpiration)
		return bars, nil
	}

	bars, err := r.binance.GetBars(ctx, symbol, interval, days)
	if err != nil {
		return nil, err
	}

	if err := r.saveCSV(symbol, interval, bars); err != nil {
		r.log.WarnContext(ctx, "Failed to write candle cache file", logger.ErrorField(err))
	}
	r.cache.Set(cacheKey, bars, cache.NoExpiration)
	return bars, nil
}

// cachePath names the file cache for one (symbol, interval) series so a
// request never reads bars fetched for a different market.
func (r *candleRepository) cachePath(symbol, interval string) string {
	if r.cfg.Binance.CacheDir == "" {
		return ""
	}
	name := fmt.Sprintf("%s_%s.csv", strings.ToLower(symbol), strings.ToLower(interval))
	return filepath.Join(r.cfg.Binance.CacheDir, name)
}

// loadCSV reads the file cache for the requested series and reports whether
// it covers the requested number of days.
func (r *candleRepository) loadCSV(ctx context.Context, symbol, interval string, days int) ([]model.Bar, bool) {
	path := r.cachePath(symbol, interval)
	if path == "" {
		return nil, false
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	bars, err := ReadBarsCSV(f)
	if err != nil {
		r.log.WarnContext(ctx, "Candle cache file is unreadable, refetching",
			logger.StringField("path", path), logger.ErrorField(err))
		return nil, false
	}
	if len(bars) < 2 {
		return nil, false
	}

	coveredDays := int(bars[len(bars)-1].Time.Sub(bars[0].Time).Hours() / 24)
	if coveredDays < days-1 {
		r.log.DebugContext(ctx, "Candle cache too short, refetching",
			logger.IntField("covered_days", coveredDays),
			logger.IntField("requested_days", days))
		return nil, false
	}

	r.log.InfoContext(ctx, "Loaded bars from candle cache",
		logger.StringField("path", path), logger.IntField("bars", len(bars)))
	return bars, true
}

func (r *candleRepository) saveCSV(symbol, interval string, bars []model.Bar) error {
	path := r.cachePath(symbol, interval)
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteBarsCSV(f, bars)
}

// ReadBarsCSV parses a bar series from CSV with a header row of
// time,open,high,low,close,volume. Timestamps are RFC3339.
func ReadBarsCSV(f *os.File) ([]model.Bar, error) {
	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	bars := make([]model.Bar, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 6 {
			return nil, fmt.Errorf("malformed csv row: %v", rec)
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("parse bar time %q: %w", rec[0], err)
		}
		var vals [5]float64
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("parse bar field %q: %w", rec[i+1], err)
			}
			vals[i] = v
		}
		bars = append(bars, model.Bar{
			Time:   ts.UTC(),
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}
	return bars, nil
}

// WriteBarsCSV writes the bar series with a header row.
func WriteBarsCSV(f *os.File, bars []model.Bar) error {
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			b.Time.UTC().Format(time.RFC3339),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
