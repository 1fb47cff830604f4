package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
	"golang-backtest/pkg/httpclient"
	"golang-backtest/pkg/logger"
)

const klinesPageLimit = 500

type BinanceRepository interface {
	GetKlines(ctx context.Context, symbol string, interval string, limit int, startTime, endTime int64) ([]dto.BinanceKline, error)
	GetBars(ctx context.Context, symbol string, interval string, days int) ([]model.Bar, error)
}

type binanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewBinanceRepository(cfg *config.Config, log *logger.Logger) BinanceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Binance.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &binanceRepository{
		httpClient:     httpclient.New(cfg.Binance.BaseURL, cfg.Binance.Timeout),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (r *binanceRepository) GetKlines(ctx context.Context, symbol string, interval string, limit int, startTime, endTime int64) ([]dto.BinanceKline, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := "/api/v3/klines"
	queryParams := map[string]string{
		"symbol":    symbol,
		"interval":  interval,
		"limit":     strconv.Itoa(limit),
		"startTime": strconv.FormatInt(startTime, 10),
		"endTime":   strconv.FormatInt(endTime, 10),
	}

	var klines [][]interface{}
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, nil, &klines)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines from binance: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Binance API returned Non-OK status for klines",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("binance api returned status: %d", resp.StatusCode)
	}

	result := make([]dto.BinanceKline, 0, len(klines))
	for _, k := range klines {
		if len(k) < 7 {
			continue
		}
		openTime, _ := k[0].(float64)
		open, _ := strconv.ParseFloat(k[1].(string), 64)
		high, _ := strconv.ParseFloat(k[2].(string), 64)
		low, _ := strconv.ParseFloat(k[3].(string), 64)
		closePrice, _ := strconv.ParseFloat(k[4].(string), 64)
		volume, _ := strconv.ParseFloat(k[5].(string), 64)
		closeTime, _ := k[6].(float64)

		result = append(result, dto.BinanceKline{
			OpenTime:  int64(openTime),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
			CloseTime: int64(closeTime),
		})
	}

	return result, nil
}

// GetBars pages through the klines endpoint until the requested day range is
// covered and normalizes the response into the bar series the engine reads.
func (r *binanceRepository) GetBars(ctx context.Context, symbol string, interval string, days int) ([]model.Bar, error) {
	endTime := time.Now()
	startTime := endTime.AddDate(0, 0, -days)
	since := startTime.UnixMilli()
	endMs := endTime.UnixMilli()

	var bars []model.Bar
	for since < endMs {
		klines, err := r.GetKlines(ctx, symbol, interval, klinesPageLimit, since, endMs)
		if err != nil {
			return nil, err
		}
		if len(klines) == 0 {
			break
		}

		for _, k := range klines {
			bars = append(bars, model.Bar{
				Time:   time.UnixMilli(k.OpenTime).UTC(),
				Open:   k.Open,
				High:   k.High,
				Low:    k.Low,
				Close:  k.Close,
				Volume: k.Volume,
			})
		}

		r.logger.DebugContext(ctx, "Fetched klines page",
			logger.StringField("symbol", symbol),
			logger.IntField("total_bars", len(bars)))

		since = klines[len(klines)-1].OpenTime + 1
		if len(klines) < klinesPageLimit {
			break
		}
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("binance returned no bars for %s %s", symbol, interval)
	}
	return bars, nil
}
