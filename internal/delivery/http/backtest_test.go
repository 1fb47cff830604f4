package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
	"golang-backtest/internal/repository"
	"golang-backtest/internal/service"
	"golang-backtest/pkg/logger"
)

type stubCandleRepo struct {
	bars []model.Bar
	err  error
}

func (s *stubCandleRepo) GetBars(ctx context.Context, symbol, interval string, days int) ([]model.Bar, error) {
	return s.bars, s.err
}

func testConfig() *config.Config {
	return &config.Config{
		Binance: config.Binance{Symbol: "BTCUSDT", Interval: "1h", Days: 30},
		Simulation: config.Simulation{
			InitialCapital:  500,
			PositionSizePct: 0.35,
			MinTradeUnit:    0.0001,
			StopLossPct:     0.10,
			FeeRate:         0.001,
		},
		Sweep: config.Sweep{
			TopN:           5,
			MaxConcurrency: 2,
			TrainRatio:     0.75,
			OverfitGapPct:  10,
			Grids: config.Grids{
				Crossover: config.CrossoverGrid{ShortPeriods: []int{2}, LongPeriods: []int{4}},
				RSI:       config.RSIGrid{Periods: []int{2}, Oversold: []float64{30}, Overbought: []float64{70}},
				TrendFilter: config.TrendFilterGrid{
					ShortPeriod: 2, LongPeriod: 4,
					ADXPeriods: []int{2}, ADXThresholds: []float64{25},
				},
			},
		},
	}
}

func testBars(n int) []model.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := range bars {
		c := 100 + float64(i%7) + float64(i)*0.2
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

func newTestHandler(t *testing.T, repo *repository.Repository) *echo.Echo {
	t.Helper()
	cfg := testConfig()
	e := echo.New()
	services := service.NewService(cfg, logger.NewNop(), nil)
	handler := NewHttpAPIHandler(context.Background(), cfg, e, goValidator.New(), services, repo)
	handler.SetupRoutes()
	return e
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRunBacktestEndpoint(t *testing.T) {
	repo := &repository.Repository{CandleRepo: &stubCandleRepo{bars: testBars(40)}}
	e := newTestHandler(t, repo)

	rec := postJSON(e, "/api/backtest/run", `{"variant":"crossover_ma","short_period":2,"long_period":4}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result dto.SimulationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, dto.VariantCrossover, result.Variant)
	assert.Equal(t, "MA(2/4)", result.Label)
}

func TestRunBacktestRejectsUnknownVariant(t *testing.T) {
	repo := &repository.Repository{CandleRepo: &stubCandleRepo{bars: testBars(40)}}
	e := newTestHandler(t, repo)

	rec := postJSON(e, "/api/backtest/run", `{"variant":"martingale"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunBacktestRejectsInvalidParams(t *testing.T) {
	repo := &repository.Repository{CandleRepo: &stubCandleRepo{bars: testBars(40)}}
	e := newTestHandler(t, repo)

	// short >= long fails in the strategy constructor.
	rec := postJSON(e, "/api/backtest/run", `{"variant":"crossover_ma","short_period":20,"long_period":10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunBacktestBarFetchFailure(t *testing.T) {
	repo := &repository.Repository{CandleRepo: &stubCandleRepo{err: assert.AnError}}
	e := newTestHandler(t, repo)

	rec := postJSON(e, "/api/backtest/run", `{"variant":"crossover_ma","short_period":2,"long_period":4}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRunSweepEndpoint(t *testing.T) {
	repo := &repository.Repository{CandleRepo: &stubCandleRepo{bars: testBars(40)}}
	e := newTestHandler(t, repo)

	rec := postJSON(e, "/api/backtest/sweep", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report dto.SweepReport
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Reports, 6)
}
