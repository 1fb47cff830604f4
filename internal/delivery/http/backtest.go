package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
	"golang-backtest/internal/strategy"
)

func (h *HttpAPIHandler) SetupBacktest(base *echo.Group) {
	backtestGroup := base.Group("/backtest")
	backtestGroup.POST("/run", h.runBacktest)
	backtestGroup.POST("/sweep", h.runSweep)
}

func (h *HttpAPIHandler) runBacktest(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.RunRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	strat, err := strategy.FromRunRequest(*req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bars, err := h.fetchBars(c, req.Symbol, req.Interval, req.Days)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to load bar data"})
	}

	result, err := h.service.SimulatorService.Run(ctx, bars, strat, h.cfg.Simulation)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to run backtest"})
	}
	return c.JSON(http.StatusOK, result)
}

func (h *HttpAPIHandler) runSweep(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.SweepRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	bars, err := h.fetchBars(c, req.Symbol, req.Interval, req.Days)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to load bar data"})
	}

	report, err := h.service.SweepService.RunSweep(ctx, bars)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to run sweep"})
	}
	return c.JSON(http.StatusOK, report)
}

func (h *HttpAPIHandler) fetchBars(c echo.Context, symbol, interval string, days int) ([]model.Bar, error) {
	cfg := h.cfg
	if symbol == "" {
		symbol = cfg.Binance.Symbol
	}
	if interval == "" {
		interval = cfg.Binance.Interval
	}
	if days <= 0 {
		days = cfg.Binance.Days
	}
	return h.repo.CandleRepo.GetBars(c.Request().Context(), symbol, interval, days)
}
