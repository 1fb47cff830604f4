package http

import (
	"context"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"golang-backtest/config"
	"golang-backtest/internal/repository"
	"golang-backtest/internal/service"
)

type HttpAPIHandler struct {
	cfg       *config.Config
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	repo      *repository.Repository
}

func NewHttpAPIHandler(ctx context.Context, cfg *config.Config, echo *echo.Echo, validator *goValidator.Validate, service *service.Service, repo *repository.Repository) *HttpAPIHandler {
	return &HttpAPIHandler{
		cfg:       cfg,
		echo:      echo,
		validator: validator,
		service:   service,
		repo:      repo,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api")
	h.SetupBacktest(base)
}
