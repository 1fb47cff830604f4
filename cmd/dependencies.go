package cmd

import (
	"context"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"golang-backtest/config"
	"golang-backtest/internal/indicator"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/logger"
)

type AppDependency struct {
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	indCache  *indicator.Cache
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	inmemoryCache := cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)

	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		echo:      echo.New(),
		cache:     inmemoryCache,
		indCache:  indicator.NewCache(inmemoryCache),
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	return d.log.Sync()
}
