package repository

import (
	"golang-backtest/config"
	"golang-backtest/pkg/cache"
	"golang-backtest/pkg/logger"
)

type Repository struct {
	BinanceRepo BinanceRepository
	CandleRepo  CandleRepository
	ReportRepo  ReportRepository
}

func NewRepository(cfg *config.Config, inmemoryCache cache.Cache, log *logger.Logger) *Repository {
	binanceRepo := NewBinanceRepository(cfg, log)

	return &Repository{
		BinanceRepo: binanceRepo,
		CandleRepo:  NewCandleRepository(cfg, log, inmemoryCache, binanceRepo),
		ReportRepo:  NewReportRepository(cfg, log),
	}
}
