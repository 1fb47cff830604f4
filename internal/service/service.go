package service

import (
	"golang-backtest/config"
	"golang-backtest/internal/indicator"
	"golang-backtest/pkg/logger"
)

type Service struct {
	SimulatorService SimulatorService
	SweepService     SweepService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	indCache *indicator.Cache,
) *Service {
	simulatorService := NewSimulatorService(log, indCache)
	sweepService := NewSweepService(cfg, log, simulatorService)

	return &Service{
		SimulatorService: simulatorService,
		SweepService:     sweepService,
	}
}
