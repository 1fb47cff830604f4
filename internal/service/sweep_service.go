package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/internal/model"
	"golang-backtest/internal/strategy"
	"golang-backtest/pkg/logger"
)

// SweepService enumerates every parameter combination per strategy variant,
// runs one simulation per combination per data split and ranks the outcomes.
type SweepService interface {
	RunSweep(ctx context.Context, bars []model.Bar) (*dto.SweepReport, error)
}

type sweepService struct {
	cfg       *config.Config
	log       *logger.Logger
	simulator SimulatorService
}

// NewSweepService creates a new instance of sweepService.
func NewSweepService(cfg *config.Config, log *logger.Logger, simulator SimulatorService) SweepService {
	return &sweepService{
		cfg:       cfg,
		log:       log,
		simulator: simulator,
	}
}

// splitRun is the unit of aggregation: all combinations of one variant on one
// data split, with a preallocated result slot per combination so workers
// never share mutable state.
type splitRun struct {
	variant    dto.Variant
	split      dto.Split
	bars       []model.Bar
	strategies []strategy.Strategy
	results    []*dto.SimulationResult
}

// RunSweep partitions bars at the configured cutoff, dispatches every
// (variant, combination, split) as an independent task and, once all tasks
// have joined, ranks each (variant, split) and assembles the cross-strategy
// comparison from the best test-split combinations.
func (s *sweepService) RunSweep(ctx context.Context, bars []model.Bar) (*dto.SweepReport, error) {
	train, test, err := s.splitBars(bars)
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Starting parameter sweep",
		logger.IntField("train_bars", len(train)),
		logger.IntField("test_bars", len(test)),
		logger.IntField("max_concurrency", s.cfg.Sweep.MaxConcurrency))

	var runs []*splitRun
	for _, variant := range strategy.Variants() {
		for _, split := range []dto.Split{dto.SplitTrain, dto.SplitTest} {
			splitBars := train
			if split == dto.SplitTest {
				splitBars = test
			}
			// Strategies hold per-run indicator state, so every split gets
			// its own grid instances.
			grid, err := strategy.BuildGrid(variant, s.cfg.Sweep.Grids)
			if err != nil {
				return nil, fmt.Errorf("build %s grid: %w", variant, err)
			}
			runs = append(runs, &splitRun{
				variant:    variant,
				split:      split,
				bars:       splitBars,
				strategies: grid,
				results:    make([]*dto.SimulationResult, len(grid)),
			})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	semaphore := make(chan struct{}, s.cfg.Sweep.MaxConcurrency)

	for _, run := range runs {
		for i, strat := range run.strategies {
			run, i, strat := run, i, strat
			g.Go(func() error {
				select {
				case semaphore <- struct{}{}:
				case <-gctx.Done():
					return gctx.Err()
				}
				defer func() { <-semaphore }()

				result, err := s.simulator.Run(gctx, run.bars, strat, s.cfg.Simulation)
				if err != nil {
					return fmt.Errorf("run %s on %s split: %w", strat.Label(), run.split, err)
				}
				result.Split = run.split
				run.results[i] = result

				s.log.DebugContext(gctx, "Sweep combination finished",
					logger.StringField("variant", string(run.variant)),
					logger.StringField("split", string(run.split)),
					logger.StringField("label", result.Label),
					logger.FloatField("return_pct", result.Metrics.ReturnPct))
				return nil
			})
		}
	}

	// Barrier: ranking only happens once every combination has reported.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &dto.SweepReport{
		TrainStart: train[0].Time,
		TrainEnd:   train[len(train)-1].Time,
		TestStart:  test[0].Time,
		TestEnd:    test[len(test)-1].Time,
	}
	for _, run := range runs {
		report.Reports = append(report.Reports, dto.RankedReport{
			Variant: run.variant,
			Split:   run.split,
			Results: RankResults(run.results, s.cfg.Sweep.TopN),
		})
	}
	report.Comparison = s.buildComparison(runs)

	s.log.InfoContext(ctx, "Parameter sweep completed",
		logger.IntField("ranked_reports", len(report.Reports)),
		logger.IntField("comparison_rows", len(report.Comparison)))
	return report, nil
}

func (s *sweepService) splitBars(bars []model.Bar) (train, test []model.Bar, err error) {
	if len(bars) < 2 {
		return nil, nil, fmt.Errorf("sweep requires at least two bars, got %d", len(bars))
	}

	cutoff, ok := s.cfg.SplitCutoffTime()
	if !ok {
		idx := int(float64(len(bars)) * s.cfg.Sweep.TrainRatio)
		if idx < 1 {
			idx = 1
		}
		if idx >= len(bars) {
			idx = len(bars) - 1
		}
		cutoff = bars[idx].Time
	}

	train, test = model.SplitAt(bars, cutoff)
	if len(train) == 0 || len(test) == 0 {
		return nil, nil, fmt.Errorf("split cutoff %s leaves an empty range (train=%d, test=%d)",
			cutoff.Format(time.RFC3339), len(train), len(test))
	}
	return train, test, nil
}

// buildComparison picks, per variant, the combination with the best
// test-split return (not train, to avoid rewarding overfit parameters) and
// pairs it with that combination's train-split result.
func (s *sweepService) buildComparison(runs []*splitRun) []dto.ComparisonRow {
	trainByLabel := make(map[dto.Variant]map[string]*dto.SimulationResult)
	bestTest := make(map[dto.Variant]*dto.SimulationResult)

	for _, run := range runs {
		if run.split == dto.SplitTrain {
			byLabel := make(map[string]*dto.SimulationResult, len(run.results))
			for _, r := range run.results {
				byLabel[r.Label] = r
			}
			trainByLabel[run.variant] = byLabel
			continue
		}
		if top := RankResults(run.results, 1); len(top) > 0 {
			bestTest[run.variant] = top[0]
		}
	}

	var rows []dto.ComparisonRow
	for _, variant := range strategy.Variants() {
		best, ok := bestTest[variant]
		if !ok {
			continue
		}
		row := dto.ComparisonRow{
			Variant:       variant,
			Label:         best.Label,
			TestReturnPct: best.Metrics.ReturnPct,
			TestWinRate:   best.Metrics.WinRate,
			TestTrades:    best.Metrics.TradeCount,
			TestDrawdown:  best.Metrics.MaxDrawdownPct,
		}
		if trainResult, ok := trainByLabel[variant][best.Label]; ok {
			row.TrainReturnPct = trainResult.Metrics.ReturnPct
			row.ReturnGapPct = math.Abs(trainResult.Metrics.ReturnPct - best.Metrics.ReturnPct)
			row.Overfit = row.ReturnGapPct > s.cfg.Sweep.OverfitGapPct
		}
		rows = append(rows, row)
	}
	return rows
}
