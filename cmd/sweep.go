package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"golang-backtest/internal/repository"
	"golang-backtest/internal/service"
	"golang-backtest/pkg/logger"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the full parameter sweep and write ranking reports",
	Run:   Sweep,
}

func Sweep(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	repo := repository.NewRepository(appDep.cfg, appDep.cache, appDep.log)
	services := service.NewService(appDep.cfg, appDep.log, appDep.indCache)

	cfg := appDep.cfg
	bars, err := repo.CandleRepo.GetBars(ctx, cfg.Binance.Symbol, cfg.Binance.Interval, cfg.Binance.Days)
	if err != nil {
		log.Fatalf("Failed to load candles: %v", err)
	}

	report, err := services.SweepService.RunSweep(ctx, bars)
	if err != nil {
		log.Fatalf("Failed to run sweep: %v", err)
	}

	for _, ranked := range report.Reports {
		for rank, result := range ranked.Results {
			appDep.log.Info("Ranked result",
				logger.StringField("variant", string(ranked.Variant)),
				logger.StringField("split", string(ranked.Split)),
				logger.IntField("rank", rank+1),
				logger.StringField("label", result.Label),
				logger.FloatField("return_pct", result.Metrics.ReturnPct),
				logger.FloatField("win_rate", result.Metrics.WinRate),
				logger.IntField("trades", result.Metrics.TradeCount),
				logger.FloatField("max_drawdown_pct", result.Metrics.MaxDrawdownPct))
		}
	}

	for _, row := range report.Comparison {
		appDep.log.Info("Best per variant",
			logger.StringField("variant", string(row.Variant)),
			logger.StringField("label", row.Label),
			logger.FloatField("train_return_pct", row.TrainReturnPct),
			logger.FloatField("test_return_pct", row.TestReturnPct),
			logger.FloatField("return_gap_pct", row.ReturnGapPct),
			logger.Field("overfit", row.Overfit))
	}

	if err := repo.ReportRepo.SaveSweepReport(report); err != nil {
		log.Fatalf("Failed to save sweep report: %v", err)
	}
	appDep.log.Info("Sweep report saved", logger.StringField("dir", cfg.Report.Dir))
}
