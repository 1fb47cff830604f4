package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang-backtest/config"
	"golang-backtest/internal/dto"
	"golang-backtest/pkg/logger"
)

// ReportRepository persists sweep output for the reporting side: one CSV per
// (variant, split) ranking plus the cross-strategy comparison table.
type ReportRepository interface {
	SaveSweepReport(report *dto.SweepReport) error
}

type reportRepository struct {
	cfg *config.Config
	log *logger.Logger
}

func NewReportRepository(cfg *config.Config, log *logger.Logger) ReportRepository {
	return &reportRepository{cfg: cfg, log: log}
}

func (r *reportRepository) SaveSweepReport(report *dto.SweepReport) error {
	dir := r.cfg.Report.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	for _, ranked := range report.Reports {
		name := fmt.Sprintf("ranking_%s_%s.csv", ranked.Variant, ranked.Split)
		if err := r.writeRanking(filepath.Join(dir, name), ranked); err != nil {
			return err
		}
	}

	if err := r.writeComparison(filepath.Join(dir, "comparison.csv"), report.Comparison); err != nil {
		return err
	}

	r.log.Info("Sweep report saved", logger.StringField("dir", dir))
	return nil
}

func (r *reportRepository) writeRanking(path string, ranked dto.RankedReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"rank", "label", "return_pct", "win_rate", "trades", "max_drawdown_pct", "profit_factor", "stop_loss_count", "final_capital"}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, res := range ranked.Results {
		m := res.Metrics
		rec := []string{
			strconv.Itoa(i + 1),
			res.Label,
			formatPct(m.ReturnPct),
			formatPct(m.WinRate),
			strconv.Itoa(m.TradeCount),
			formatPct(m.MaxDrawdownPct),
			formatPct(m.ProfitFactor),
			strconv.Itoa(m.StopLossCount),
			formatPct(m.FinalCapital),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (r *reportRepository) writeComparison(path string, rows []dto.ComparisonRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"variant", "label", "train_return_pct", "test_return_pct", "return_gap_pct", "overfit", "test_win_rate", "test_trades", "test_max_drawdown_pct"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			string(row.Variant),
			row.Label,
			formatPct(row.TrainReturnPct),
			formatPct(row.TestReturnPct),
			formatPct(row.ReturnGapPct),
			strconv.FormatBool(row.Overfit),
			formatPct(row.TestWinRate),
			strconv.Itoa(row.TestTrades),
			formatPct(row.TestDrawdown),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
