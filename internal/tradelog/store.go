package tradelog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

// Stats is the lightweight on-disk cache the orchestrator's report/CLI
// commands read without recomputing the full PerformanceView.
type Stats struct {
	TotalTrades  int       `json:"total_trades"`
	OpenTrades   int       `json:"open_trades"`
	ClosedTrades int       `json:"closed_trades"`
	WinRate      float64   `json:"win_rate"`
	TotalPnL     float64   `json:"total_pnl"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Performance reads every journal record and recomputes the current
// PerformanceView. Call after Log or Update to refresh the caller's view.
func (j *Journal) Performance() (models.PerformanceView, error) {
	records, err := j.All()
	if err != nil {
		return models.PerformanceView{}, err
	}
	return ComputePerformance(records), nil
}

// PersistPerformance recomputes and writes performance.json and
// stats.json into dir as on-disk caches of the derived performance view.
// Failure to write the cache is logged, not fatal — the journal itself
// remains the source of truth.
func (j *Journal) PersistPerformance(dir string) {
	view, err := j.Performance()
	if err != nil {
		j.logger.Warn().Err(err).Msg("performance recompute failed")
		return
	}

	if err := writeJSON(filepath.Join(dir, "performance.json"), view); err != nil {
		j.logger.Warn().Err(err).Msg("failed to persist performance.json")
	}

	stats := Stats{
		TotalTrades:  view.TotalTrades,
		OpenTrades:   view.OpenTrades,
		ClosedTrades: view.ClosedTrades,
		WinRate:      view.WinRate,
		TotalPnL:     view.TotalPnL,
		UpdatedAt:    view.GeneratedAt,
	}
	if err := writeJSON(filepath.Join(dir, "stats.json"), stats); err != nil {
		j.logger.Warn().Err(err).Msg("failed to persist stats.json")
	}
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("tradelog: marshal %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("tradelog: write %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp, path)
}
