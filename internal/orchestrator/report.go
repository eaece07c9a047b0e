package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

// Report is the per-cycle artifact persisted to
// <INDEX>_report_<YYYYMMDD_HHMMSS>.json. When a cycle aborts, Error
// replaces Decision with a human-readable cause.
type Report struct {
	Index       models.Index    `json:"index"`
	GeneratedAt time.Time       `json:"generated_at"`
	Decision    *models.Decision `json:"decision,omitempty"`
	TradeID     string          `json:"trade_id,omitempty"`
	Chart       ChartSeries     `json:"chart"`
	PatternsSeen []models.PatternID `json:"patterns_seen,omitempty"`
	ChainSignal *models.Signal  `json:"chain_signal,omitempty"`
	Psychology  *models.PsychologyReport `json:"psychology,omitempty"`
	Error       string          `json:"error,omitempty"`

	// Err retains the abort cause for in-process callers (exit-code
	// mapping); the persisted artifact carries only the Error text.
	Err error `json:"-"`
}

// ChartSeries is the plotted-series data contract: the OHLC candles, a
// handful of overlay indicator series, and the detected-pattern markers,
// with no rendering behavior attached.
type ChartSeries struct {
	Timestamps []time.Time `json:"timestamps"`
	Open       []float64   `json:"open"`
	High       []float64   `json:"high"`
	Low        []float64   `json:"low"`
	Close      []float64   `json:"close"`

	SMA20 []float64 `json:"sma_20"`
	SMA50 []float64 `json:"sma_50"`
	VWAP  []float64 `json:"vwap"`

	PatternMarkers []PatternMarker `json:"pattern_markers"`

	PCR      float64            `json:"pcr"`
	MaxPain  float64            `json:"max_pain"`
	KeyLevels []models.KeyLevel `json:"key_levels"`
}

// PatternMarker places one detected pattern at its candle index for
// overlay plotting.
type PatternMarker struct {
	Index int             `json:"index"`
	ID    models.PatternID `json:"id"`
}

// buildChartSeries assembles the chart data contract from the two
// rendezvoused pipeline outputs. It carries only the final indicator value
// per candle, repeated flat across the series as an overlay line; a richer
// per-candle series would require threading intermediate values out of
// BuildIndicatorFrame.
func buildChartSeries(candle candlePipelineResult, chain chainPipelineResult) ChartSeries {
	n := len(candle.frame.Candles)
	series := ChartSeries{
		Timestamps: make([]time.Time, n),
		Open:       make([]float64, n),
		High:       make([]float64, n),
		Low:        make([]float64, n),
		Close:      make([]float64, n),
	}
	for i, c := range candle.frame.Candles {
		series.Timestamps[i] = c.Timestamp
		series.Open[i] = c.Open
		series.High[i] = c.High
		series.Low[i] = c.Low
		series.Close[i] = c.Close
	}

	for _, marked := range candle.marks.All {
		series.PatternMarkers = append(series.PatternMarkers, PatternMarker{Index: marked.Index, ID: marked.ID})
	}

	series.SMA20 = repeat(candle.frame.MovingAverages.SMA20, n)
	series.SMA50 = repeat(candle.frame.MovingAverages.SMA50, n)
	series.VWAP = repeat(candle.frame.Volume.VWAP, n)

	series.PCR = chain.analysis.PCROI
	series.MaxPain = chain.analysis.MaxPain
	series.KeyLevels = append(append([]models.KeyLevel{}, chain.analysis.PutSupport...), chain.analysis.CallResistance...)

	return series
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// WriteReport persists report as
// <dir>/<INDEX>_report_<YYYYMMDD_HHMMSS>.json. The timestamp in the name
// comes from the report itself so concurrent cycles for different indices
// never collide.
func WriteReport(dir string, report *Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("orchestrator: create report directory: %w", err)
	}
	name := fmt.Sprintf("%s_report_%s.json", report.Index, report.GeneratedAt.Format("20060102_150405"))
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("orchestrator: marshal report: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
