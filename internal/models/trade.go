package models

import "time"

// TradeStatus is the closed set of TradeRecord lifecycle states.
type TradeStatus string

const (
	StatusOpen      TradeStatus = "OPEN"
	StatusClosed    TradeStatus = "CLOSED"
	StatusCancelled TradeStatus = "CANCELLED"
)

// TradeRecord is an append-only journal entry. It is created OPEN by the
// orchestrator for every EXECUTE or SUGGEST decision and mutated only by update
// operations supplying exit fields; it is never deleted.
type TradeRecord struct {
	TradeID    string     `json:"trade_id"`
	Index      string     `json:"index"`
	Signal     SignalKind `json:"signal"`
	EntryTime  time.Time  `json:"entry_time"`
	EntryPrice float64    `json:"entry_price"`
	Quantity   int        `json:"quantity"`
	Strike     float64    `json:"strike"`
	Expiry     string     `json:"expiry"`
	Status     TradeStatus `json:"status"`

	ExitTime  *time.Time `json:"exit_time,omitempty"`
	ExitPrice *float64   `json:"exit_price,omitempty"`
	PnL       *float64   `json:"pnl,omitempty"`

	StopLoss *float64 `json:"stop_loss,omitempty"`
	Target   *float64 `json:"target,omitempty"`

	Psychology       *PsychologyReport `json:"psychology,omitempty"`
	PatternsDetected []PatternID       `json:"patterns_detected,omitempty"`
	Confidence       *float64          `json:"confidence,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// Direction is +1 for BUY CALL, -1 for BUY PUT.
func (t *TradeRecord) Direction() int {
	return t.Signal.Direction()
}

// TradePatch carries the only fields update() is permitted to mutate.
type TradePatch struct {
	ExitTime  *time.Time
	ExitPrice *float64
	PnL       *float64
	Status    *TradeStatus
	StopLoss  *float64
	Target    *float64
	Notes     *string
}

// PerformanceView is derived, recomputable at any time from the closed
// TradeRecord set. It is never persisted as source-of-truth.
type PerformanceView struct {
	TotalTrades     int     `json:"total_trades"`
	OpenTrades      int     `json:"open_trades"`
	ClosedTrades    int     `json:"closed_trades"`
	WinCount        int     `json:"win_count"`
	LossCount       int     `json:"loss_count"`
	BreakevenCount  int     `json:"breakeven_count"`
	WinRate         float64 `json:"win_rate"`
	ProfitFactor    float64 `json:"profit_factor"`
	AvgWin          float64 `json:"avg_win"`
	AvgLoss         float64 `json:"avg_loss"`
	WinLossRatio    float64 `json:"win_loss_ratio"`
	TotalPnL        float64 `json:"total_pnl"`

	EquityCurve       []EquityPoint `json:"equity_curve"`
	MaxDrawdown       float64       `json:"max_drawdown"`
	LongestUnderwater int           `json:"longest_underwater_trades"`

	StdDevPnL     float64 `json:"stddev_pnl"`
	Sharpe        float64 `json:"sharpe"`
	Sortino       float64 `json:"sortino"`

	DailyWinRateMean   float64 `json:"daily_win_rate_mean"`
	DailyWinRateMedian float64 `json:"daily_win_rate_median"`
	DailyWinRateStdDev float64 `json:"daily_win_rate_stddev"`

	ByIndex      map[string]*BucketMetrics `json:"by_index"`
	BySignal     map[SignalKind]*BucketMetrics `json:"by_signal"`
	ByMonth      map[string]*BucketMetrics `json:"by_month"`
	ByHour       map[int]*BucketMetrics    `json:"by_hour"`

	PatternEffectiveness map[PatternID]float64 `json:"pattern_effectiveness"`
	BySentiment          map[string]*BucketMetrics `json:"by_sentiment"`
	ByFearGreedBand      map[FearGreedBucket]*BucketMetrics `json:"by_fear_greed_band"`

	GeneratedAt time.Time `json:"generated_at"`
}

// EquityPoint is one point on the cumulative-pnl equity curve.
type EquityPoint struct {
	ExitTime   time.Time `json:"exit_time"`
	TradeID    string    `json:"trade_id"`
	PnL        float64   `json:"pnl"`
	Cumulative float64   `json:"cumulative"`
}

// BucketMetrics is a reduced view of performance within one bucket
// (index, signal kind, month, hour, sentiment, fear-greed band).
type BucketMetrics struct {
	Trades  int     `json:"trades"`
	WinRate float64 `json:"win_rate"`
	TotalPnL float64 `json:"total_pnl"`
	AvgPnL  float64 `json:"avg_pnl"`
}
