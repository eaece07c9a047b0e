// Package orchestrator drives the per-index analysis cycle: fetch,
// analyze, fuse, and (when the decision warrants it) log and dispatch.
// The candle pipeline (indicators -> patterns) and the chain pipeline
// (option-chain analysis -> psychology -> chain signal) run concurrently
// and rendezvous before fusion.
package orchestrator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/ridopark/options-engine/internal/external"
	"github.com/ridopark/options-engine/internal/fusion"
	"github.com/ridopark/options-engine/internal/indicators"
	"github.com/ridopark/options-engine/internal/logger"
	"github.com/ridopark/options-engine/internal/ml"
	"github.com/ridopark/options-engine/internal/models"
	"github.com/ridopark/options-engine/internal/optionchain"
	"github.com/ridopark/options-engine/internal/patterns"
	"github.com/ridopark/options-engine/internal/psychology"
	"github.com/ridopark/options-engine/internal/strategy"
	"github.com/ridopark/options-engine/internal/tradelog"
)

// Deadlines bound every external I/O call per cycle.
const (
	httpDeadline      = 15 * time.Second
	inferenceDeadline = 5 * time.Second
)

// Config tunes one orchestrator instance. It is the runtime projection of
// internal/config.Config that the cycle logic actually consumes.
type Config struct {
	RiskProfile       models.RiskProfile
	AccountBalance    float64
	RiskPerTrade      float64
	RealTradingEnabled bool
	ReportDir         string
}

// Orchestrator wires the external collaborators to the analytic pipeline
// and the trade journal.
type Orchestrator struct {
	cfg        Config
	candles    external.CandleSource
	chain      external.ChainSource
	classifier ml.Classifier // nil triggers the documented rule-based fallback
	dispatcher external.OrderDispatcher
	journal    *tradelog.Journal
	logger     zerolog.Logger
}

// New builds an Orchestrator. dispatcher and classifier may be nil:
// without a dispatcher the cycle logs decisions but never attempts order
// placement; without a classifier the ML stage runs its rule-based
// fallback instead of classifier inference.
func New(cfg Config, candles external.CandleSource, chain external.ChainSource, classifier ml.Classifier, dispatcher external.OrderDispatcher, journal *tradelog.Journal, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		candles:    candles,
		chain:      chain,
		classifier: classifier,
		dispatcher: dispatcher,
		journal:    journal,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
	}
}

type candlePipelineResult struct {
	frame   *models.IndicatorFrame
	marks   *models.PatternMarks
	trend   models.TrendBucket
	strength float64
}

type chainPipelineResult struct {
	snapshot   *models.OptionChainSnapshot
	analysis   models.ChainAnalysis
	psychology models.PsychologyReport
	chainSignal models.Signal
}

// RunCycle executes one full analysis cycle for index and returns the
// assembled report. On input or external-I/O failure the cycle aborts for
// this index and the report carries an Error in place of a decision; no
// trade state is mutated in that case.
func (o *Orchestrator) RunCycle(ctx context.Context, index models.Index) *Report {
	start := time.Now()
	log := o.logger.With().Str("index", string(index)).Logger()

	p := pool.New().WithErrors().WithContext(ctx).WithFirstError()

	var candleResult candlePipelineResult
	var chainResult chainPipelineResult

	p.Go(func(ctx context.Context) error {
		result, err := o.runCandlePipeline(ctx, index)
		if err != nil {
			return fmt.Errorf("candle pipeline: %w", err)
		}
		candleResult = result
		return nil
	})

	p.Go(func(ctx context.Context) error {
		result, err := o.runChainPipeline(ctx, index)
		if err != nil {
			return fmt.Errorf("chain pipeline: %w", err)
		}
		chainResult = result
		return nil
	})

	if err := p.Wait(); err != nil {
		logger.LogError(log, err, "cycle aborted", map[string]interface{}{"index": string(index)})
		return &Report{Index: index, GeneratedAt: start, Error: err.Error(), Err: err}
	}

	decision := o.fuse(index, candleResult, chainResult)

	report := &Report{
		Index:        index,
		GeneratedAt:  start,
		Decision:     &decision,
		Chart:        buildChartSeries(candleResult, chainResult),
		PatternsSeen: candleResult.marks.At(len(candleResult.frame.Candles) - 1),
		ChainSignal:  &chainResult.chainSignal,
		Psychology:   &chainResult.psychology,
	}

	if decision.Action != models.ActionNone {
		o.logAndDispatch(ctx, index, decision, candleResult, chainResult, report)
	}

	log.Info().
		Str("signal", string(decision.Kind)).
		Str("action", string(decision.Action)).
		Float64("confidence", decision.Confidence).
		Msg("cycle complete")
	logger.LogPerformance(log, "analysis_cycle", start, true)

	return report
}

func (o *Orchestrator) runCandlePipeline(ctx context.Context, index models.Index) (candlePipelineResult, error) {
	ctx, cancel := context.WithTimeout(ctx, httpDeadline)
	defer cancel()

	candles, err := o.candles.FetchCandles(ctx, index)
	if err != nil {
		return candlePipelineResult{}, fmt.Errorf("%w: %v", models.ErrExternalUnavailable, err)
	}
	if len(candles) == 0 {
		return candlePipelineResult{}, fmt.Errorf("%w: no candles returned", models.ErrInvalidInput)
	}

	frame := indicators.BuildIndicatorFrame(candles, indicators.DefaultConfig())
	marks := patterns.Detect(candles)
	trend, strength := indicators.GetTrendStrength(frame)

	return candlePipelineResult{frame: frame, marks: marks, trend: trend, strength: strength}, nil
}

func (o *Orchestrator) runChainPipeline(ctx context.Context, index models.Index) (chainPipelineResult, error) {
	ctx, cancel := context.WithTimeout(ctx, httpDeadline)
	defer cancel()

	snapshot, err := o.chain.FetchChain(ctx, index)
	if err != nil {
		return chainPipelineResult{}, fmt.Errorf("%w: %v", models.ErrExternalUnavailable, err)
	}

	analysis := optionchain.Analyze(snapshot)
	report := psychology.Analyze(analysis, snapshot.Underlying)
	chainSignal := strategy.Signal(analysis, snapshot.Underlying)

	return chainPipelineResult{snapshot: snapshot, analysis: analysis, psychology: report, chainSignal: chainSignal}, nil
}

// fuse assembles the feature vector, runs the ML inference adapter, and
// fuses every source under the configured risk profile, sizing and gating
// the result.
func (o *Orchestrator) fuse(index models.Index, candle candlePipelineResult, chain chainPipelineResult) models.Decision {
	indicatorSignal := indicators.GetIndicatorSignals(candle.frame)
	lastIndex := len(candle.frame.Candles) - 1
	patternSignal := patterns.ToSignal(candle.marks, lastIndex, candle.trend)
	psychologySignal := psychologyToSignal(chain.psychology)

	mlSignal := ml.Predict(o.classifier, featureRow(candle.frame, candle.marks, lastIndex))

	fusedSignal, action, contributions := fusion.Fuse(fusion.Inputs{
		ML:          mlSignal,
		Indicator:   indicatorSignal,
		Pattern:     patternSignal,
		Psychology:  &psychologySignal,
		RiskProfile: o.cfg.RiskProfile,
	})

	decision := models.Decision{
		Signal:        fusedSignal,
		Action:        action,
		Contributions: contributions,
		GeneratedAt:   time.Now(),
	}

	if action == models.ActionNone {
		decision.Lots = 0
		return decision
	}

	position := strategy.SizePosition(chain.snapshot, fusedSignal.Kind, chain.analysis.ATMStrike, fusedSignal.Confidence)
	expiry := fusion.NextWeeklyExpiry(decision.GeneratedAt, o.cfg.RiskProfile)

	decision.Strike = position.Strike
	decision.Expiry = expiry.Format("2006-01-02")
	decision.Entry = position.Premium
	decision.StopLoss = position.StopLoss
	decision.Target2 = position.Target
	decision.RiskReward = riskReward(position)
	decision.AdjustedConfidence = fusedSignal.Confidence

	decision.Lots = fusion.LotsForBalance(o.cfg.AccountBalance, o.cfg.RiskPerTrade, position.Premium, position.StopLoss, index)

	pass, reason := fusion.Gate(o.cfg.RiskProfile, fusion.GateInputs{
		RiskReward: decision.RiskReward,
		ATRPercent: candle.frame.Volatility.ATRPercent,
		ADX:        candle.frame.Trend.ADX,
	})
	if !pass {
		decision.RiskGateRejected = true
		decision.RiskGateReason = reason
		if decision.Action == models.ActionExecute {
			decision.Action = models.ActionSuggest
		}
	}

	return decision
}

func riskReward(p strategy.Position) float64 {
	risk := math.Abs(p.Premium - p.StopLoss)
	if risk == 0 {
		return 0
	}
	return math.Abs(p.Target-p.Premium) / risk
}

func psychologyToSignal(report models.PsychologyReport) models.Signal {
	confidence := math.Abs(report.Score-50) / 50
	switch report.ContrarianBias {
	case models.ContrarianBullish:
		return models.Signal{Kind: models.BuyCall, Confidence: confidence, Reason: "contrarian bullish psychology", Source: "psychology"}
	case models.ContrarianBearish:
		return models.Signal{Kind: models.BuyPut, Confidence: confidence, Reason: "contrarian bearish psychology", Source: "psychology"}
	default:
		return models.Signal{Kind: models.Wait, Confidence: confidence, Reason: "neutral psychology", Source: "psychology"}
	}
}

// logAndDispatch persists a trade record for an EXECUTE or SUGGEST action
// and hands the order payload to the dispatcher. A missing dispatcher (no
// broker wired, or credentials absent under ENABLE_REAL_TRADING)
// downgrades to logging only, never aborts the cycle.
func (o *Orchestrator) logAndDispatch(ctx context.Context, index models.Index, decision models.Decision, candle candlePipelineResult, chain chainPipelineResult, report *Report) {
	log := o.logger.With().Str("index", string(index)).Logger()

	entryTime := decision.GeneratedAt
	trade := models.TradeRecord{
		Index:            string(index),
		Signal:           decision.Kind,
		EntryTime:        entryTime,
		EntryPrice:       decision.Entry,
		Quantity:         decision.Lots * models.LotSize(index),
		Strike:           decision.Strike,
		Expiry:           decision.Expiry,
		StopLoss:         &decision.StopLoss,
		Target:           &decision.Target2,
		Confidence:       &decision.AdjustedConfidence,
		PatternsDetected: candle.marks.At(len(candle.frame.Candles) - 1),
	}
	psych := chain.psychology
	trade.Psychology = &psych

	tradeID, err := o.journal.Log(trade)
	if err != nil {
		log.Error().Err(err).Msg("failed to log trade")
		return
	}
	report.TradeID = tradeID
	o.journal.PersistPerformance(o.cfg.ReportDir)

	if o.dispatcher == nil {
		log.Info().Str("trade_id", tradeID).Msg("no dispatcher wired; decision logged only")
		return
	}
	if !o.cfg.RealTradingEnabled {
		log.Info().Str("trade_id", tradeID).Msg("real trading disabled; dispatcher will return a synthetic acknowledgement")
	}

	expiry, parseErr := time.Parse("2006-01-02", decision.Expiry)
	if parseErr != nil {
		expiry = entryTime
	}
	side := "CE"
	if decision.Kind == models.BuyPut {
		side = "PE"
	}
	orderSide := external.SideBuy

	ctx, cancel := context.WithTimeout(ctx, httpDeadline)
	defer cancel()

	ack, dispatchErr := o.dispatcher.PlaceOrder(ctx, external.Order{
		Symbol:      external.FormatSymbol(index, expiry, decision.Strike, side),
		Qty:         trade.Quantity,
		Side:        orderSide,
		Type:        external.OrderTypeMarket,
		ProductType: "INTRADAY",
		Validity:    "DAY",
	})
	if dispatchErr != nil {
		log.Warn().Err(dispatchErr).Str("trade_id", tradeID).Msg("order dispatch failed")
		return
	}
	log.Info().Str("trade_id", tradeID).Str("order_number", ack.OrderNumber).Str("status", ack.Status).Msg("order dispatched")
}

// CloseTrade applies an exit observation to an open trade, triggered
// separately from dispatch (e.g. a broker fill callback or a manual exit).
// It delegates to the journal's update semantics, which
// auto-computes pnl and sets status CLOSED once both exit fields are
// supplied.
func (o *Orchestrator) CloseTrade(tradeID string, exitTime time.Time, exitPrice float64) error {
	err := o.journal.Update(tradeID, models.TradePatch{ExitTime: &exitTime, ExitPrice: &exitPrice})
	if err != nil {
		return err
	}
	o.journal.PersistPerformance(o.cfg.ReportDir)
	return nil
}

func featureRow(frame *models.IndicatorFrame, marks *models.PatternMarks, lastIndex int) ml.FeatureRow {
	last := frame.Last()
	row := ml.FeatureRow{
		RSI:        frame.Momentum.RSI,
		MACD:       frame.Momentum.MACD,
		MACDSignal: frame.Momentum.MACDSignal,
	}
	if last != nil {
		row.Open, row.High, row.Low, row.Close = last.Open, last.High, last.Low, last.Close
		volume := float64(last.Volume)
		row.Volume = &volume
	}

	for _, id := range marks.At(lastIndex) {
		switch models.PatternDirections[id] {
		case models.DirectionBullish:
			row.BullishPattern = 1
		case models.DirectionBearish:
			row.BearishPattern = 1
		}
	}

	vwap := frame.Volume.VWAP
	row.VWAP = &vwap
	supertrendDir := float64(frame.Trend.SupertrendDirection)
	row.SupertrendDir = &supertrendDir
	atr := frame.Volatility.ATR
	row.ATR = &atr

	return row
}
