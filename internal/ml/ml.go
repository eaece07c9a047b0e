// Package ml adapts the fixed feature-row contract to an external
// classifier artifact, with a documented rule-based fallback when no
// artifact is configured.
package ml

import "github.com/ridopark/options-engine/internal/models"

// FeatureRow is the fixed-order input row a classifier artifact consumes.
type FeatureRow struct {
	Open            float64
	High            float64
	Low             float64
	Close           float64
	BullishPattern  float64 // 0/1
	BearishPattern  float64 // 0/1
	RSI             float64
	MACD            float64
	MACDSignal      float64
	Volume          *float64
	VWAP            *float64
	SupertrendDir   *float64
	ATR             *float64
}

// Values returns the feature row flattened into the fixed column order:
// open, high, low, close, bullish_pattern, bearish_pattern, rsi, macd,
// macd_signal, volume (if present), then any of {vwap, supertrend_direction,
// atr} present.
func (r FeatureRow) Values() []float64 {
	values := []float64{r.Open, r.High, r.Low, r.Close, r.BullishPattern, r.BearishPattern, r.RSI, r.MACD, r.MACDSignal}
	if r.Volume != nil {
		values = append(values, *r.Volume)
	}
	if r.VWAP != nil {
		values = append(values, *r.VWAP)
	}
	if r.SupertrendDir != nil {
		values = append(values, *r.SupertrendDir)
	}
	if r.ATR != nil {
		values = append(values, *r.ATR)
	}
	return values
}

// Classifier is the narrow interface a deployed model artifact must
// satisfy: predict a class in {-1, 0, +1} plus a probability when the
// artifact exposes one.
type Classifier interface {
	Predict(row FeatureRow) (class int, confidence float64, hasConfidence bool)
}

// Predict runs classifier against row when present, mapping its output
// class to a Signal. When classifier is nil it falls back to the
// documented rule: RSI<30 & MACD>signal -> BUY CALL 0.7; RSI>70 & MACD<
// signal -> BUY PUT 0.7; else WAIT 0.5.
func Predict(classifier Classifier, row FeatureRow) models.Signal {
	if classifier != nil {
		class, confidence, hasConfidence := classifier.Predict(row)
		if !hasConfidence {
			confidence = 0.7
		}
		return models.Signal{Kind: classFromInt(class), Confidence: confidence, Reason: "classifier artifact", Source: "ml"}
	}

	switch {
	case row.RSI < 30 && row.MACD > row.MACDSignal:
		return models.Signal{Kind: models.BuyCall, Confidence: 0.7, Reason: "fallback rule: oversold with bullish MACD", Source: "ml"}
	case row.RSI > 70 && row.MACD < row.MACDSignal:
		return models.Signal{Kind: models.BuyPut, Confidence: 0.7, Reason: "fallback rule: overbought with bearish MACD", Source: "ml"}
	default:
		return models.Signal{Kind: models.Wait, Confidence: 0.5, Reason: "fallback rule: no edge", Source: "ml"}
	}
}

func classFromInt(class int) models.SignalKind {
	switch class {
	case 1:
		return models.BuyCall
	case -1:
		return models.BuyPut
	default:
		return models.Wait
	}
}
