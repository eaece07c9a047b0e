package ml

import (
	"testing"

	"github.com/ridopark/options-engine/internal/models"
)

type stubClassifier struct {
	class         int
	confidence    float64
	hasConfidence bool
}

func (s stubClassifier) Predict(row FeatureRow) (int, float64, bool) {
	return s.class, s.confidence, s.hasConfidence
}

func TestPredict_FallbackOversoldBullish(t *testing.T) {
	signal := Predict(nil, FeatureRow{RSI: 25, MACD: 1.0, MACDSignal: 0.5})
	if signal.Kind != models.BuyCall || signal.Confidence != 0.7 {
		t.Fatalf("expected fallback BUY CALL at 0.7, got %+v", signal)
	}
}

func TestPredict_FallbackOverboughtBearish(t *testing.T) {
	signal := Predict(nil, FeatureRow{RSI: 75, MACD: 0.5, MACDSignal: 1.0})
	if signal.Kind != models.BuyPut || signal.Confidence != 0.7 {
		t.Fatalf("expected fallback BUY PUT at 0.7, got %+v", signal)
	}
}

func TestPredict_FallbackNoEdgeWaits(t *testing.T) {
	signal := Predict(nil, FeatureRow{RSI: 50, MACD: 0.5, MACDSignal: 0.5})
	if signal.Kind != models.Wait || signal.Confidence != 0.5 {
		t.Fatalf("expected fallback WAIT at 0.5, got %+v", signal)
	}
}

func TestPredict_ClassifierWithoutConfidenceDefaultsTo0_7(t *testing.T) {
	signal := Predict(stubClassifier{class: 1, hasConfidence: false}, FeatureRow{})
	if signal.Kind != models.BuyCall || signal.Confidence != 0.7 {
		t.Fatalf("expected BUY CALL at default 0.7 confidence, got %+v", signal)
	}
}

func TestPredict_ClassifierWithConfidence(t *testing.T) {
	signal := Predict(stubClassifier{class: -1, confidence: 0.93, hasConfidence: true}, FeatureRow{})
	if signal.Kind != models.BuyPut || signal.Confidence != 0.93 {
		t.Fatalf("expected BUY PUT at 0.93 confidence, got %+v", signal)
	}
}

func TestFeatureRow_ValuesOrdersOptionalColumns(t *testing.T) {
	volume := 1000.0
	vwap := 99.5
	row := FeatureRow{Open: 1, High: 2, Low: 0.5, Close: 1.5, RSI: 40, MACD: 0.1, MACDSignal: 0.2, Volume: &volume, VWAP: &vwap}

	values := row.Values()
	want := []float64{1, 2, 0.5, 1.5, 0, 0, 40, 0.1, 0.2, 1000, 99.5}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d: %v", len(want), len(values), values)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("value %d: expected %v, got %v", i, want[i], values[i])
		}
	}
}
