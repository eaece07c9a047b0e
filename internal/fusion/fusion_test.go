package fusion

import (
	"testing"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

func TestFuse_UnanimousBuyCallBoostsConfidenceAndExecutes(t *testing.T) {
	in := Inputs{
		ML:          models.Signal{Kind: models.BuyCall, Confidence: 0.8},
		Indicator:   models.Signal{Kind: models.BuyCall, Confidence: 0.8},
		Pattern:     models.Signal{Kind: models.BuyCall, Confidence: 0.8},
		RiskProfile: models.Moderate,
	}

	signal, action, breakdown := Fuse(in)
	if signal.Kind != models.BuyCall {
		t.Fatalf("expected BUY CALL, got %s", signal.Kind)
	}
	if signal.Confidence < 0.9-1e-9 || signal.Confidence > 0.9+1e-9 {
		t.Fatalf("expected unanimity-boosted confidence 0.9, got %v", signal.Confidence)
	}
	if action != models.ActionExecute {
		t.Fatalf("expected EXECUTE TRADE at 0.9 confidence, got %s", action)
	}
	if len(breakdown) != 3 {
		t.Fatalf("expected 3 contributions without psychology, got %d", len(breakdown))
	}
}

func TestFuse_DisagreementMajorityWaitTakesNoAction(t *testing.T) {
	in := Inputs{
		ML:          models.Signal{Kind: models.BuyCall, Confidence: 0.9},
		Indicator:   models.Signal{Kind: models.Wait, Confidence: 0.9},
		Pattern:     models.Signal{Kind: models.Wait, Confidence: 0.9},
		RiskProfile: models.Moderate,
	}

	signal, action, _ := Fuse(in)
	if signal.Kind != models.Wait {
		t.Fatalf("expected WAIT to win on majority agreement, got %s", signal.Kind)
	}
	if action != models.ActionNone {
		t.Fatalf("expected NO ACTION for a WAIT signal, got %s", action)
	}
}

func TestFuse_PsychologyRenormalizesWeights(t *testing.T) {
	bull := models.Signal{Kind: models.BuyCall, Confidence: 1.0}
	in := Inputs{
		ML:          bull,
		Indicator:   bull,
		Pattern:     bull,
		Psychology:  &bull,
		RiskProfile: models.Moderate,
	}

	signal, action, breakdown := Fuse(in)
	if signal.Kind != models.BuyCall {
		t.Fatalf("expected BUY CALL, got %s", signal.Kind)
	}
	if signal.Confidence != 0.98 {
		t.Fatalf("expected confidence capped at 0.98, got %v", signal.Confidence)
	}
	if action != models.ActionExecute {
		t.Fatalf("expected EXECUTE TRADE, got %s", action)
	}
	if len(breakdown) != 4 {
		t.Fatalf("expected 4 contributions with psychology present, got %d", len(breakdown))
	}
}

// ml BUY CALL 0.7 and indicator BUY CALL 0.8 with pattern absent under the
// moderate profile: the two present weights renormalize to 0.5/0.5, the
// weighted score is 0.75, and the agreement boost lifts it to 0.85 -- at or
// above the 0.75 threshold, so the decision executes at 2 lots.
func TestFuse_AbsentPatternRenormalizesAndBoosts(t *testing.T) {
	in := Inputs{
		ML:          models.Signal{Kind: models.BuyCall, Confidence: 0.7},
		Indicator:   models.Signal{Kind: models.BuyCall, Confidence: 0.8},
		RiskProfile: models.Moderate,
	}

	signal, action, breakdown := Fuse(in)
	if signal.Kind != models.BuyCall {
		t.Fatalf("expected BUY CALL, got %s", signal.Kind)
	}
	if signal.Confidence < 0.849 || signal.Confidence > 0.851 {
		t.Fatalf("expected boosted confidence 0.85, got %v", signal.Confidence)
	}
	if action != models.ActionExecute {
		t.Fatalf("expected EXECUTE TRADE at 0.85 >= 0.75, got %s", action)
	}
	if len(breakdown) != 2 {
		t.Fatalf("expected 2 contributions with pattern absent, got %d", len(breakdown))
	}
	for _, c := range breakdown {
		if c.Weight != 0.5 {
			t.Fatalf("expected the two present weights renormalized to 0.5, got %v", c.Weight)
		}
	}
	if lots := LotsByConfidence(signal.Confidence); lots != 2 {
		t.Fatalf("expected 2 lots at 0.85 confidence, got %d", lots)
	}
}

// Three-way unanimity must leave the final confidence no lower than the
// strongest component plus the 0.10 boost, capped at 0.98.
func TestFuse_UnanimityLiftsToStrongestComponent(t *testing.T) {
	in := Inputs{
		ML:          models.Signal{Kind: models.BuyPut, Confidence: 0.9},
		Indicator:   models.Signal{Kind: models.BuyPut, Confidence: 0.5},
		Pattern:     models.Signal{Kind: models.BuyPut, Confidence: 0.5},
		RiskProfile: models.Moderate,
	}

	signal, _, _ := Fuse(in)
	if signal.Kind != models.BuyPut {
		t.Fatalf("expected BUY PUT, got %s", signal.Kind)
	}
	if signal.Confidence != 0.98 {
		t.Fatalf("expected max component 0.9 + 0.10 capped at 0.98, got %v", signal.Confidence)
	}
}

func TestLotsByConfidence(t *testing.T) {
	cases := []struct {
		confidence float64
		want       int
	}{
		{0.95, 3},
		{0.85, 2},
		{0.5, 1},
	}
	for _, c := range cases {
		if got := LotsByConfidence(c.confidence); got != c.want {
			t.Errorf("LotsByConfidence(%v) = %d, want %d", c.confidence, got, c.want)
		}
	}
}

func TestGate_RejectsOnEachBound(t *testing.T) {
	pass, reason := Gate(models.Conservative, GateInputs{RiskReward: 1.0, ATRPercent: 1.0, ADX: 30})
	if pass || reason != "risk_reward below profile minimum" {
		t.Fatalf("expected risk/reward rejection, got pass=%v reason=%q", pass, reason)
	}

	pass, reason = Gate(models.Conservative, GateInputs{RiskReward: 3.0, ATRPercent: 3.0, ADX: 30})
	if pass || reason != "volatility exceeds profile maximum" {
		t.Fatalf("expected volatility rejection, got pass=%v reason=%q", pass, reason)
	}

	pass, reason = Gate(models.Conservative, GateInputs{RiskReward: 3.0, ATRPercent: 1.0, ADX: 5})
	if pass || reason != "trend strength below profile minimum" {
		t.Fatalf("expected ADX rejection, got pass=%v reason=%q", pass, reason)
	}

	pass, _ = Gate(models.Conservative, GateInputs{RiskReward: 3.0, ATRPercent: 1.0, ADX: 30})
	if !pass {
		t.Fatalf("expected a trade within every bound to pass the gate")
	}
}

func TestLotsForBalance_FloorsAndFloorsAtOne(t *testing.T) {
	lots := LotsForBalance(100000, 0.01, 100, 90, models.NIFTY)
	// risk budget = 1000, per-lot risk = 10*50 = 500 -> 2 lots
	if lots != 2 {
		t.Fatalf("expected 2 lots, got %d", lots)
	}

	lots = LotsForBalance(1000, 0.01, 100, 0, models.NIFTY)
	if lots != 1 {
		t.Fatalf("expected the floor of 1 lot for an undersized budget, got %d", lots)
	}
}

func TestNextWeeklyExpiry_RollsOverNearExpiry(t *testing.T) {
	// Wednesday, one day before Thursday expiry: inside the moderate
	// 2-day rollover window, so it should roll to the following Thursday.
	wednesday := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	expiry := NextWeeklyExpiry(wednesday, models.Moderate)
	if expiry.Weekday() != time.Thursday {
		t.Fatalf("expected a Thursday expiry, got %s", expiry.Weekday())
	}
	if !expiry.After(time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected rollover to the week after the nearest Thursday, got %s", expiry)
	}
}
