package strategy

import (
	"testing"

	"github.com/ridopark/options-engine/internal/models"
)

func sampleSnapshot() *models.OptionChainSnapshot {
	return &models.OptionChainSnapshot{
		Underlying: 22500,
		Strikes: []models.StrikeRow{
			{Strike: 22400, CE: models.Leg{LTP: 150, IV: 14}, PE: models.Leg{LTP: 40, IV: 18}},
			{Strike: 22450, CE: models.Leg{LTP: 110, IV: 14.5}, PE: models.Leg{LTP: 55, IV: 18.5}},
			{Strike: 22500, CE: models.Leg{LTP: 80, IV: 15}, PE: models.Leg{LTP: 75, IV: 19}},
			{Strike: 22550, CE: models.Leg{LTP: 55, IV: 15.5}, PE: models.Leg{LTP: 105, IV: 19.5}},
			{Strike: 22600, CE: models.Leg{LTP: 35, IV: 16}, PE: models.Leg{LTP: 140, IV: 20}},
		},
	}
}

// PCR > 1.5 alone fires one bullish micro-signal, which is too weak to
// clear the 0.65 aggregate threshold, so the basket WAITs.
func TestSignal_PCRExtremeAloneStaysBelowThreshold(t *testing.T) {
	analysis := models.ChainAnalysis{PCROI: 1.8}
	signal := Signal(analysis, 22500)
	if signal.Kind != models.Wait {
		t.Fatalf("a single 0.70-confidence micro-signal (0.70/5=0.14) should not clear the 0.65 aggregate threshold alone, got %s", signal.Kind)
	}
}

// Even with every one of the five micro-signals firing unanimously bullish
// (0.70+0.65+0.60+0.55+0.60=3.10, normalized 3.10/5=0.62), the aggregate
// stays under the 0.65 directional threshold, so the basket still WAITs.
func TestSignal_UnanimousBullishBasketStillBelowThreshold(t *testing.T) {
	analysis := models.ChainAnalysis{
		PCROI:          1.8,
		MaxPain:        22800,
		TotalCEChange:  100000,
		TotalPEChange:  900000,
		ChangeLevelsPE: []models.KeyLevel{{Strike: 22400, Value: 250000}},
		IVSkew: models.IVSkew{
			OTMCalls: []models.IVLeg{{DeltaFromATM: 6}},
			OTMPuts:  []models.IVLeg{{DeltaFromATM: 2}},
		},
	}
	signal := Signal(analysis, 22500)
	if signal.Kind != models.Wait {
		t.Fatalf("expected WAIT: normalized basket confidence tops out at 0.62, got %s (confidence %v)", signal.Kind, signal.Confidence)
	}
	if signal.Confidence < 0.6 || signal.Confidence > 0.65 {
		t.Fatalf("expected the unanimous-bullish basket score near 0.62, got %v", signal.Confidence)
	}
}

func TestSignal_BelowThresholdWaits(t *testing.T) {
	analysis := models.ChainAnalysis{PCROI: 1.0}
	signal := Signal(analysis, 22500)
	if signal.Kind != models.Wait {
		t.Fatalf("expected WAIT with no micro-signal basket clearing 0.65, got %s", signal.Kind)
	}
}

func TestSizePosition_StrikeSelectionAndLotScaling(t *testing.T) {
	snapshot := sampleSnapshot()

	callPosition := SizePosition(snapshot, models.BuyCall, 22500, 0.85)
	if callPosition.Strike != 22450 {
		t.Fatalf("expected BUY CALL to pick the strike one step toward the money (22450), got %v", callPosition.Strike)
	}
	if callPosition.Lots != 3 {
		t.Fatalf("expected 3 lots at confidence 0.85, got %d", callPosition.Lots)
	}

	putPosition := SizePosition(snapshot, models.BuyPut, 22500, 0.5)
	if putPosition.Strike != 22550 {
		t.Fatalf("expected BUY PUT to pick the strike one step away from the money (22550), got %v", putPosition.Strike)
	}
	if putPosition.Lots != 1 {
		t.Fatalf("expected 1 lot at confidence 0.5, got %d", putPosition.Lots)
	}
}

func TestBullCallSpread_SelectsPositiveRiskRewardPair(t *testing.T) {
	plan := BullCallSpread(sampleSnapshot(), 22500)
	if len(plan.Legs) != 2 {
		t.Fatalf("expected a two-leg vertical spread, got %d legs", len(plan.Legs))
	}
	if plan.MaxLoss <= 0 || plan.MaxProfit <= 0 {
		t.Fatalf("expected positive max profit and max loss, got profit=%v loss=%v", plan.MaxProfit, plan.MaxLoss)
	}
}

func TestStraddle_PicksMinimumCombinedIV(t *testing.T) {
	plan := Straddle(sampleSnapshot())
	if plan.Legs[0].Strike != 22400 {
		t.Fatalf("expected the straddle to pick strike 22400 (min CE_IV+PE_IV=32), got %v", plan.Legs[0].Strike)
	}
}
