package optionchain

import (
	"testing"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

func snapshotOf(underlying float64, strikes []float64, ceOI, peOI []float64) *models.OptionChainSnapshot {
	rows := make([]models.StrikeRow, len(strikes))
	for i, strike := range strikes {
		rows[i] = models.StrikeRow{
			Strike: strike,
			CE:     models.Leg{OpenInterest: ceOI[i]},
			PE:     models.Leg{OpenInterest: peOI[i]},
		}
	}
	return &models.OptionChainSnapshot{
		Underlying: underlying,
		FetchedAt:  time.Now(),
		Expiry:     "2025-01-09",
		Strikes:    rows,
	}
}

// strikes {100,105,110,115,120}, CE_OI={30,40,50,20,10},
// PE_OI={5,10,60,50,40}, underlying=110 -> pcr_oi = 165/150 = 1.10.
func TestAnalyze_PCROIOverFiveStrikes(t *testing.T) {
	snapshot := snapshotOf(110,
		[]float64{100, 105, 110, 115, 120},
		[]float64{30, 40, 50, 20, 10},
		[]float64{5, 10, 60, 50, 40})

	analysis := Analyze(snapshot)

	if analysis.PCROI != 1.10 {
		t.Fatalf("expected pcr_oi 1.10, got %v", analysis.PCROI)
	}
	if analysis.ATMStrike != 110 {
		t.Fatalf("expected ATM strike 110, got %v", analysis.ATMStrike)
	}
}

// With no change-in-OI supplied (all zero), momentum ties to Bearish,
// not Bullish.
func TestAnalyze_MomentumTieBreaksBearish(t *testing.T) {
	snapshot := snapshotOf(110,
		[]float64{100, 105, 110, 115, 120},
		[]float64{30, 40, 50, 20, 10},
		[]float64{5, 10, 60, 50, 40})

	analysis := Analyze(snapshot)

	if analysis.Momentum != models.MomentumBearish {
		t.Fatalf("expected momentum tie to default Bearish, got %s", analysis.Momentum)
	}
}

func TestAnalyze_MomentumBullishWhenPEChangeExceedsCE(t *testing.T) {
	snapshot := snapshotOf(110, []float64{100, 110}, []float64{10, 10}, []float64{10, 10})
	snapshot.Strikes[0].PE.ChangeInOI = 600000
	snapshot.Strikes[1].CE.ChangeInOI = 100000

	analysis := Analyze(snapshot)

	if analysis.Momentum != models.MomentumBullish {
		t.Fatalf("expected Bullish momentum when PE change dominates, got %s", analysis.Momentum)
	}
}

// Invariant: pcr_oi is 0 when total CE OI is 0, never a division artifact.
func TestAnalyze_PCROIZeroDenominator(t *testing.T) {
	snapshot := snapshotOf(100, []float64{100}, []float64{0}, []float64{50})
	analysis := Analyze(snapshot)
	if analysis.PCROI != 0 {
		t.Fatalf("expected pcr_oi 0 with zero CE OI, got %v", analysis.PCROI)
	}
}

// Invariant: max_pain is always a strike present in the snapshot, and is
// unaffected by a ±1-strike-step move in underlying when OI is unchanged.
func TestAnalyze_MaxPainStableUnderUnderlyingShift(t *testing.T) {
	strikes := []float64{100, 105, 110, 115, 120}
	ceOI := []float64{30, 40, 50, 20, 10}
	peOI := []float64{5, 10, 60, 50, 40}

	a1 := Analyze(snapshotOf(110, strikes, ceOI, peOI))
	a2 := Analyze(snapshotOf(115, strikes, ceOI, peOI))

	if a1.MaxPain != a2.MaxPain {
		t.Fatalf("expected max_pain stable across underlying shift, got %v vs %v", a1.MaxPain, a2.MaxPain)
	}

	found := false
	for _, s := range strikes {
		if s == a1.MaxPain {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected max_pain %v to be a strike present in the snapshot", a1.MaxPain)
	}
}

func TestAnalyze_KeyLevelsAndIVSkew(t *testing.T) {
	snapshot := snapshotOf(110,
		[]float64{100, 105, 110, 115, 120},
		[]float64{30, 40, 50, 20, 10},
		[]float64{5, 10, 60, 50, 40})
	for i := range snapshot.Strikes {
		snapshot.Strikes[i].CE.IV = 15 + float64(i)
		snapshot.Strikes[i].PE.IV = 18 + float64(i)
	}

	analysis := Analyze(snapshot)

	if len(analysis.PutSupport) == 0 || analysis.PutSupport[0].Strike != 110 {
		t.Fatalf("expected top put-support strike 110 (PE OI 60), got %+v", analysis.PutSupport)
	}
	if len(analysis.CallResistance) == 0 || analysis.CallResistance[0].Strike != 110 {
		t.Fatalf("expected top call-resistance strike 110 (CE OI 50), got %+v", analysis.CallResistance)
	}
	if len(analysis.IVSkew.OTMCalls) != 2 || len(analysis.IVSkew.OTMPuts) != 2 {
		t.Fatalf("expected 2 OTM calls and 2 OTM puts around ATM 110, got calls=%d puts=%d",
			len(analysis.IVSkew.OTMCalls), len(analysis.IVSkew.OTMPuts))
	}
}
