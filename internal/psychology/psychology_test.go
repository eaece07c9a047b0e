package psychology

import (
	"testing"

	"github.com/ridopark/options-engine/internal/models"
)

// pcr=1.6, OI-momentum Bearish, max-pain 5% above underlying, steep put
// skew average delta=8 vs call delta=3 -> score = 50-20-10+5-10 = 15 ->
// Extreme Fear; contrarian_bias = Bullish.
func TestAnalyze_BearishSkewScoresExtremeFear(t *testing.T) {
	underlying := 100.0
	analysis := models.ChainAnalysis{
		PCROI:    1.6,
		Momentum: models.MomentumBearish,
		MaxPain:  105, // 5% above underlying
		IVSkew: models.IVSkew{
			OTMPuts:  []models.IVLeg{{DeltaFromATM: 8}},
			OTMCalls: []models.IVLeg{{DeltaFromATM: 3}},
		},
	}

	report := Analyze(analysis, underlying)

	if report.Score != 15 {
		t.Fatalf("expected fear-greed score 15, got %v", report.Score)
	}
	if report.Bucket != models.ExtremeFear {
		t.Fatalf("expected Extreme Fear bucket, got %s", report.Bucket)
	}
	if report.ContrarianBias != models.ContrarianBullish {
		t.Fatalf("expected Bullish contrarian bias, got %s", report.ContrarianBias)
	}

	found := false
	for _, s := range report.ContrarianSignals {
		if s == "Potential Bullish Reversal" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a Potential Bullish Reversal contrarian signal, got %v", report.ContrarianSignals)
	}
}

func TestAnalyze_ScoreAlwaysWithinBounds(t *testing.T) {
	analysis := models.ChainAnalysis{
		PCROI:    2.0,
		Momentum: models.MomentumBearish,
		MaxPain:  50,
		IVSkew: models.IVSkew{
			OTMPuts:  []models.IVLeg{{DeltaFromATM: 20}},
			OTMCalls: []models.IVLeg{{DeltaFromATM: 1}},
		},
	}
	report := Analyze(analysis, 100)
	if report.Score < 0 || report.Score > 100 {
		t.Fatalf("expected score within [0,100], got %v", report.Score)
	}
}

func TestVolumeProfile_BiasThresholds(t *testing.T) {
	analysis := models.ChainAnalysis{
		TotalCEVolume: 300,
		TotalPEVolume: 100,
	}
	report := Analyze(analysis, 100)
	if report.VolumeProfile.Bias != models.VolumeBiasStrongCall {
		t.Fatalf("expected strong call dominance at ratio 3.0, got %s", report.VolumeProfile.Bias)
	}
}
