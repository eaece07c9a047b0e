// Package psychology derives market-sentiment readings from a ChainAnalysis.
package psychology

import (
	"fmt"
	"math"

	"github.com/ridopark/options-engine/internal/models"
)

const largeOIChangeThreshold = 200000

// Analyze derives a PsychologyReport from a single ChainAnalysis snapshot.
// The report is an immutable value; it never points back to the snapshot.
func Analyze(analysis models.ChainAnalysis, underlying float64) models.PsychologyReport {
	score := 50.0

	switch {
	case analysis.PCROI > 1.5:
		score -= 20
	case analysis.PCROI < 0.5:
		score += 20
	case analysis.PCROI > 1.2:
		score -= 10
	case analysis.PCROI < 0.8:
		score += 10
	}

	if analysis.Momentum == models.MomentumBullish {
		score += 10
	} else {
		score -= 10
	}

	if underlying != 0 {
		gapPercent := (analysis.MaxPain - underlying) / underlying * 100
		if math.Abs(gapPercent) > 1 {
			if gapPercent > 0 {
				score += 5
			} else {
				score -= 5
			}
		}
	}

	avgOTMPutDelta := averageDelta(analysis.IVSkew.OTMPuts)
	avgOTMCallDelta := averageDelta(analysis.IVSkew.OTMCalls)
	if avgOTMPutDelta > avgOTMCallDelta*1.5 {
		score -= 10
	} else if avgOTMCallDelta > avgOTMPutDelta*1.5 {
		score += 10
	}

	score = clamp(score, 0, 100)

	report := models.PsychologyReport{
		Score:          score,
		Bucket:         bucket(score),
		ContrarianBias: contrarianBias(score),
		VolumeProfile:  volumeProfile(analysis),
	}
	report.SmartMoneySigns = smartMoneySigns(analysis, underlying)
	report.ContrarianSignals = contrarianSignals(analysis, score)

	return report
}

func averageDelta(legs []models.IVLeg) float64 {
	if len(legs) == 0 {
		return 0
	}
	total := 0.0
	for _, leg := range legs {
		total += math.Abs(leg.DeltaFromATM)
	}
	return total / float64(len(legs))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func bucket(score float64) models.FearGreedBucket {
	switch {
	case score <= 15:
		return models.ExtremeFear
	case score < 30:
		return models.Fear
	case score < 45:
		return models.NeutralBearish
	case score < 60:
		return models.NeutralBullish
	case score < 75:
		return models.Greed
	default:
		return models.ExtremeGreed
	}
}

func contrarianBias(score float64) models.ContrarianBias {
	switch {
	case score < 30:
		return models.ContrarianBullish
	case score > 70:
		return models.ContrarianBearish
	default:
		return models.ContrarianNeutral
	}
}

func smartMoneySigns(analysis models.ChainAnalysis, underlying float64) []string {
	var signs []string

	for _, level := range analysis.ChangeLevelsCE {
		if math.Abs(level.Value) >= largeOIChangeThreshold {
			signs = append(signs, fmt.Sprintf("large call OI change at strike %.0f", level.Strike))
		}
	}
	for _, level := range analysis.ChangeLevelsPE {
		if math.Abs(level.Value) >= largeOIChangeThreshold {
			signs = append(signs, fmt.Sprintf("large put OI change at strike %.0f", level.Strike))
		}
	}

	avgOTMPutDelta := averageDelta(analysis.IVSkew.OTMPuts)
	avgOTMCallDelta := averageDelta(analysis.IVSkew.OTMCalls)
	if avgOTMPutDelta > avgOTMCallDelta*1.5 {
		signs = append(signs, "steep put IV skew")
	}

	for _, level := range analysis.PutSupport {
		if level.Strike < underlying && level.Value >= largeOIChangeThreshold {
			signs = append(signs, fmt.Sprintf("big put-support block below price at %.0f", level.Strike))
		}
	}
	for _, level := range analysis.CallResistance {
		if level.Strike > underlying && level.Value >= largeOIChangeThreshold {
			signs = append(signs, fmt.Sprintf("big call-resistance block above price at %.0f", level.Strike))
		}
	}

	return signs
}

func contrarianSignals(analysis models.ChainAnalysis, score float64) []string {
	var signals []string
	if score < 30 {
		signals = append(signals, "Potential Bullish Reversal")
	}
	if score > 70 {
		signals = append(signals, "Potential Bearish Reversal")
	}
	if analysis.PCROI > 1.5 {
		signals = append(signals, "elevated PCR suggests crowded put positioning")
	}
	if analysis.PCROI < 0.5 {
		signals = append(signals, "depressed PCR suggests crowded call positioning")
	}
	return signals
}

// volumeProfile bins call/put volume (approximated from OI when no traded
// volume is present) into one of seven ratio-threshold biases.
func volumeProfile(analysis models.ChainAnalysis) models.VolumeProfileMetrics {
	callVolume := analysis.TotalCEVolume
	putVolume := analysis.TotalPEVolume
	if callVolume == 0 && putVolume == 0 {
		callVolume = analysis.TotalCEOI
		putVolume = analysis.TotalPEOI
	}

	// Denominator floored at one contract so a one-sided book yields a
	// large finite ratio instead of +Inf, which json cannot encode.
	ratio := callVolume / math.Max(putVolume, 1)

	var bias models.VolumeProfileBias
	switch {
	case ratio > 2.0:
		bias = models.VolumeBiasStrongCall
	case ratio > 1.5:
		bias = models.VolumeBiasCall
	case ratio > 1.0:
		bias = models.VolumeBiasMildCall
	case ratio > 0.7:
		bias = models.VolumeBiasBalanced
	case ratio > 0.5:
		bias = models.VolumeBiasMildPut
	case ratio > 0.3:
		bias = models.VolumeBiasPut
	default:
		bias = models.VolumeBiasStrongPut
	}

	return models.VolumeProfileMetrics{
		CallVolume: callVolume,
		PutVolume:  putVolume,
		Ratio:      ratio,
		Bias:       bias,
	}
}
