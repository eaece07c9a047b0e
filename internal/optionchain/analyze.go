package optionchain

import (
	"math"
	"sort"

	"github.com/ridopark/options-engine/internal/models"
)

// Analyze computes every deterministic option-chain metric over a snapshot.
func Analyze(snapshot *models.OptionChainSnapshot) models.ChainAnalysis {
	var analysis models.ChainAnalysis
	if len(snapshot.Strikes) == 0 {
		return analysis
	}

	for _, row := range snapshot.Strikes {
		analysis.TotalCEOI += row.CE.OpenInterest
		analysis.TotalPEOI += row.PE.OpenInterest
		analysis.TotalCEChange += row.CE.ChangeInOI
		analysis.TotalPEChange += row.PE.ChangeInOI
	}

	analysis.PCROI = ratio(analysis.TotalPEOI, analysis.TotalCEOI)

	for _, row := range snapshot.Strikes {
		analysis.TotalCEVolume += row.CE.Volume
		analysis.TotalPEVolume += row.PE.Volume
	}
	analysis.PCRVolume = ratio(analysis.TotalPEVolume, analysis.TotalCEVolume)

	analysis.ATMStrike = atmStrike(snapshot)
	analysis.MaxPain = maxPain(snapshot)

	analysis.StrikeBandCallOI, analysis.StrikeBandPutOI, analysis.StrikeBandMaxCall, analysis.StrikeBandMaxPut = strikeBand(snapshot)

	analysis.IVSkew = ivSkew(snapshot, analysis.ATMStrike)

	analysis.PutSupport = topN(snapshot, 3, func(r models.StrikeRow) float64 { return r.PE.OpenInterest })
	analysis.CallResistance = topN(snapshot, 3, func(r models.StrikeRow) float64 { return r.CE.OpenInterest })
	analysis.ChangeLevelsCE = topN(snapshot, 3, func(r models.StrikeRow) float64 { return math.Abs(r.CE.ChangeInOI) })
	analysis.ChangeLevelsPE = topN(snapshot, 3, func(r models.StrikeRow) float64 { return math.Abs(r.PE.ChangeInOI) })

	if analysis.TotalPEChange > analysis.TotalCEChange {
		analysis.Momentum = models.MomentumBullish
	} else {
		analysis.Momentum = models.MomentumBearish
	}

	return analysis
}

func ratio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return round2(numerator / denominator)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// atmStrike returns the strike closest to the underlying; ties resolve to
// the lower strike.
func atmStrike(snapshot *models.OptionChainSnapshot) float64 {
	best := snapshot.Strikes[0].Strike
	bestDiff := math.Abs(best - snapshot.Underlying)
	for _, row := range snapshot.Strikes[1:] {
		diff := math.Abs(row.Strike - snapshot.Underlying)
		if diff < bestDiff || (diff == bestDiff && row.Strike < best) {
			best = row.Strike
			bestDiff = diff
		}
	}
	return best
}

// maxPain returns the strike minimizing the unsigned option-writer pain
// function, tie-breaking to the lowest strike.
func maxPain(snapshot *models.OptionChainSnapshot) float64 {
	strikes := snapshot.Strikes
	bestStrike := strikes[0].Strike
	bestPain := math.Inf(1)

	for _, candidate := range strikes {
		pain := 0.0
		for _, row := range strikes {
			if row.Strike < candidate.Strike {
				pain += row.CE.OpenInterest * math.Max(0, candidate.Strike-row.Strike)
			} else if row.Strike > candidate.Strike {
				pain += row.PE.OpenInterest * math.Max(0, row.Strike-candidate.Strike)
			}
		}
		pain = math.Abs(pain)
		if pain < bestPain || (pain == bestPain && candidate.Strike < bestStrike) {
			bestPain = pain
			bestStrike = candidate.Strike
		}
	}
	return bestStrike
}

// strikeBand sums CE/PE OI within ±5% of the underlying and finds the
// strike with the maximum OI on each side within that band.
func strikeBand(snapshot *models.OptionChainSnapshot) (callOI, putOI, maxCallStrike, maxPutStrike float64) {
	lo := snapshot.Underlying * 0.95
	hi := snapshot.Underlying * 1.05

	maxCall, maxPut := -1.0, -1.0
	for _, row := range snapshot.Strikes {
		if row.Strike < lo || row.Strike > hi {
			continue
		}
		callOI += row.CE.OpenInterest
		putOI += row.PE.OpenInterest
		if row.CE.OpenInterest > maxCall {
			maxCall = row.CE.OpenInterest
			maxCallStrike = row.Strike
		}
		if row.PE.OpenInterest > maxPut {
			maxPut = row.PE.OpenInterest
			maxPutStrike = row.Strike
		}
	}
	return callOI, putOI, maxCallStrike, maxPutStrike
}

// ivSkew builds the ATM IV pair plus up to three OTM legs on each side.
func ivSkew(snapshot *models.OptionChainSnapshot, atm float64) models.IVSkew {
	var skew models.IVSkew
	var atmCall, atmPut float64

	for _, row := range snapshot.Strikes {
		if row.Strike == atm {
			atmCall = row.CE.IV
			atmPut = row.PE.IV
			break
		}
	}
	skew.ATMCallIV = atmCall
	skew.ATMPutIV = atmPut

	for _, row := range snapshot.Strikes {
		if row.Strike > atm && len(skew.OTMCalls) < 3 {
			skew.OTMCalls = append(skew.OTMCalls, models.IVLeg{
				Strike:       row.Strike,
				IV:           row.CE.IV,
				DeltaFromATM: row.CE.IV - atmCall,
			})
		}
	}

	for i := len(snapshot.Strikes) - 1; i >= 0; i-- {
		row := snapshot.Strikes[i]
		if row.Strike < atm && len(skew.OTMPuts) < 3 {
			skew.OTMPuts = append(skew.OTMPuts, models.IVLeg{
				Strike:       row.Strike,
				IV:           row.PE.IV,
				DeltaFromATM: row.PE.IV - atmPut,
			})
		}
	}

	return skew
}

func topN(snapshot *models.OptionChainSnapshot, n int, value func(models.StrikeRow) float64) []models.KeyLevel {
	levels := make([]models.KeyLevel, 0, len(snapshot.Strikes))
	for _, row := range snapshot.Strikes {
		levels = append(levels, models.KeyLevel{Strike: row.Strike, Value: value(row)})
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].Value > levels[j].Value })
	if len(levels) > n {
		levels = levels[:n]
	}
	return levels
}
