// Package strategy derives directional micro-signals from option-chain
// analytics, aggregates them into a single signal, sizes a position, and
// offers a set of parametrized options-strategy templates.
package strategy

import (
	"math"

	"github.com/ridopark/options-engine/internal/models"
)

type microSignal struct {
	kind       models.SignalKind
	confidence float64
}

// oiChangeClusterThreshold is the minimum change-in-OI at a single strike
// before it reads as resistance or support building there.
const oiChangeClusterThreshold = 100000

// microSignals evaluates the five fixed micro-signal rules against a
// ChainAnalysis, returning only those that fired. Call writing clustered
// above the underlying reads bearish (resistance building); put writing
// clustered below reads bullish (support building).
func microSignals(analysis models.ChainAnalysis, underlying float64) []microSignal {
	var signals []microSignal

	if analysis.PCROI > 1.5 {
		signals = append(signals, microSignal{models.BuyCall, 0.70})
	} else if analysis.PCROI < 0.5 {
		signals = append(signals, microSignal{models.BuyPut, 0.70})
	}

	if len(analysis.ChangeLevelsCE) > 0 {
		top := analysis.ChangeLevelsCE[0]
		if math.Abs(top.Value) > oiChangeClusterThreshold && top.Strike > underlying {
			signals = append(signals, microSignal{models.BuyPut, 0.65})
		}
	}
	if len(analysis.ChangeLevelsPE) > 0 {
		top := analysis.ChangeLevelsPE[0]
		if math.Abs(top.Value) > oiChangeClusterThreshold && top.Strike < underlying {
			signals = append(signals, microSignal{models.BuyCall, 0.65})
		}
	}

	if underlying != 0 {
		gapPercent := math.Abs(analysis.MaxPain-underlying) / underlying * 100
		if gapPercent > 1 {
			if analysis.MaxPain > underlying {
				signals = append(signals, microSignal{models.BuyCall, 0.60})
			} else {
				signals = append(signals, microSignal{models.BuyPut, 0.60})
			}
		}
	}

	avgPut := averageAbsDelta(analysis.IVSkew.OTMPuts)
	avgCall := averageAbsDelta(analysis.IVSkew.OTMCalls)
	if avgPut > 5 && avgPut > avgCall*1.5 {
		signals = append(signals, microSignal{models.BuyPut, 0.55})
	} else if avgCall > 5 && avgCall > avgPut*1.5 {
		signals = append(signals, microSignal{models.BuyCall, 0.55})
	}

	if analysis.TotalPEChange >= 500000 && analysis.TotalPEChange > analysis.TotalCEChange*2 {
		signals = append(signals, microSignal{models.BuyCall, 0.60})
	} else if analysis.TotalCEChange >= 500000 && analysis.TotalCEChange > analysis.TotalPEChange*2 {
		signals = append(signals, microSignal{models.BuyPut, 0.60})
	}

	return signals
}

func averageAbsDelta(legs []models.IVLeg) float64 {
	if len(legs) == 0 {
		return 0
	}
	total := 0.0
	for _, leg := range legs {
		total += math.Abs(leg.DeltaFromATM)
	}
	return total / float64(len(legs))
}

// Signal aggregates the five micro-signals: sum each side's confidence,
// divide by 5, and require the winning side to exceed 0.65 to emit a
// directional signal.
func Signal(analysis models.ChainAnalysis, underlying float64) models.Signal {
	signals := microSignals(analysis, underlying)

	callTotal, putTotal := 0.0, 0.0
	for _, s := range signals {
		switch s.kind {
		case models.BuyCall:
			callTotal += s.confidence
		case models.BuyPut:
			putTotal += s.confidence
		}
	}
	callScore := callTotal / 5
	putScore := putTotal / 5

	if callScore > putScore && callScore > 0.65 {
		return models.Signal{Kind: models.BuyCall, Confidence: callScore, Reason: "option-chain micro-signal basket bullish", Source: "strategy"}
	}
	if putScore > callScore && putScore > 0.65 {
		return models.Signal{Kind: models.BuyPut, Confidence: putScore, Reason: "option-chain micro-signal basket bearish", Source: "strategy"}
	}
	return models.Signal{Kind: models.Wait, Confidence: math.Max(callScore, putScore), Reason: "option-chain micro-signals inconclusive", Source: "strategy"}
}
