// Package fusion combines the ml, indicator, pattern, and psychology
// signals into one risk-scaled decision.
package fusion

import (
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

type weights struct {
	ml, indicator, pattern, threshold float64
}

var profileWeights = map[models.RiskProfile]weights{
	models.Conservative: {ml: 0.3, indicator: 0.5, pattern: 0.2, threshold: 0.80},
	models.Moderate:     {ml: 0.4, indicator: 0.4, pattern: 0.2, threshold: 0.75},
	models.Aggressive:   {ml: 0.5, indicator: 0.3, pattern: 0.2, threshold: 0.65},
}

// riskGate bounds the minimum risk/reward, maximum ATR% volatility, and
// minimum ADX per profile, indexed in the same {conservative, moderate,
// aggressive} order as the weight table.
var riskGateBounds = map[models.RiskProfile]struct{ minRR, maxATRPercent, minADX float64 }{
	models.Conservative: {minRR: 2.0, maxATRPercent: 1.5, minADX: 25},
	models.Moderate:     {minRR: 1.5, maxATRPercent: 2.0, minADX: 20},
	models.Aggressive:   {minRR: 1.2, maxATRPercent: 2.5, minADX: 15},
}

// Inputs bundles the four contributing sources for one fusion cycle.
// A zero-Kind signal marks that source as absent; psychology is also
// absent when the pointer is nil. The weights of the present sources are
// renormalized to sum to one.
type Inputs struct {
	ML          models.Signal
	Indicator   models.Signal
	Pattern     models.Signal
	Psychology  *models.Signal
	RiskProfile models.RiskProfile
}

// Fuse combines Inputs into a Decision's Signal, Action, and confidence,
// without position sizing or risk gating (see Gate and LotsForBalance).
// When every present source agrees on a non-WAIT kind, confidence is
// boosted by 0.10 capped at 0.98; three-way agreement of ml/indicator/
// pattern lifts the base to at least the strongest component first.
func Fuse(in Inputs) (models.Signal, models.Action, []models.SourceBreakdown) {
	w := profileWeights[in.RiskProfile]

	type contributor struct {
		signal models.Signal
		weight float64
		name   string
	}

	var contributors []contributor
	if in.ML.Kind != "" {
		contributors = append(contributors, contributor{in.ML, w.ml, "ml"})
	}
	if in.Indicator.Kind != "" {
		contributors = append(contributors, contributor{in.Indicator, w.indicator, "indicator"})
	}
	if in.Pattern.Kind != "" {
		contributors = append(contributors, contributor{in.Pattern, w.pattern, "pattern"})
	}
	if in.Psychology != nil && in.Psychology.Kind != "" {
		// Psychology participates at the pattern slot's weight.
		contributors = append(contributors, contributor{*in.Psychology, w.pattern, "psychology"})
	}
	if len(contributors) == 0 {
		return models.Signal{Kind: models.Wait, Confidence: 0, Reason: "no contributing source", Source: "fusion"}, models.ActionNone, nil
	}

	total := 0.0
	for _, c := range contributors {
		total += c.weight
	}
	for i := range contributors {
		contributors[i].weight /= total
	}

	scores := map[models.SignalKind]float64{models.BuyCall: 0, models.Wait: 0, models.BuyPut: 0}
	var breakdown []models.SourceBreakdown
	for _, c := range contributors {
		scores[c.signal.Kind] += c.weight * c.signal.Confidence
		breakdown = append(breakdown, models.SourceBreakdown{
			Source:     c.name,
			Kind:       c.signal.Kind,
			Confidence: c.signal.Confidence,
			Weight:     c.weight,
		})
	}

	winner, confidence := argmax(scores)

	agree := len(contributors) >= 2
	for _, c := range contributors {
		if c.signal.Kind != winner {
			agree = false
		}
	}
	if winner != models.Wait && agree {
		if coreMax, ok := coreUnanimity(in, winner); ok && coreMax > confidence {
			confidence = coreMax
		}
		confidence += 0.10
		if confidence > 0.98 {
			confidence = 0.98
		}
	}

	action := models.ActionNone
	if winner != models.Wait {
		if confidence >= w.threshold {
			action = models.ActionExecute
		} else {
			action = models.ActionSuggest
		}
	}

	return models.Signal{Kind: winner, Confidence: confidence, Reason: "fused decision", Source: "fusion"}, action, breakdown
}

func argmax(scores map[models.SignalKind]float64) (models.SignalKind, float64) {
	best := models.Wait
	bestScore := scores[models.Wait]
	for _, kind := range []models.SignalKind{models.BuyCall, models.BuyPut} {
		if scores[kind] > bestScore {
			best = kind
			bestScore = scores[kind]
		}
	}
	return best, bestScore
}

// coreUnanimity reports the strongest component confidence when ml,
// indicator, and pattern are all present and all chose kind.
func coreUnanimity(in Inputs, kind models.SignalKind) (float64, bool) {
	if in.ML.Kind != kind || in.Indicator.Kind != kind || in.Pattern.Kind != kind {
		return 0, false
	}
	max := in.ML.Confidence
	if in.Indicator.Confidence > max {
		max = in.Indicator.Confidence
	}
	if in.Pattern.Confidence > max {
		max = in.Pattern.Confidence
	}
	return max, true
}

// LotsByConfidence maps fused confidence to lot count: >0.9 -> 3; >0.8 -> 2;
// else 1.
func LotsByConfidence(confidence float64) int {
	switch {
	case confidence > 0.9:
		return 3
	case confidence > 0.8:
		return 2
	default:
		return 1
	}
}

// GateInputs carries the fields the pre-execution risk gate inspects.
type GateInputs struct {
	RiskReward float64
	ATRPercent float64
	ADX        float64
}

// Gate rejects trades failing the profile's minimum risk/reward, maximum
// volatility, or minimum trend-strength thresholds.
func Gate(profile models.RiskProfile, in GateInputs) (pass bool, reason string) {
	bounds := riskGateBounds[profile]
	if in.RiskReward < bounds.minRR {
		return false, "risk_reward below profile minimum"
	}
	if in.ATRPercent > bounds.maxATRPercent {
		return false, "volatility exceeds profile maximum"
	}
	if in.ADX < bounds.minADX {
		return false, "trend strength below profile minimum"
	}
	return true, ""
}

// LotsForBalance computes lots = max(1, floor((balance*riskPerTrade) /
// (|entry-stop| * lotSizeForIndex))).
func LotsForBalance(balance, riskPerTrade, entry, stop float64, index models.Index) int {
	lotSize := models.LotSize(index)
	if lotSize <= 0 {
		return 1
	}
	denom := absFloat(entry-stop) * float64(lotSize)
	if denom == 0 {
		return 1
	}
	lots := int((balance * riskPerTrade) / denom)
	if lots < 1 {
		return 1
	}
	return lots
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// NextWeeklyExpiry returns the next Thursday on/after from, switching to
// the following week's Thursday when within the last two days of the
// current week under moderate/conservative profiles, or within the last
// day under aggressive.
func NextWeeklyExpiry(from time.Time, profile models.RiskProfile) time.Time {
	thisThursday := nextWeekday(from, time.Thursday)
	daysToExpiry := int(thisThursday.Sub(from).Hours() / 24)

	rolloverWindow := 2
	if profile == models.Aggressive {
		rolloverWindow = 1
	}

	if daysToExpiry <= rolloverWindow {
		return nextWeekday(thisThursday.AddDate(0, 0, 1), time.Thursday)
	}
	return thisThursday
}

func nextWeekday(from time.Time, weekday time.Weekday) time.Time {
	daysUntil := (int(weekday) - int(from.Weekday()) + 7) % 7
	return time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location()).AddDate(0, 0, daysUntil)
}
