// Package patterns detects candlestick patterns over a candle sequence and
// turns the detected set into a trend-filtered directional signal.
package patterns

import (
	"math"

	"github.com/ridopark/options-engine/internal/models"
)

// window is the number of trailing candles a predicate inspects, ending at
// the index under test: 1 for single-candle, 2 for two-candle, 3 for
// three-candle patterns.
type window int

// predicate reports whether the pattern fires given its trailing candle
// window, oldest first, ending at the candle under test.
type predicate func(bars []*models.Candle) bool

type definition struct {
	id     models.PatternID
	window window
	detect predicate
}

// taxonomy is the closed set of detectable patterns: each entry pairs a
// window length with the geometric predicate that recognizes it. Detection
// iterates this table rather than dispatching through a type hierarchy.
var taxonomy = []definition{
	{models.PatternDoji, 1, isDoji},
	{models.PatternDragonflyDoji, 1, isDragonflyDoji},
	{models.PatternGravestoneDoji, 1, isGravestoneDoji},
	{models.PatternHammer, 1, isHammer},
	{models.PatternShootingStar, 1, isShootingStar},
	{models.PatternMarubozuBull, 1, isMarubozuBullish},
	{models.PatternMarubozuBear, 1, isMarubozuBearish},

	{models.PatternEngulfingBullish, 2, isBullishEngulfing},
	{models.PatternEngulfingBearish, 2, isBearishEngulfing},
	{models.PatternHaramiBullish, 2, isBullishHarami},
	{models.PatternHaramiBearish, 2, isBearishHarami},
	{models.PatternTweezerTop, 2, isTweezerTop},
	{models.PatternTweezerBottom, 2, isTweezerBottom},
	{models.PatternDarkCloudCover, 2, isDarkCloudCover},
	{models.PatternPiercing, 2, isPiercing},

	{models.PatternMorningStar, 3, isMorningStar},
	{models.PatternEveningStar, 3, isEveningStar},
	{models.PatternThreeWhiteSoldiers, 3, isThreeWhiteSoldiers},
	{models.PatternThreeBlackCrows, 3, isThreeBlackCrows},
	{models.PatternAbandonedBabyBull, 3, isAbandonedBabyBullish},
	{models.PatternAbandonedBabyBear, 3, isAbandonedBabyBearish},
}

// Detect scans candles and marks every pattern occurrence. Single-candle
// patterns may be marked from index 0, two-candle from index 1,
// three-candle from index 2.
func Detect(candles []*models.Candle) *models.PatternMarks {
	marks := models.NewPatternMarks()
	for i := range candles {
		for _, def := range taxonomy {
			start := i - int(def.window) + 1
			if start < 0 {
				continue
			}
			if def.detect(candles[start : i+1]) {
				marks.Add(i, def.id)
			}
		}
	}
	return marks
}

func body(c *models.Candle) float64 {
	return math.Abs(c.Close - c.Open)
}

func rng(c *models.Candle) float64 {
	return c.High - c.Low
}

func upperShadow(c *models.Candle) float64 {
	return c.High - math.Max(c.Open, c.Close)
}

func lowerShadow(c *models.Candle) float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

func bullish(c *models.Candle) bool { return c.Close > c.Open }
func bearish(c *models.Candle) bool { return c.Close < c.Open }

// --- single-candle ---

func isDoji(bars []*models.Candle) bool {
	c := bars[0]
	r := rng(c)
	if r == 0 {
		return false
	}
	return body(c)/r < 0.1
}

func isDragonflyDoji(bars []*models.Candle) bool {
	c := bars[0]
	if !isDoji(bars) {
		return false
	}
	b := body(c)
	if b == 0 {
		b = rng(c) * 0.01
	}
	return lowerShadow(c) >= b*5 && upperShadow(c) < b*5
}

func isGravestoneDoji(bars []*models.Candle) bool {
	c := bars[0]
	if !isDoji(bars) {
		return false
	}
	b := body(c)
	if b == 0 {
		b = rng(c) * 0.01
	}
	return upperShadow(c) >= b*5 && lowerShadow(c) < b*5
}

func isHammer(bars []*models.Candle) bool {
	c := bars[0]
	b := body(c)
	if b == 0 || rng(c) == 0 {
		return false
	}
	return lowerShadow(c) > b*2 && upperShadow(c) < b
}

func isShootingStar(bars []*models.Candle) bool {
	c := bars[0]
	b := body(c)
	if b == 0 || rng(c) == 0 {
		return false
	}
	return upperShadow(c) > b*2 && lowerShadow(c) < b
}

func isMarubozuBullish(bars []*models.Candle) bool {
	c := bars[0]
	b := body(c)
	if b == 0 {
		return false
	}
	return bullish(c) && upperShadow(c) <= b*0.1 && lowerShadow(c) <= b*0.1
}

func isMarubozuBearish(bars []*models.Candle) bool {
	c := bars[0]
	b := body(c)
	if b == 0 {
		return false
	}
	return bearish(c) && upperShadow(c) <= b*0.1 && lowerShadow(c) <= b*0.1
}

// --- two-candle ---

func isBullishEngulfing(bars []*models.Candle) bool {
	prev, cur := bars[0], bars[1]
	return bearish(prev) && bullish(cur) && cur.Open <= prev.Close && cur.Close >= prev.Open && body(cur) > body(prev)
}

func isBearishEngulfing(bars []*models.Candle) bool {
	prev, cur := bars[0], bars[1]
	return bullish(prev) && bearish(cur) && cur.Open >= prev.Close && cur.Close <= prev.Open && body(cur) > body(prev)
}

func isBullishHarami(bars []*models.Candle) bool {
	prev, cur := bars[0], bars[1]
	return bearish(prev) && bullish(cur) && body(cur) < body(prev) &&
		math.Max(cur.Open, cur.Close) <= math.Max(prev.Open, prev.Close) &&
		math.Min(cur.Open, cur.Close) >= math.Min(prev.Open, prev.Close)
}

func isBearishHarami(bars []*models.Candle) bool {
	prev, cur := bars[0], bars[1]
	return bullish(prev) && bearish(cur) && body(cur) < body(prev) &&
		math.Max(cur.Open, cur.Close) <= math.Max(prev.Open, prev.Close) &&
		math.Min(cur.Open, cur.Close) >= math.Min(prev.Open, prev.Close)
}

func isTweezerTop(bars []*models.Candle) bool {
	prev, cur := bars[0], bars[1]
	avgRange := (rng(prev) + rng(cur)) / 2
	if avgRange == 0 {
		return false
	}
	return bullish(prev) && bearish(cur) && math.Abs(prev.High-cur.High) <= avgRange*0.2
}

func isTweezerBottom(bars []*models.Candle) bool {
	prev, cur := bars[0], bars[1]
	avgRange := (rng(prev) + rng(cur)) / 2
	if avgRange == 0 {
		return false
	}
	return bearish(prev) && bullish(cur) && math.Abs(prev.Low-cur.Low) <= avgRange*0.2
}

func isDarkCloudCover(bars []*models.Candle) bool {
	prev, cur := bars[0], bars[1]
	if !bullish(prev) || !bearish(cur) {
		return false
	}
	if cur.Open <= prev.Close {
		return false
	}
	midpoint := (prev.Open + prev.Close) / 2
	return cur.Close < midpoint && cur.Close > prev.Open
}

func isPiercing(bars []*models.Candle) bool {
	prev, cur := bars[0], bars[1]
	if !bearish(prev) || !bullish(cur) {
		return false
	}
	if cur.Open >= prev.Close {
		return false
	}
	midpoint := (prev.Open + prev.Close) / 2
	return cur.Close > midpoint && cur.Close < prev.Open
}

// --- three-candle ---

func isMorningStar(bars []*models.Candle) bool {
	first, middle, last := bars[0], bars[1], bars[2]
	if !bearish(first) || !bullish(last) {
		return false
	}
	if body(middle) >= body(first)*0.3 {
		return false
	}
	midpoint := (first.Open + first.Close) / 2
	return last.Close > midpoint
}

func isEveningStar(bars []*models.Candle) bool {
	first, middle, last := bars[0], bars[1], bars[2]
	if !bullish(first) || !bearish(last) {
		return false
	}
	if body(middle) >= body(first)*0.3 {
		return false
	}
	midpoint := (first.Open + first.Close) / 2
	return last.Close < midpoint
}

func isThreeWhiteSoldiers(bars []*models.Candle) bool {
	a, b, c := bars[0], bars[1], bars[2]
	if !bullish(a) || !bullish(b) || !bullish(c) {
		return false
	}
	if !(b.Open > a.Open && b.Close > a.Close) || !(c.Open > b.Open && c.Close > b.Close) {
		return false
	}
	return upperShadow(a) < body(a)*0.3 && upperShadow(b) < body(b)*0.3 && upperShadow(c) < body(c)*0.3
}

func isThreeBlackCrows(bars []*models.Candle) bool {
	a, b, c := bars[0], bars[1], bars[2]
	if !bearish(a) || !bearish(b) || !bearish(c) {
		return false
	}
	if !(b.Open < a.Open && b.Close < a.Close) || !(c.Open < b.Open && c.Close < b.Close) {
		return false
	}
	return lowerShadow(a) < body(a)*0.3 && lowerShadow(b) < body(b)*0.3 && lowerShadow(c) < body(c)*0.3
}

func isAbandonedBabyBullish(bars []*models.Candle) bool {
	first, middle, last := bars[0], bars[1], bars[2]
	if !bearish(first) || !bullish(last) {
		return false
	}
	if !isDoji([]*models.Candle{middle}) {
		return false
	}
	return middle.High < first.Low && middle.High < last.Low
}

func isAbandonedBabyBearish(bars []*models.Candle) bool {
	first, middle, last := bars[0], bars[1], bars[2]
	if !bullish(first) || !bearish(last) {
		return false
	}
	if !isDoji([]*models.Candle{middle}) {
		return false
	}
	return middle.Low > first.High && middle.Low > last.High
}

// continuationBullish/reversalBearish classify a pattern's role for the
// trend filter applied in ToSignal.
var continuationBullish = map[models.PatternID]bool{
	models.PatternMarubozuBull:       true,
	models.PatternThreeWhiteSoldiers: true,
}

var continuationBearish = map[models.PatternID]bool{
	models.PatternMarubozuBear:      true,
	models.PatternThreeBlackCrows:   true,
}

// ToSignal applies the trend filter described for pattern_to_signal: in an
// uptrend, continuation-bullish and reversal-bearish patterns at the last
// index are weighted; in a downtrend the weighting reverses; sideways
// keeps every pattern. Confidence is
// min(max_weight / (count*0.9), 1.0).
func ToSignal(marks *models.PatternMarks, lastIndex int, trend models.TrendBucket) models.Signal {
	ids := marks.At(lastIndex)
	if len(ids) == 0 {
		return models.Signal{Kind: models.Wait, Confidence: 0.5, Reason: "no pattern detected", Source: "patterns"}
	}

	bullishWeight, bearishWeight := 0.0, 0.0
	count := 0
	maxWeight := 0.0

	for _, id := range ids {
		weight, ok := models.PatternWeights[id]
		if !ok {
			continue
		}
		dir := models.PatternDirections[id]
		if dir == models.DirectionNeutral {
			continue
		}

		included := true
		switch trend {
		case models.TrendUp:
			included = continuationBullish[id] || dir == models.DirectionBullish || isReversalBearish(id)
		case models.TrendDown:
			included = continuationBearish[id] || dir == models.DirectionBearish || isReversalBullish(id)
		}
		if !included {
			continue
		}

		count++
		if weight > maxWeight {
			maxWeight = weight
		}
		if dir == models.DirectionBullish {
			bullishWeight += weight
		} else {
			bearishWeight += weight
		}
	}

	if count == 0 {
		return models.Signal{Kind: models.Wait, Confidence: 0.5, Reason: "no pattern survives trend filter", Source: "patterns"}
	}

	confidence := maxWeight / (float64(count) * 0.9)
	if confidence > 1.0 {
		confidence = 1.0
	}

	kind := models.Wait
	reason := "balanced pattern evidence"
	if bullishWeight > bearishWeight {
		kind = models.BuyCall
		reason = "bullish pattern weight dominates"
	} else if bearishWeight > bullishWeight {
		kind = models.BuyPut
		reason = "bearish pattern weight dominates"
	}

	return models.Signal{Kind: kind, Confidence: confidence, Reason: reason, Source: "patterns"}
}

// isReversalBearish/isReversalBullish identify patterns whose role is a
// reversal signal of the named direction, used by the trend filter to keep
// counter-trend reversal patterns alongside trend-aligned continuations.
func isReversalBearish(id models.PatternID) bool {
	switch id {
	case models.PatternShootingStar, models.PatternEveningStar, models.PatternEngulfingBearish,
		models.PatternDarkCloudCover, models.PatternGravestoneDoji, models.PatternAbandonedBabyBear,
		models.PatternHaramiBearish, models.PatternTweezerTop:
		return true
	default:
		return false
	}
}

func isReversalBullish(id models.PatternID) bool {
	switch id {
	case models.PatternHammer, models.PatternMorningStar, models.PatternEngulfingBullish,
		models.PatternPiercing, models.PatternDragonflyDoji, models.PatternAbandonedBabyBull,
		models.PatternHaramiBullish, models.PatternTweezerBottom:
		return true
	default:
		return false
	}
}
