package patterns

import (
	"testing"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

func candle(open, high, low, close float64) *models.Candle {
	return &models.Candle{Open: open, High: high, Low: low, Close: close, Volume: 1000}
}

func withTimestamps(candles []*models.Candle) []*models.Candle {
	base := time.Date(2025, 1, 2, 9, 15, 0, 0, time.UTC)
	for i, c := range candles {
		c.Timestamp = base.Add(time.Duration(i) * time.Minute)
	}
	return candles
}

// Three strictly increasing bullish marubozu candles following a
// downtrend should mark three-white-soldiers on the last bar.
func TestDetect_ThreeWhiteSoldiers(t *testing.T) {
	var candles []*models.Candle
	price := 120.0
	for i := 0; i < 20; i++ {
		price -= 1
		candles = append(candles, candle(price+1, price+1, price, price))
	}
	candles = append(candles,
		candle(100, 104, 100, 104),
		candle(104, 108, 104, 108),
		candle(108, 112, 108, 112),
	)
	candles = withTimestamps(candles)

	marks := Detect(candles)
	lastIndex := len(candles) - 1
	ids := marks.At(lastIndex)

	found := false
	for _, id := range ids {
		if id == models.PatternThreeWhiteSoldiers {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected three-white-soldiers marked at last bar, got %v", ids)
	}
}

func TestDetect_HammerSingleCandle(t *testing.T) {
	candles := withTimestamps([]*models.Candle{candle(100, 101.2, 90, 101)})
	marks := Detect(candles)
	ids := marks.At(0)

	found := false
	for _, id := range ids {
		if id == models.PatternHammer {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected hammer marked at index 0, got %v", ids)
	}
}

func TestDetect_BullishEngulfing(t *testing.T) {
	candles := withTimestamps([]*models.Candle{
		candle(100, 101, 95, 96),
		candle(95, 105, 94, 104),
	})
	marks := Detect(candles)
	ids := marks.At(1)

	found := false
	for _, id := range ids {
		if id == models.PatternEngulfingBullish {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected bullish engulfing marked at index 1, got %v", ids)
	}
}

// Pattern predicates must be invariant under a uniform positive scaling of
// (open, high, low, close) and under a uniform shift.
func TestDetect_InvariantUnderScaleAndShift(t *testing.T) {
	base := withTimestamps([]*models.Candle{
		candle(100, 101, 90, 100.5),
	})
	scaled := withTimestamps([]*models.Candle{
		candle(200, 202, 180, 201),
	})
	shifted := withTimestamps([]*models.Candle{
		candle(150, 151, 140, 150.5),
	})

	baseIDs := Detect(base).At(0)
	scaledIDs := Detect(scaled).At(0)
	shiftedIDs := Detect(shifted).At(0)

	if !sameSet(baseIDs, scaledIDs) {
		t.Fatalf("expected pattern set invariant under scaling: base=%v scaled=%v", baseIDs, scaledIDs)
	}
	if !sameSet(baseIDs, shiftedIDs) {
		t.Fatalf("expected pattern set invariant under shift: base=%v shifted=%v", baseIDs, shiftedIDs)
	}
}

func sameSet(a, b []models.PatternID) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[models.PatternID]bool)
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if !seen[id] {
			return false
		}
	}
	return true
}

func TestToSignal_NoPatternReturnsWait(t *testing.T) {
	marks := models.NewPatternMarks()
	signal := ToSignal(marks, 0, models.TrendSideway)
	if signal.Kind != models.Wait {
		t.Fatalf("expected WAIT with no patterns detected, got %s", signal.Kind)
	}
}

func TestToSignal_BullishPatternInUptrendBuysCall(t *testing.T) {
	marks := models.NewPatternMarks()
	marks.Add(0, models.PatternThreeWhiteSoldiers)

	signal := ToSignal(marks, 0, models.TrendUp)
	if signal.Kind != models.BuyCall {
		t.Fatalf("expected BUY CALL for continuation-bullish pattern in uptrend, got %s", signal.Kind)
	}
}
