package indicators

import (
	"sort"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

// VWAP computes the Volume Weighted Average Price since the last session
// reset (default 09:15 local, daily). Falls back to 0 when there is no
// volume in the session.
func VWAP(candles []*models.Candle, sessionStartHour, sessionStartMinute int) float64 {
	session := sessionCandles(candles, sessionStartHour, sessionStartMinute)
	if len(session) == 0 {
		return 0
	}

	var totalVolume int64
	var totalPriceVolume float64
	for _, c := range session {
		typical := (c.High + c.Low + c.Close) / 3
		totalPriceVolume += typical * float64(c.Volume)
		totalVolume += c.Volume
	}
	if totalVolume == 0 {
		return session[len(session)-1].Close
	}
	return totalPriceVolume / float64(totalVolume)
}

// sessionCandles returns the trailing run of candles belonging to the same
// trading session as the last candle, where a session boundary is the
// configured reset time of day.
func sessionCandles(candles []*models.Candle, hour, minute int) []*models.Candle {
	if len(candles) == 0 {
		return nil
	}
	start := len(candles) - 1
	for i := len(candles) - 1; i > 0; i-- {
		t := candles[i].Timestamp
		if t.Hour() == hour && t.Minute() == minute {
			start = i
			break
		}
		prev := candles[i-1].Timestamp
		if !sameSession(prev, t, hour, minute) {
			start = i
			break
		}
		start = i - 1
	}
	return candles[start:]
}

func sameSession(a, b time.Time, hour, minute int) bool {
	reset := time.Date(b.Year(), b.Month(), b.Day(), hour, minute, 0, 0, b.Location())
	if b.Before(reset) {
		reset = reset.AddDate(0, 0, -1)
	}
	return !a.Before(reset)
}

// OBV computes On-Balance Volume over the full candle history.
func OBV(candles []*models.Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	obv := float64(candles[0].Volume)
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			obv += float64(candles[i].Volume)
		case candles[i].Close < candles[i-1].Close:
			obv -= float64(candles[i].Volume)
		}
	}
	return obv
}

// OBVSeries returns the OBV value at every index, used to derive its EMA.
func OBVSeries(candles []*models.Candle) []float64 {
	out := make([]float64, len(candles))
	if len(candles) == 0 {
		return out
	}
	out[0] = float64(candles[0].Volume)
	for i := 1; i < len(candles); i++ {
		switch {
		case candles[i].Close > candles[i-1].Close:
			out[i] = out[i-1] + float64(candles[i].Volume)
		case candles[i].Close < candles[i-1].Close:
			out[i] = out[i-1] - float64(candles[i].Volume)
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// PriceOBVDivergence flags when price made a new high over lookback but
// OBV did not (or vice versa) — a bearish/bullish divergence signal.
func PriceOBVDivergence(candles []*models.Candle, obvSeries []float64, lookback int) bool {
	if len(candles) < lookback+1 || len(obvSeries) != len(candles) {
		return false
	}
	window := candles[len(candles)-lookback:]
	obvWindow := obvSeries[len(obvSeries)-lookback:]

	priceHighIdx, obvHighIdx := 0, 0
	for i := range window {
		if window[i].High > window[priceHighIdx].High {
			priceHighIdx = i
		}
		if obvWindow[i] > obvWindow[obvHighIdx] {
			obvHighIdx = i
		}
	}
	lastIdx := len(window) - 1
	priceNewHigh := priceHighIdx == lastIdx
	obvNewHigh := obvHighIdx == lastIdx
	return priceNewHigh != obvNewHigh
}

// VolumeZone is one of the k price zones in a volume-profile histogram.
type VolumeZone = models.VolumeZone

// VolumeProfile buckets the candle range into k equal-width price zones
// and returns the top-3 zones by traded volume, descending.
func VolumeProfile(candles []*models.Candle, k int) []VolumeZone {
	if len(candles) == 0 || k <= 0 {
		return nil
	}

	lo, hi := candles[0].Low, candles[0].High
	for _, c := range candles {
		if c.Low < lo {
			lo = c.Low
		}
		if c.High > hi {
			hi = c.High
		}
	}
	if hi <= lo {
		return nil
	}

	width := (hi - lo) / float64(k)
	zones := make([]VolumeZone, k)
	for i := range zones {
		zones[i] = VolumeZone{PriceLow: lo + width*float64(i), PriceHigh: lo + width*float64(i+1)}
	}

	for _, c := range candles {
		mid := (c.High + c.Low) / 2
		idx := int((mid - lo) / width)
		if idx >= k {
			idx = k - 1
		}
		if idx < 0 {
			idx = 0
		}
		zones[idx].Volume += c.Volume
	}

	sort.SliceStable(zones, func(i, j int) bool { return zones[i].Volume > zones[j].Volume })
	if len(zones) > 3 {
		zones = zones[:3]
	}
	return zones
}

// VolumeSMA is the simple moving average of volume over period.
func VolumeSMA(candles []*models.Candle, period int) float64 {
	if len(candles) < period {
		return 0
	}
	window := candles[len(candles)-period:]
	var total int64
	for _, c := range window {
		total += c.Volume
	}
	return float64(total) / float64(period)
}

// RelativeVolume compares the latest candle's volume to its SMA baseline,
// falling back to 1 (typical volume) when the baseline is unavailable.
func RelativeVolume(candles []*models.Candle, period int) float64 {
	baseline := VolumeSMA(candles, period)
	if baseline == 0 || len(candles) == 0 {
		return 1
	}
	return float64(candles[len(candles)-1].Volume) / baseline
}

// MoneyFlowIndex computes the Money Flow Index over period, falling back
// to the neutral default of 50 when short on history.
func MoneyFlowIndex(candles []*models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 50
	}

	window := candles[len(candles)-period-1:]
	positiveFlow, negativeFlow := 0.0, 0.0
	for i := 1; i < len(window); i++ {
		typicalCur := (window[i].High + window[i].Low + window[i].Close) / 3
		typicalPrev := (window[i-1].High + window[i-1].Low + window[i-1].Close) / 3
		rawFlow := typicalCur * float64(window[i].Volume)

		if typicalCur > typicalPrev {
			positiveFlow += rawFlow
		} else if typicalCur < typicalPrev {
			negativeFlow += rawFlow
		}
	}

	if negativeFlow == 0 {
		return 100
	}
	moneyRatio := positiveFlow / negativeFlow
	return 100 - (100 / (1 + moneyRatio))
}

// DeliveryPercent averages the per-candle delivery fraction over period,
// when the source supplied it. When any candle in the window lacks a
// delivery figure it stubs the documented 50% approximate default.
func DeliveryPercent(candles []*models.Candle, period int) (percent float64, approximate bool) {
	if len(candles) == 0 {
		return 50, true
	}
	window := candles
	if len(window) > period {
		window = window[len(window)-period:]
	}

	total := 0.0
	anyApproximate := false
	for _, c := range window {
		if c.DeliveryApproximate || c.Delivery == 0 {
			anyApproximate = true
		}
		total += c.Delivery
	}
	if anyApproximate {
		return 50, true
	}
	return (total / float64(len(window))) * 100, false
}
