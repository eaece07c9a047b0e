package indicators

import (
	"math"

	"github.com/ridopark/options-engine/internal/models"
)

// ADXBucket classifies an ADX reading into the four strength buckets.
func ADXBucket(adx float64) models.ADXBucket {
	switch {
	case adx >= 50:
		return models.ADXVeryStrong
	case adx >= 35:
		return models.ADXStrong
	case adx >= 20:
		return models.ADXModerate
	default:
		return models.ADXWeak
	}
}

// ADX computes the Average Directional Index together with +DI/-DI using
// Wilder's smoothing. Falls back to the neutral default ADX=25 when short
// on history.
func ADX(candles []*models.Candle, period int) (adx, plusDI, minusDI float64) {
	if len(candles) < period+1 {
		return 25, 25, 25
	}

	trs := make([]float64, 0, len(candles)-1)
	plusDMs := make([]float64, 0, len(candles)-1)
	minusDMs := make([]float64, 0, len(candles)-1)

	for i := 1; i < len(candles); i++ {
		cur, prev := candles[i], candles[i-1]
		trs = append(trs, trueRange(cur, prev))

		upMove := cur.High - prev.High
		downMove := prev.Low - cur.Low

		plusDM, minusDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}
		plusDMs = append(plusDMs, plusDM)
		minusDMs = append(minusDMs, minusDM)
	}

	smoothTR := wilderSmooth(trs, period)
	smoothPlusDM := wilderSmooth(plusDMs, period)
	smoothMinusDM := wilderSmooth(minusDMs, period)

	if smoothTR == 0 {
		return 25, 25, 25
	}
	plusDI = 100 * smoothPlusDM / smoothTR
	minusDI = 100 * smoothMinusDM / smoothTR

	diSum := plusDI + minusDI
	if diSum == 0 {
		return 25, plusDI, minusDI
	}
	dx := 100 * math.Abs(plusDI-minusDI) / diSum

	// ADX is the Wilder-smoothed average of DX; a single-pass approximation
	// over the available window is used when less than 2*period history
	// exists, otherwise the full DX series is smoothed.
	if len(candles) < 2*period+1 {
		return dx, plusDI, minusDI
	}

	dxSeries := make([]float64, 0, len(candles)-period-1)
	for end := period + 1; end < len(candles); end++ {
		d, _, _ := adxWindow(candles[:end+1], period)
		dxSeries = append(dxSeries, d)
	}
	adx = wilderSmooth(dxSeries, period)
	if adx == 0 {
		adx = dx
	}
	return adx, plusDI, minusDI
}

// adxWindow computes a single DX value (not the smoothed ADX) for the
// trailing window; used internally to build the DX series ADX smooths.
func adxWindow(candles []*models.Candle, period int) (dx, plusDI, minusDI float64) {
	if len(candles) < period+1 {
		return 25, 25, 25
	}
	trs := make([]float64, 0, period)
	plusDMs := make([]float64, 0, period)
	minusDMs := make([]float64, 0, period)
	start := len(candles) - period
	for i := start; i < len(candles); i++ {
		cur, prev := candles[i], candles[i-1]
		trs = append(trs, trueRange(cur, prev))
		upMove := cur.High - prev.High
		downMove := prev.Low - cur.Low
		plusDM, minusDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			plusDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM = downMove
		}
		plusDMs = append(plusDMs, plusDM)
		minusDMs = append(minusDMs, minusDM)
	}
	tr := sum(trs)
	pDM := sum(plusDMs)
	mDM := sum(minusDMs)
	if tr == 0 {
		return 25, 25, 25
	}
	plusDI = 100 * pDM / tr
	minusDI = 100 * mDM / tr
	diSum := plusDI + minusDI
	if diSum == 0 {
		return 0, plusDI, minusDI
	}
	dx = 100 * math.Abs(plusDI-minusDI) / diSum
	return dx, plusDI, minusDI
}

func wilderSmooth(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < period {
		return sum(values) / float64(len(values))
	}
	avg := sum(values[:period]) / float64(period)
	for i := period; i < len(values); i++ {
		avg = (avg*float64(period-1) + values[i]) / float64(period)
	}
	return avg
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func trueRange(cur, prev *models.Candle) float64 {
	if prev == nil {
		return cur.High - cur.Low
	}
	tr1 := cur.High - cur.Low
	tr2 := math.Abs(cur.High - prev.Close)
	tr3 := math.Abs(cur.Low - prev.Close)
	return math.Max(tr1, math.Max(tr2, tr3))
}

// Supertrend computes the Supertrend line and direction (+1 up, -1 down,
// 0 while no close has yet left the ATR-based bands), plus whether the last
// bar flipped between +1 and -1. Falls back to (price, +1, false) when
// short on history.
func Supertrend(candles []*models.Candle, period int, multiplier float64) (value float64, direction int, flipped bool) {
	if len(candles) < period+2 {
		last := candles[len(candles)-1]
		return last.Close, 1, false
	}

	atrSeries := atrSeries(candles, period)

	direction = 0
	value = candles[0].Close
	prevUpper := 0.0
	prevLower := 0.0

	for i := 1; i < len(candles); i++ {
		c := candles[i]
		atr := atrSeries[i]
		mid := (c.High + c.Low) / 2
		upperBand := mid + multiplier*atr
		lowerBand := mid - multiplier*atr

		if i == 1 {
			prevUpper, prevLower = upperBand, lowerBand
		} else {
			if upperBand < prevUpper || candles[i-1].Close > prevUpper {
				prevUpper = upperBand
			}
			if lowerBand > prevLower || candles[i-1].Close < prevLower {
				prevLower = lowerBand
			}
		}

		prevDirection := direction
		if c.Close > prevUpper {
			direction = 1
		} else if c.Close < prevLower {
			direction = -1
		} else {
			direction = prevDirection
		}

		if direction == 1 {
			value = prevLower
		} else {
			value = prevUpper
		}

		flipped = prevDirection != 0 && direction != prevDirection
	}

	return value, direction, flipped
}

func atrSeries(candles []*models.Candle, period int) []float64 {
	out := make([]float64, len(candles))
	trs := make([]float64, len(candles))
	for i := range candles {
		var prev *models.Candle
		if i > 0 {
			prev = candles[i-1]
		}
		trs[i] = trueRange(candles[i], prev)
	}
	for i := range candles {
		window := trs[:i+1]
		if len(window) > period {
			window = window[len(window)-period:]
		}
		out[i] = sum(window) / float64(len(window))
	}
	return out
}

// Ichimoku computes the five Ichimoku lines plus cloud-direction and
// price-vs-cloud flags. Falls back to flat lines at the current price when
// short on history.
func Ichimoku(candles []*models.Candle, tenkanPeriod, kijunPeriod, senkouBPeriod int) models.Ichimoku {
	price := candles[len(candles)-1].Close
	if len(candles) < kijunPeriod {
		return models.Ichimoku{Tenkan: price, Kijun: price, SenkouA: price, SenkouB: price, Chikou: price}
	}

	tenkan := midpoint(candles, tenkanPeriod)
	kijun := midpoint(candles, kijunPeriod)
	senkouA := (tenkan + kijun) / 2

	senkouB := price
	if len(candles) >= senkouBPeriod {
		senkouB = midpoint(candles, senkouBPeriod)
	}

	chikouIndex := len(candles) - 1 - 26
	chikou := price
	if chikouIndex >= 0 {
		chikou = candles[chikouIndex].Close
	}

	cloudTop, cloudBottom := senkouA, senkouB
	if cloudBottom > cloudTop {
		cloudTop, cloudBottom = cloudBottom, cloudTop
	}

	return models.Ichimoku{
		Tenkan:          tenkan,
		Kijun:           kijun,
		SenkouA:         senkouA,
		SenkouB:         senkouB,
		Chikou:          chikou,
		CloudBullish:    senkouA > senkouB,
		PriceAboveCloud: price > cloudTop,
	}
}

func midpoint(candles []*models.Candle, period int) float64 {
	window := candles
	if len(window) > period {
		window = window[len(window)-period:]
	}
	hh, ll := window[0].High, window[0].Low
	for _, c := range window {
		if c.High > hh {
			hh = c.High
		}
		if c.Low < ll {
			ll = c.Low
		}
	}
	return (hh + ll) / 2
}

// ParabolicSAR computes the Parabolic SAR value and direction (+1 up, -1
// down) using the standard acceleration-factor algorithm.
func ParabolicSAR(candles []*models.Candle, accelStep, accelMax float64) (sar float64, direction int) {
	if len(candles) < 2 {
		return candles[len(candles)-1].Close, 1
	}

	direction = 1
	if candles[1].Close < candles[0].Close {
		direction = -1
	}

	af := accelStep
	ep := candles[0].High
	sar = candles[0].Low
	if direction == -1 {
		ep = candles[0].Low
		sar = candles[0].High
	}

	for i := 1; i < len(candles); i++ {
		c := candles[i]
		prevSAR := sar
		sar = prevSAR + af*(ep-prevSAR)

		if direction == 1 {
			if c.Low < sar {
				direction = -1
				sar = ep
				ep = c.Low
				af = accelStep
			} else {
				if c.High > ep {
					ep = c.High
					af = math.Min(af+accelStep, accelMax)
				}
			}
		} else {
			if c.High > sar {
				direction = 1
				sar = ep
				ep = c.High
				af = accelStep
			} else {
				if c.Low < ep {
					ep = c.Low
					af = math.Min(af+accelStep, accelMax)
				}
			}
		}
	}

	return sar, direction
}

// Aroon computes Aroon-Up, Aroon-Down and the oscillator over period.
// Falls back to neutral (50, 50, 0) when short on history.
func Aroon(candles []*models.Candle, period int) (up, down, oscillator float64) {
	if len(candles) < period+1 {
		return 50, 50, 0
	}
	window := candles[len(candles)-(period+1):]

	highestIdx, lowestIdx := 0, 0
	for i, c := range window {
		if c.High > window[highestIdx].High {
			highestIdx = i
		}
		if c.Low < window[lowestIdx].Low {
			lowestIdx = i
		}
	}

	periodsSinceHigh := len(window) - 1 - highestIdx
	periodsSinceLow := len(window) - 1 - lowestIdx

	up = float64(period-periodsSinceHigh) / float64(period) * 100
	down = float64(period-periodsSinceLow) / float64(period) * 100
	oscillator = up - down
	return up, down, oscillator
}
