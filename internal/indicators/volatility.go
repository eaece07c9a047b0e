package indicators

import (
	"math"

	"github.com/ridopark/options-engine/internal/models"
)

// StandardDeviation returns the population standard deviation of the last
// period prices, or 0 when short on history.
func StandardDeviation(prices []float64, period int) float64 {
	if len(prices) < period {
		return 0
	}
	window := prices[len(prices)-period:]
	mean := sum(window) / float64(period)

	variance := 0.0
	for _, p := range window {
		variance += math.Pow(p-mean, 2)
	}
	variance /= float64(period)

	return math.Sqrt(variance)
}

// BollingerBands returns upper/middle/lower bands plus %B and bandwidth.
// Falls back to a flat band around the last price with the documented
// neutral bandwidth of 0.2 when short on history.
func BollingerBands(prices []float64, period int, stdDevMultiplier float64) (upper, middle, lower, percentB, bandwidth float64) {
	if len(prices) < period {
		price := prices[len(prices)-1]
		return price, price, price, 0.5, 0.2
	}

	middle = SMA(prices, period)
	stdDev := StandardDeviation(prices, period)

	upper = middle + (stdDev * stdDevMultiplier)
	lower = middle - (stdDev * stdDevMultiplier)

	price := prices[len(prices)-1]
	if upper == lower {
		percentB = 0.5
	} else {
		percentB = (price - lower) / (upper - lower)
	}
	if middle != 0 {
		bandwidth = (upper - lower) / middle
	} else {
		bandwidth = 0.2
	}

	return upper, middle, lower, percentB, bandwidth
}

// BandwidthPercentile ranks the latest bandwidth against the trailing
// lookback of historical bandwidths, returning a 0-1 percentile. Falls
// back to 0.5 when short on history.
func BandwidthPercentile(closes []float64, period, lookback int) float64 {
	if len(closes) < period+lookback {
		return 0.5
	}

	var series []float64
	for end := len(closes) - lookback; end <= len(closes); end++ {
		if end < period {
			continue
		}
		_, _, _, _, bw := BollingerBands(closes[:end], period, 2.0)
		series = append(series, bw)
	}
	if len(series) == 0 {
		return 0.5
	}
	current := series[len(series)-1]
	below := 0
	for _, bw := range series {
		if bw <= current {
			below++
		}
	}
	return float64(below) / float64(len(series))
}

// TrueRange computes the true range of current relative to previous;
// previous may be nil for the first candle in a sequence.
func TrueRange(current, previous *models.Candle) float64 {
	return trueRange(current, previous)
}

// ATR computes the Average True Range over period using a simple rolling
// mean of true range, falling back to 0 when short on history.
func ATR(candles []*models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}
	trSum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		var previous *models.Candle
		if i > 0 {
			previous = candles[i-1]
		}
		trSum += trueRange(candles[i], previous)
	}
	return trSum / float64(period)
}

// ATRBucket buckets ATR-as-percent-of-price using the same four labels as
// ADXBucket, reused here for volatility regime classification.
func ATRBucket(atrPercent float64) models.ADXBucket {
	switch {
	case atrPercent >= 3:
		return models.ADXVeryStrong
	case atrPercent >= 2:
		return models.ADXStrong
	case atrPercent >= 1:
		return models.ADXModerate
	default:
		return models.ADXWeak
	}
}

// Keltner computes Keltner Channel bands: an EMA midline plus/minus a
// multiple of ATR.
func Keltner(closes []float64, candles []*models.Candle, period int, atrMultiplier float64) (upper, lower float64) {
	mid := EMA(closes, period)
	atr := ATR(candles, period)
	return mid + atrMultiplier*atr, mid - atrMultiplier*atr
}

// Donchian computes the Donchian Channel (highest high / lowest low over
// period) and flags a breakout when the latest close closed outside the
// channel computed over the prior bars.
func Donchian(candles []*models.Candle, period int) (upper, lower float64, breakout int) {
	if len(candles) < period+1 {
		if len(candles) == 0 {
			return 0, 0, 0
		}
		last := candles[len(candles)-1]
		return last.High, last.Low, 0
	}

	prior := candles[len(candles)-period-1 : len(candles)-1]
	upper, lower = prior[0].High, prior[0].Low
	for _, c := range prior {
		if c.High > upper {
			upper = c.High
		}
		if c.Low < lower {
			lower = c.Low
		}
	}

	cur := candles[len(candles)-1]
	if cur.Close > upper {
		breakout = 1
	} else if cur.Close < lower {
		breakout = -1
	}
	return upper, lower, breakout
}

// VolatilityRatio compares a short lookback's average true range against a
// longer one, falling back to 1 (flat) when short on history.
func VolatilityRatio(candles []*models.Candle, short, long int) float64 {
	if len(candles) < long+1 {
		return 1
	}
	shortATR := ATR(candles, short)
	longATR := ATR(candles, long)
	if longATR == 0 {
		return 1
	}
	return shortATR / longATR
}

// HistoricalVolatility computes annualized historical volatility from
// log-returns over period, annualized by tradingDaysPerYear. Falls back to
// 0 when short on history.
func HistoricalVolatility(closes []float64, period, tradingDaysPerYear int) float64 {
	if len(closes) < period+1 {
		return 0
	}
	window := closes[len(closes)-period-1:]
	returns := make([]float64, 0, period)
	for i := 1; i < len(window); i++ {
		if window[i-1] <= 0 {
			continue
		}
		returns = append(returns, math.Log(window[i]/window[i-1]))
	}
	if len(returns) < 2 {
		return 0
	}
	mean := sum(returns) / float64(len(returns))
	variance := 0.0
	for _, r := range returns {
		variance += math.Pow(r-mean, 2)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance) * math.Sqrt(float64(tradingDaysPerYear))
}
