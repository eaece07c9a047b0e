package indicators

import "math"

// RSI computes the Relative Strength Index over period using Wilder's
// smoothing. Falls back to the neutral default of 50 when short on history.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50
	}

	gains, losses := 0.0, 0.0
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MACD returns the MACD line, its signal line (EMA of the MACD series), and
// the histogram. Falls back to all-zero when short on history.
func MACD(closes []float64, fast, slow, signal int) (macd, macdSignal, histogram float64) {
	if len(closes) < slow {
		return 0, 0, 0
	}

	fastSeries := EMASeries(closes, fast)
	slowSeries := EMASeries(closes, slow)

	macdSeries := make([]float64, len(closes))
	for i := range closes {
		macdSeries[i] = fastSeries[i] - slowSeries[i]
	}

	signalSeries := EMASeries(macdSeries, signal)

	macd = macdSeries[len(macdSeries)-1]
	macdSignal = signalSeries[len(signalSeries)-1]
	histogram = macd - macdSignal
	return macd, macdSignal, histogram
}

// MACDCrossover inspects the last two MACD-vs-signal relationships and
// returns +1 for a fresh bullish cross, -1 for a fresh bearish cross, 0
// otherwise.
func MACDCrossover(closes []float64, fast, slow, signal int) int {
	if len(closes) < slow+2 {
		return 0
	}
	prevMACD, prevSignal, _ := MACD(closes[:len(closes)-1], fast, slow, signal)
	curMACD, curSignal, _ := MACD(closes, fast, slow, signal)

	if prevMACD <= prevSignal && curMACD > curSignal {
		return 1
	}
	if prevMACD >= prevSignal && curMACD < curSignal {
		return -1
	}
	return 0
}

// Stochastic computes %K and the %D (simple average of the trailing dPeriod
// %K values) over kPeriod/dPeriod. Falls back to neutral (50, 50) when
// short on history.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d float64) {
	if len(closes) < kPeriod {
		return 50, 50
	}

	kValues := make([]float64, 0, dPeriod)
	for offset := 0; offset < dPeriod; offset++ {
		end := len(closes) - offset
		start := end - kPeriod
		if start < 0 {
			break
		}
		hh, ll := highs[start], lows[start]
		for i := start; i < end; i++ {
			if highs[i] > hh {
				hh = highs[i]
			}
			if lows[i] < ll {
				ll = lows[i]
			}
		}
		cur := closes[end-1]
		if hh == ll {
			kValues = append(kValues, 50)
		} else {
			kValues = append(kValues, ((cur-ll)/(hh-ll))*100)
		}
	}

	if len(kValues) == 0 {
		return 50, 50
	}
	k = kValues[0]

	sum := 0.0
	for _, v := range kValues {
		sum += v
	}
	d = sum / float64(len(kValues))
	return k, d
}

// CCI computes the Commodity Channel Index over period. Falls back to the
// neutral 0 when short on history or the mean deviation is zero.
func CCI(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period {
		return 0
	}

	typical := make([]float64, period)
	start := len(closes) - period
	for i := 0; i < period; i++ {
		idx := start + i
		typical[i] = (highs[idx] + lows[idx] + closes[idx]) / 3
	}

	mean := 0.0
	for _, t := range typical {
		mean += t
	}
	mean /= float64(period)

	meanDev := 0.0
	for _, t := range typical {
		meanDev += math.Abs(t - mean)
	}
	meanDev /= float64(period)

	if meanDev == 0 {
		return 0
	}
	return (typical[period-1] - mean) / (0.015 * meanDev)
}

// WilliamsR computes Williams %R over period. Falls back to the neutral -50
// when short on history.
func WilliamsR(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period {
		return -50
	}
	start := len(closes) - period
	hh, ll := highs[start], lows[start]
	for i := start; i < len(closes); i++ {
		if highs[i] > hh {
			hh = highs[i]
		}
		if lows[i] < ll {
			ll = lows[i]
		}
	}
	if hh == ll {
		return -50
	}
	cur := closes[len(closes)-1]
	return ((hh - cur) / (hh - ll)) * -100
}

// MomentumRatio is the raw rate-of-change ratio over period: close divided
// by the close period bars ago. Falls back to 1 (flat) when short on
// history.
func MomentumRatio(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 1
	}
	past := closes[len(closes)-1-period]
	if past == 0 {
		return 1
	}
	return closes[len(closes)-1] / past
}

// IsOverbought reports whether RSI/Stochastic/Williams %R jointly suggest
// an overbought market.
func IsOverbought(rsi, stochasticK, williamsR float64) bool {
	return rsi > 70 || stochasticK > 80 || williamsR > -20
}

// IsOversold reports whether RSI/Stochastic/Williams %R jointly suggest an
// oversold market.
func IsOversold(rsi, stochasticK, williamsR float64) bool {
	return rsi < 30 || stochasticK < 20 || williamsR < -80
}
