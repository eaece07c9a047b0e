package indicators

import (
	"math"

	"github.com/ridopark/options-engine/internal/models"
)

// Config holds the session start at which the frame builder resets the
// intraday VWAP. Indicator lookback periods and thresholds are fixed in
// BuildIndicatorFrame and are not configurable.
type Config struct {
	SessionStartHour   int
	SessionStartMinute int
}

// DefaultConfig is the standard NSE session-open reset (09:15 local).
func DefaultConfig() Config {
	return Config{SessionStartHour: 9, SessionStartMinute: 15}
}

// BuildIndicatorFrame computes every indicator over candles and assembles
// them into an IndicatorFrame. candles must be ordered oldest-first.
func BuildIndicatorFrame(candles []*models.Candle, cfg Config) *models.IndicatorFrame {
	frame := &models.IndicatorFrame{Candles: candles}
	if len(candles) == 0 {
		return frame
	}

	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}
	price := closes[len(closes)-1]

	ma := models.MovingAverages{
		SMA9:   SMA(closes, 9),
		SMA20:  SMA(closes, 20),
		SMA50:  SMA(closes, 50),
		SMA200: SMA(closes, 200),
		EMA9:   EMA(closes, 9),
		EMA20:  EMA(closes, 20),
		EMA50:  EMA(closes, 50),
		EMA200: EMA(closes, 200),
	}
	ma.EMACrossover = Crossover(ma.EMA9, ma.EMA20)
	if ma.SMA20 != 0 {
		ma.PriceToSMA20 = price / ma.SMA20
	}
	if ma.SMA50 != 0 {
		ma.PriceToSMA50 = price / ma.SMA50
	}
	frame.MovingAverages = ma

	rsi := RSI(closes, 14)
	macd, macdSignal, hist := MACD(closes, 12, 26, 9)
	stochK, stochD := Stochastic(highs, lows, closes, 14, 3)
	frame.Momentum = models.MomentumReading{
		RSI:           rsi,
		MACD:          macd,
		MACDSignal:    macdSignal,
		MACDHistogram: hist,
		MACDCrossover: MACDCrossover(closes, 12, 26, 9),
		StochasticK:   stochK,
		StochasticD:   stochD,
		CCI:           CCI(highs, lows, closes, 20),
		WilliamsR:     WilliamsR(highs, lows, closes, 14),
		MomentumRatio: MomentumRatio(closes, 14),
	}

	adx, plusDI, minusDI := ADX(candles, 14)
	stValue, stDirection, stFlipped := Supertrend(candles, 10, 3.0)
	psar, psarDirection := ParabolicSAR(candles, 0.02, 0.2)
	aroonUp, aroonDown, aroonOsc := Aroon(candles, 25)
	frame.Trend = models.TrendReading{
		ADX:                   adx,
		PlusDI:                plusDI,
		MinusDI:               minusDI,
		ADXBucket:             ADXBucket(adx),
		SupertrendValue:       stValue,
		SupertrendDirection:   stDirection,
		SupertrendFlipped:     stFlipped,
		Ichimoku:              Ichimoku(candles, 9, 26, 52),
		ParabolicSAR:          psar,
		ParabolicSARDirection: psarDirection,
		AroonUp:               aroonUp,
		AroonDown:             aroonDown,
		AroonOscillator:       aroonOsc,
	}

	upper, middle, lower, percentB, bandwidth := BollingerBands(closes, 20, 2.0)
	bandwidthPercentile := BandwidthPercentile(closes, 20, 100)
	atr := ATR(candles, 14)
	atrPercent := 0.0
	if price != 0 {
		atrPercent = (atr / price) * 100
	}
	keltnerUpper, keltnerLower := Keltner(closes, candles, 20, 2.0)
	donchianUpper, donchianLower, donchianBreakout := Donchian(candles, 20)
	frame.Volatility = models.VolatilityReading{
		BollingerUpper:       upper,
		BollingerMiddle:      middle,
		BollingerLower:       lower,
		BollingerPercentB:    percentB,
		BollingerBandwidth:   bandwidth,
		BollingerSqueeze:     bandwidthPercentile <= 0.1,
		BandwidthPercentile:  bandwidthPercentile,
		ATR:                  atr,
		ATRPercent:           atrPercent,
		ATRBucket:            ATRBucket(atrPercent),
		KeltnerUpper:         keltnerUpper,
		KeltnerLower:         keltnerLower,
		DonchianUpper:        donchianUpper,
		DonchianLower:        donchianLower,
		DonchianBreakout:     donchianBreakout,
		VolatilityRatio:      VolatilityRatio(candles, 5, 20),
		HistoricalVolatility: HistoricalVolatility(closes, 20, 252),
	}

	obvSeries := OBVSeries(candles)
	obv := 0.0
	if len(obvSeries) > 0 {
		obv = obvSeries[len(obvSeries)-1]
	}
	obvEMA := EMA(obvSeries, 20)
	relVol := RelativeVolume(candles, 20)
	deliveryPct, deliveryApprox := DeliveryPercent(candles, 20)
	frame.Volume = models.VolumeReading{
		VWAP:                VWAP(candles, cfg.SessionStartHour, cfg.SessionStartMinute),
		OBV:                 obv,
		OBVEMA:              obvEMA,
		PriceOBVDivergence:  PriceOBVDivergence(candles, obvSeries, 20),
		TopZones:            VolumeProfile(candles, 10),
		VolumeSMA5:          VolumeSMA(candles, 5),
		VolumeSMA20:         VolumeSMA(candles, 20),
		RelativeVolume:      relVol,
		VolumeSpike:         relVol >= 2,
		UltraHighVolume:     relVol >= 3,
		MoneyFlowIndex:      MoneyFlowIndex(candles, 14),
		DeliveryPercent:     deliveryPct,
		DeliveryApproximate: deliveryApprox,
	}

	return frame
}

// GetTrendStrength accumulates weighted bullish/bearish points across MA
// ordering, RSI zone, MACD state, Bollinger %B, Supertrend direction,
// price-vs-VWAP, ADX regime, and volume-spike direction, then labels the
// dominant side. Ties resolve to SIDEWAYS at strength 0.5.
func GetTrendStrength(frame *models.IndicatorFrame) (models.TrendBucket, float64) {
	bullish, bearish := 0.0, 0.0
	vote := func(bullishCond bool, bearishCond bool, weight float64) {
		if bullishCond {
			bullish += weight
		} else if bearishCond {
			bearish += weight
		}
	}

	ma := frame.MovingAverages
	vote(ma.EMA9 > ma.EMA20 && ma.EMA20 > ma.EMA50, ma.EMA9 < ma.EMA20 && ma.EMA20 < ma.EMA50, 1)
	vote(frame.Momentum.RSI > 50, frame.Momentum.RSI < 50, 1)
	vote(frame.Momentum.MACD > frame.Momentum.MACDSignal, frame.Momentum.MACD < frame.Momentum.MACDSignal, 1)
	vote(frame.Volatility.BollingerPercentB > 0.5, frame.Volatility.BollingerPercentB < 0.5, 1)
	vote(frame.Trend.SupertrendDirection > 0, frame.Trend.SupertrendDirection < 0, 1)
	if last := frame.Last(); last != nil && frame.Volume.VWAP != 0 {
		vote(last.Close > frame.Volume.VWAP, last.Close < frame.Volume.VWAP, 1)
	}
	if frame.Trend.ADX >= 20 {
		vote(frame.Trend.PlusDI > frame.Trend.MinusDI, frame.Trend.PlusDI < frame.Trend.MinusDI, 1)
	}
	if frame.Volume.VolumeSpike {
		if last := frame.Last(); last != nil {
			vote(last.Close > last.Open, last.Close < last.Open, 1)
		}
	}

	total := bullish + bearish
	if total == 0 || bullish == bearish {
		return models.TrendSideway, 0.5
	}
	if bullish > bearish {
		return models.TrendUp, bullish / total
	}
	return models.TrendDown, bearish / total
}

// GetIndicatorSignals inspects crossovers (EMA9/20, MACD, Supertrend flip,
// VWAP cross), oversold/overbought extremes, and volume signals; the
// direction is BUY CALL when the bullish list dominates under an UPTREND,
// BUY PUT under a DOWNTREND. Confidence is
// clamp(0.5 + |bullish-bearish|/10 + strength, 0.95).
func GetIndicatorSignals(frame *models.IndicatorFrame) models.Signal {
	label, strength := GetTrendStrength(frame)

	bullish, bearish := 0, 0
	vote := func(b, s bool) {
		if b {
			bullish++
		} else if s {
			bearish++
		}
	}

	vote(frame.MovingAverages.EMACrossover > 0, frame.MovingAverages.EMACrossover < 0)
	vote(frame.Momentum.MACDCrossover > 0, frame.Momentum.MACDCrossover < 0)
	vote(frame.Trend.SupertrendFlipped && frame.Trend.SupertrendDirection > 0, frame.Trend.SupertrendFlipped && frame.Trend.SupertrendDirection < 0)
	if last := frame.Last(); last != nil && frame.Volume.VWAP != 0 {
		vote(last.Close > frame.Volume.VWAP, last.Close < frame.Volume.VWAP)
	}
	vote(IsOversold(frame.Momentum.RSI, frame.Momentum.StochasticK, frame.Momentum.WilliamsR),
		IsOverbought(frame.Momentum.RSI, frame.Momentum.StochasticK, frame.Momentum.WilliamsR))
	vote(frame.Volume.VolumeSpike && last2Up(frame), frame.Volume.VolumeSpike && !last2Up(frame))

	delta := bullish - bearish

	kind := models.Wait
	reason := "mixed indicator signals"
	switch {
	case label == models.TrendUp && bullish > bearish:
		kind = models.BuyCall
		reason = "uptrend with bullish indicator basket"
	case label == models.TrendDown && bearish > bullish:
		kind = models.BuyPut
		reason = "downtrend with bearish indicator basket"
	}

	confidence := 0.5 + math.Abs(float64(delta))/10 + strength
	if confidence > 0.95 {
		confidence = 0.95
	}

	return models.Signal{
		Kind:       kind,
		Confidence: confidence,
		Reason:     reason,
		Source:     "indicators",
	}
}

func last2Up(frame *models.IndicatorFrame) bool {
	last := frame.Last()
	return last != nil && last.Close > last.Open
}
