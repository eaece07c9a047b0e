package models

import "time"

// Candle is a single OHLCV bar. Volume may be zero when the source has none.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`

	// Delivery is the fraction (0-1) of traded volume delivered, when the
	// source supplies it. DeliveryApproximate is set when it was stubbed.
	Delivery            float64 `json:"delivery,omitempty"`
	DeliveryApproximate bool    `json:"delivery_approximate,omitempty"`
}

// TrendBucket is the closed set of trend labels used across the engine.
type TrendBucket string

const (
	TrendUp      TrendBucket = "UPTREND"
	TrendDown    TrendBucket = "DOWNTREND"
	TrendSideway TrendBucket = "SIDEWAYS"
)

// ADXBucket labels the strength of a trend as measured by ADX.
type ADXBucket string

const (
	ADXWeak       ADXBucket = "Weak"
	ADXModerate   ADXBucket = "Moderate"
	ADXStrong     ADXBucket = "Strong"
	ADXVeryStrong ADXBucket = "Very Strong"
)

// IndicatorFrame is a candle sequence augmented with every indicator the
// engine computes. Every numeric field is guaranteed finite (NaN-free);
// indicators short on history fall back to the documented neutral default
// instead of propagating NaN/Inf.
type IndicatorFrame struct {
	Candles []*Candle `json:"-"`

	MovingAverages MovingAverages   `json:"moving_averages"`
	Momentum       MomentumReading  `json:"momentum"`
	Trend          TrendReading     `json:"trend"`
	Volatility     VolatilityReading `json:"volatility"`
	Volume         VolumeReading    `json:"volume"`
}

// Last returns the most recent candle, or nil if the frame is empty.
func (f *IndicatorFrame) Last() *Candle {
	if len(f.Candles) == 0 {
		return nil
	}
	return f.Candles[len(f.Candles)-1]
}

type MovingAverages struct {
	SMA9   float64 `json:"sma_9"`
	SMA20  float64 `json:"sma_20"`
	SMA50  float64 `json:"sma_50"`
	SMA200 float64 `json:"sma_200"`
	EMA9   float64 `json:"ema_9"`
	EMA20  float64 `json:"ema_20"`
	EMA50  float64 `json:"ema_50"`
	EMA200 float64 `json:"ema_200"`

	// EMACrossover is +1 when EMA9 > EMA20, -1 when EMA9 < EMA20, 0 on a tie.
	EMACrossover int `json:"ema_crossover"`

	PriceToSMA20 float64 `json:"price_to_sma20"`
	PriceToSMA50 float64 `json:"price_to_sma50"`
}

type MomentumReading struct {
	RSI            float64 `json:"rsi"`
	MACD           float64 `json:"macd"`
	MACDSignal     float64 `json:"macd_signal"`
	MACDHistogram  float64 `json:"macd_histogram"`
	MACDCrossover  int     `json:"macd_crossover"` // +1 bullish cross, -1 bearish cross, 0 none
	StochasticK    float64 `json:"stochastic_k"`
	StochasticD    float64 `json:"stochastic_d"`
	CCI            float64 `json:"cci"`
	WilliamsR      float64 `json:"williams_r"`
	MomentumRatio  float64 `json:"momentum_ratio"`
}

type TrendReading struct {
	ADX       float64   `json:"adx"`
	PlusDI    float64   `json:"plus_di"`
	MinusDI   float64   `json:"minus_di"`
	ADXBucket ADXBucket `json:"adx_bucket"`

	SupertrendValue     float64 `json:"supertrend_value"`
	SupertrendDirection int     `json:"supertrend_direction"` // +1 up, -1 down, 0 undetermined
	SupertrendFlipped   bool    `json:"supertrend_flipped"`

	Ichimoku Ichimoku `json:"ichimoku"`

	ParabolicSAR          float64 `json:"parabolic_sar"`
	ParabolicSARDirection int     `json:"parabolic_sar_direction"`

	AroonUp       float64 `json:"aroon_up"`
	AroonDown     float64 `json:"aroon_down"`
	AroonOscillator float64 `json:"aroon_oscillator"`
}

type Ichimoku struct {
	Tenkan        float64 `json:"tenkan"`
	Kijun         float64 `json:"kijun"`
	SenkouA       float64 `json:"senkou_a"`
	SenkouB       float64 `json:"senkou_b"`
	Chikou        float64 `json:"chikou"`
	CloudBullish  bool    `json:"cloud_bullish"`
	PriceAboveCloud bool  `json:"price_above_cloud"`
}

type VolatilityReading struct {
	BollingerUpper     float64 `json:"bollinger_upper"`
	BollingerMiddle    float64 `json:"bollinger_middle"`
	BollingerLower     float64 `json:"bollinger_lower"`
	BollingerPercentB  float64 `json:"bollinger_percent_b"`
	BollingerBandwidth float64 `json:"bollinger_bandwidth"`
	BollingerSqueeze   bool    `json:"bollinger_squeeze"`
	BandwidthPercentile float64 `json:"bandwidth_percentile"`

	ATR          float64   `json:"atr"`
	ATRPercent   float64   `json:"atr_percent"`
	ATRBucket    ADXBucket `json:"atr_bucket"`

	KeltnerUpper float64 `json:"keltner_upper"`
	KeltnerLower float64 `json:"keltner_lower"`

	DonchianUpper    float64 `json:"donchian_upper"`
	DonchianLower    float64 `json:"donchian_lower"`
	DonchianBreakout int     `json:"donchian_breakout"` // +1 up, -1 down, 0 none

	VolatilityRatio    float64 `json:"volatility_ratio"`
	HistoricalVolatility float64 `json:"historical_volatility"`
}

type VolumeReading struct {
	VWAP              float64 `json:"vwap"`
	OBV               float64 `json:"obv"`
	OBVEMA            float64 `json:"obv_ema"`
	PriceOBVDivergence bool   `json:"price_obv_divergence"`

	TopZones []VolumeZone `json:"top_zones"`

	VolumeSMA5  float64 `json:"volume_sma_5"`
	VolumeSMA20 float64 `json:"volume_sma_20"`
	RelativeVolume float64 `json:"relative_volume"`
	VolumeSpike    bool   `json:"volume_spike"`     // >= 2x
	UltraHighVolume bool  `json:"ultra_high_volume"` // >= 3x

	MoneyFlowIndex float64 `json:"money_flow_index"`

	DeliveryPercent     float64 `json:"delivery_percent"`
	DeliveryApproximate bool    `json:"delivery_approximate"`
}

type VolumeZone struct {
	PriceLow  float64 `json:"price_low"`
	PriceHigh float64 `json:"price_high"`
	Volume    int64   `json:"volume"`
}
