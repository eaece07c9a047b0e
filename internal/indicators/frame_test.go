package indicators

import (
	"testing"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

func flatCandles(n int, price float64) []*models.Candle {
	candles := make([]*models.Candle, n)
	base := time.Date(2025, 1, 2, 9, 15, 0, 0, time.UTC)
	for i := range candles {
		candles[i] = &models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Open:      price, High: price, Low: price, Close: price,
			Volume: 1000,
		}
	}
	return candles
}

// A constant candle series (O=H=L=C=100 over 60 bars, volume=1000)
// should read as neutral across every indicator: RSI=50, MACD=0,
// trend=SIDEWAYS strength=0.5.
func TestBuildIndicatorFrame_ConstantSeriesIsNeutral(t *testing.T) {
	candles := flatCandles(60, 100)
	frame := BuildIndicatorFrame(candles, DefaultConfig())

	if frame.Momentum.RSI != 50 {
		t.Fatalf("expected neutral RSI 50 on constant series, got %v", frame.Momentum.RSI)
	}
	if frame.Momentum.MACD != 0 {
		t.Fatalf("expected MACD 0 on constant series, got %v", frame.Momentum.MACD)
	}

	trend, strength := GetTrendStrength(frame)
	if trend != models.TrendSideway {
		t.Fatalf("expected SIDEWAYS trend on constant series, got %s", trend)
	}
	if strength != 0.5 {
		t.Fatalf("expected strength 0.5 on constant series, got %v", strength)
	}
}

func TestBuildIndicatorFrame_NoNaNWithShortHistory(t *testing.T) {
	candles := flatCandles(3, 100)
	frame := BuildIndicatorFrame(candles, DefaultConfig())

	if frame.Trend.ADX != 25 {
		t.Fatalf("expected ADX neutral default 25 with short history, got %v", frame.Trend.ADX)
	}
	if frame.Volatility.BollingerBandwidth < 0 {
		t.Fatalf("bollinger bandwidth should never be negative")
	}
	for _, v := range []float64{
		frame.Momentum.RSI, frame.Momentum.MACD, frame.Trend.ADX,
		frame.Volatility.ATR, frame.Volatility.BollingerBandwidth,
	} {
		if v != v { // NaN check
			t.Fatalf("indicator frame published a NaN value")
		}
	}
}

// Appending candles to a prefix must not retroactively change indicator
// values already computed over that prefix beyond each indicator's own
// lookback window.
func TestBuildIndicatorFrame_PrefixExtensionStable(t *testing.T) {
	base := flatCandles(30, 100)
	extended := append(append([]*models.Candle{}, base...), flatCandles(5, 105)...)

	frameBase := BuildIndicatorFrame(base, DefaultConfig())
	frameExtended := BuildIndicatorFrame(extended[:30], DefaultConfig())

	if frameBase.Momentum.RSI != frameExtended.Momentum.RSI {
		t.Fatalf("RSI over an identical prefix should be stable, got %v vs %v",
			frameBase.Momentum.RSI, frameExtended.Momentum.RSI)
	}
}

func TestGetIndicatorSignals_WaitOnConstantSeries(t *testing.T) {
	candles := flatCandles(60, 100)
	frame := BuildIndicatorFrame(candles, DefaultConfig())

	signal := GetIndicatorSignals(frame)
	if signal.Kind != models.Wait {
		t.Fatalf("expected WAIT on constant series, got %s", signal.Kind)
	}
}
