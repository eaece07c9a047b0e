package tradelog

import (
	"math"
	"sort"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

const tradingDaysPerYear = 252

type accum struct {
	trades   int
	wins     int
	totalPnL float64
}

func (a *accum) add(pnl float64) {
	a.trades++
	if pnl > 0 {
		a.wins++
	}
	a.totalPnL += pnl
}

func (a *accum) metrics() *models.BucketMetrics {
	m := &models.BucketMetrics{Trades: a.trades, TotalPnL: a.totalPnL}
	if a.trades > 0 {
		m.WinRate = float64(a.wins) / float64(a.trades)
		m.AvgPnL = a.totalPnL / float64(a.trades)
	}
	return m
}

func bucketOf[K comparable](m map[K]*accum, key K) *accum {
	a, ok := m[key]
	if !ok {
		a = &accum{}
		m[key] = a
	}
	return a
}

func finalize[K comparable](src map[K]*accum) map[K]*models.BucketMetrics {
	out := make(map[K]*models.BucketMetrics, len(src))
	for k, v := range src {
		out[k] = v.metrics()
	}
	return out
}

// ComputePerformance recomputes a PerformanceView from scratch over records.
// It is a pure function of the closed-trade subset; callers own caching.
func ComputePerformance(records []models.TradeRecord) models.PerformanceView {
	var view models.PerformanceView

	view.TotalTrades = len(records)
	var closed []models.TradeRecord
	for _, r := range records {
		switch r.Status {
		case models.StatusOpen:
			view.OpenTrades++
		case models.StatusClosed:
			closed = append(closed, r)
		}
	}
	view.ClosedTrades = len(closed)

	sort.Slice(closed, func(i, j int) bool {
		ti, tj := closed[i].ExitTime, closed[j].ExitTime
		if ti == nil || tj == nil {
			return false
		}
		return ti.Before(*tj)
	})

	byIndex := map[string]*accum{}
	bySignal := map[models.SignalKind]*accum{}
	byMonth := map[string]*accum{}
	byHour := map[int]*accum{}
	bySentiment := map[string]*accum{}
	byFearGreed := map[models.FearGreedBucket]*accum{}

	var wins, losses []float64
	cumulative := 0.0
	peak := 0.0
	maxDrawdown := 0.0
	underwater, longestUnderwater := 0, 0

	for _, r := range closed {
		if r.PnL == nil {
			continue
		}
		pnl := *r.PnL
		switch {
		case pnl > 0:
			view.WinCount++
			wins = append(wins, pnl)
		case pnl < 0:
			view.LossCount++
			losses = append(losses, pnl)
		default:
			view.BreakevenCount++
		}
		view.TotalPnL += pnl

		cumulative += pnl
		if cumulative > peak {
			peak = cumulative
			underwater = 0
		} else {
			underwater++
			if underwater > longestUnderwater {
				longestUnderwater = underwater
			}
		}
		if peak-cumulative > maxDrawdown {
			maxDrawdown = peak - cumulative
		}

		if r.ExitTime != nil {
			view.EquityCurve = append(view.EquityCurve, models.EquityPoint{
				ExitTime:   *r.ExitTime,
				TradeID:    r.TradeID,
				PnL:        pnl,
				Cumulative: cumulative,
			})
		}

		bucketOf(byIndex, r.Index).add(pnl)
		bucketOf(bySignal, r.Signal).add(pnl)
		if r.ExitTime != nil {
			bucketOf(byMonth, r.ExitTime.Format("2006-01")).add(pnl)
			bucketOf(byHour, r.ExitTime.Hour()).add(pnl)
		}
		if r.Psychology != nil {
			bucketOf(bySentiment, string(r.Psychology.ContrarianBias)).add(pnl)
			bucketOf(byFearGreed, r.Psychology.Bucket).add(pnl)
		}
	}

	view.ByIndex = finalize(byIndex)
	view.BySignal = finalize(bySignal)
	view.ByMonth = finalize(byMonth)
	view.ByHour = finalize(byHour)
	view.BySentiment = finalize(bySentiment)
	view.ByFearGreedBand = finalize(byFearGreed)

	view.MaxDrawdown = maxDrawdown
	view.LongestUnderwater = longestUnderwater

	if view.ClosedTrades > 0 {
		view.WinRate = float64(view.WinCount) / float64(view.ClosedTrades)
	}
	grossWin := sumOf(wins)
	grossLoss := math.Abs(sumOf(losses))
	if grossLoss > 0 {
		view.ProfitFactor = grossWin / grossLoss
	}
	if len(wins) > 0 {
		view.AvgWin = grossWin / float64(len(wins))
	}
	if len(losses) > 0 {
		view.AvgLoss = sumOf(losses) / float64(len(losses))
	}
	if view.AvgLoss != 0 {
		view.WinLossRatio = view.AvgWin / math.Abs(view.AvgLoss)
	}

	allPnL := append(append([]float64{}, wins...), losses...)
	view.StdDevPnL = stddev(allPnL)

	dailyReturns := dailyReturnSeries(closed)
	view.Sharpe = sharpeRatio(dailyReturns)
	view.Sortino = sortinoRatio(dailyReturns)

	dailyWinRates := dailyWinRateSeries(closed)
	view.DailyWinRateMean = mean(dailyWinRates)
	view.DailyWinRateMedian = median(dailyWinRates)
	view.DailyWinRateStdDev = stddev(dailyWinRates)

	view.PatternEffectiveness = patternEffectiveness(closed)

	view.GeneratedAt = time.Now()
	return view
}

func patternEffectiveness(closed []models.TradeRecord) map[models.PatternID]float64 {
	patternPnL := map[models.PatternID][]float64{}
	for _, r := range closed {
		if r.PnL == nil {
			continue
		}
		for _, p := range r.PatternsDetected {
			patternPnL[p] = append(patternPnL[p], *r.PnL)
		}
	}
	out := make(map[models.PatternID]float64, len(patternPnL))
	for pattern, pnls := range patternPnL {
		wins := 0
		for _, v := range pnls {
			if v > 0 {
				wins++
			}
		}
		winRate := float64(wins) / float64(len(pnls))
		out[pattern] = winRate * mean(pnls)
	}
	return out
}

func sumOf(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sumOf(values) / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

func dailyReturnSeries(closed []models.TradeRecord) []float64 {
	byDay := map[string]float64{}
	for _, r := range closed {
		if r.PnL == nil || r.ExitTime == nil {
			continue
		}
		byDay[r.ExitTime.Format("2006-01-02")] += *r.PnL
	}
	out := make([]float64, 0, len(byDay))
	for _, v := range byDay {
		out = append(out, v)
	}
	return out
}

func dailyWinRateSeries(closed []models.TradeRecord) []float64 {
	type tally struct{ wins, total int }
	byDay := map[string]*tally{}
	for _, r := range closed {
		if r.PnL == nil || r.ExitTime == nil {
			continue
		}
		day := r.ExitTime.Format("2006-01-02")
		t, ok := byDay[day]
		if !ok {
			t = &tally{}
			byDay[day] = t
		}
		t.total++
		if *r.PnL > 0 {
			t.wins++
		}
	}
	out := make([]float64, 0, len(byDay))
	for _, t := range byDay {
		if t.total > 0 {
			out = append(out, float64(t.wins)/float64(t.total))
		}
	}
	return out
}

func sharpeRatio(dailyReturns []float64) float64 {
	sd := stddev(dailyReturns)
	if sd == 0 {
		return 0
	}
	return (mean(dailyReturns) / sd) * math.Sqrt(float64(tradingDaysPerYear))
}

func sortinoRatio(dailyReturns []float64) float64 {
	var negative []float64
	for _, v := range dailyReturns {
		if v < 0 {
			negative = append(negative, v)
		}
	}
	sd := stddev(negative)
	if sd == 0 {
		return 0
	}
	return (mean(dailyReturns) / sd) * math.Sqrt(float64(tradingDaysPerYear))
}
