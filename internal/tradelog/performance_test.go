package tradelog

import (
	"testing"
	"time"

	"github.com/ridopark/options-engine/internal/models"
)

func closedTrade(index string, pnl float64, exitTime time.Time) models.TradeRecord {
	return models.TradeRecord{
		Index:     index,
		Signal:    models.BuyCall,
		Status:    models.StatusClosed,
		EntryTime: exitTime.Add(-time.Hour),
		ExitTime:  &exitTime,
		PnL:       &pnl,
	}
}

func TestComputePerformance_CountsAndWinRate(t *testing.T) {
	day := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	records := []models.TradeRecord{
		closedTrade("NIFTY", 500, day),
		closedTrade("NIFTY", -200, day.Add(time.Hour)),
		{Index: "NIFTY", Status: models.StatusOpen, EntryTime: day},
	}

	view := ComputePerformance(records)
	if view.TotalTrades != 3 {
		t.Fatalf("expected 3 total trades, got %d", view.TotalTrades)
	}
	if view.OpenTrades != 1 || view.ClosedTrades != 2 {
		t.Fatalf("expected 1 open / 2 closed, got open=%d closed=%d", view.OpenTrades, view.ClosedTrades)
	}
	if view.WinCount != 1 || view.LossCount != 1 {
		t.Fatalf("expected 1 win / 1 loss, got win=%d loss=%d", view.WinCount, view.LossCount)
	}
	if view.WinRate != 0.5 {
		t.Fatalf("expected 0.5 win rate, got %v", view.WinRate)
	}
	if view.TotalPnL != 300 {
		t.Fatalf("expected total pnl 300, got %v", view.TotalPnL)
	}
	if got := view.ByIndex["NIFTY"].Trades; got != 2 {
		t.Fatalf("expected 2 closed NIFTY trades bucketed, got %d", got)
	}
}

func TestComputePerformance_DrawdownTracksPeakToTrough(t *testing.T) {
	day := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	records := []models.TradeRecord{
		closedTrade("NIFTY", 1000, day),
		closedTrade("NIFTY", -600, day.Add(time.Hour)),
		closedTrade("NIFTY", -100, day.Add(2*time.Hour)),
	}

	view := ComputePerformance(records)
	if view.MaxDrawdown != 700 {
		t.Fatalf("expected max drawdown 700 (peak 1000, trough 300), got %v", view.MaxDrawdown)
	}
	if len(view.EquityCurve) != 3 {
		t.Fatalf("expected an equity point per closed trade, got %d", len(view.EquityCurve))
	}
}

func TestComputePerformance_EmptyRecordsIsZeroValue(t *testing.T) {
	view := ComputePerformance(nil)
	if view.TotalTrades != 0 || view.WinRate != 0 || view.TotalPnL != 0 {
		t.Fatalf("expected a zero-value view for no records, got %+v", view)
	}
}
