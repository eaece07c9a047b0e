package orchestrator

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/external"
	"github.com/ridopark/options-engine/internal/models"
	"github.com/ridopark/options-engine/internal/tradelog"
)

type fakeCandleSource struct {
	candles []*models.Candle
	err     error
}

func (f *fakeCandleSource) FetchCandles(ctx context.Context, index models.Index) ([]*models.Candle, error) {
	return f.candles, f.err
}

type fakeChainSource struct {
	snapshot *models.OptionChainSnapshot
	err      error
}

func (f *fakeChainSource) FetchChain(ctx context.Context, index models.Index) (*models.OptionChainSnapshot, error) {
	return f.snapshot, f.err
}

type fakeDispatcher struct {
	calls int
}

func (f *fakeDispatcher) PlaceOrder(ctx context.Context, order external.Order) (external.OrderAck, error) {
	f.calls++
	return external.OrderAck{OrderNumber: "SYN-1", Status: "synthetic"}, nil
}

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

func flatSnapshot(underlying float64) *models.OptionChainSnapshot {
	return &models.OptionChainSnapshot{
		Underlying: underlying,
		FetchedAt:  time.Now(),
		Expiry:     "2025-01-09",
		Strikes: []models.StrikeRow{
			{Strike: underlying - 100, CE: models.Leg{OpenInterest: 30, LTP: 120}, PE: models.Leg{OpenInterest: 40, LTP: 20}},
			{Strike: underlying, CE: models.Leg{OpenInterest: 50, LTP: 60}, PE: models.Leg{OpenInterest: 50, LTP: 60}},
			{Strike: underlying + 100, CE: models.Leg{OpenInterest: 20, LTP: 20}, PE: models.Leg{OpenInterest: 60, LTP: 130}},
		},
	}
}

func newTestOrchestrator(t *testing.T, candles []*models.Candle, snapshot *models.OptionChainSnapshot, dispatcher external.OrderDispatcher) (*Orchestrator, *tradelog.Journal) {
	t.Helper()
	path := t.TempDir() + "/trades.jsonl"
	journal, err := tradelog.NewJournal(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	cfg := Config{
		RiskProfile:    models.Moderate,
		AccountBalance: 100000,
		RiskPerTrade:   0.01,
		ReportDir:      t.TempDir(),
	}
	o := New(cfg, &fakeCandleSource{candles: candles}, &fakeChainSource{snapshot: snapshot}, nil, dispatcher, journal, zerolog.Nop())
	return o, journal
}

func TestRunCycle_FlatMarketWaits(t *testing.T) {
	o, _ := newTestOrchestrator(t, flatCandles(60, 100), flatSnapshot(100), nil)

	report := o.RunCycle(context.Background(), models.NIFTY)
	if report.Error != "" {
		t.Fatalf("unexpected error: %s", report.Error)
	}
	if report.Decision.Kind != models.Wait {
		t.Fatalf("expected WAIT on a flat market, got %s", report.Decision.Kind)
	}
	if report.Decision.Action != models.ActionNone {
		t.Fatalf("expected NO ACTION, got %s", report.Decision.Action)
	}
	if report.TradeID != "" {
		t.Fatalf("expected no trade to be logged for a WAIT decision")
	}
}

func TestRunCycle_AbortsOnEmptyCandles(t *testing.T) {
	o, _ := newTestOrchestrator(t, nil, flatSnapshot(100), nil)

	report := o.RunCycle(context.Background(), models.NIFTY)
	if report.Error == "" {
		t.Fatalf("expected an aborted-cycle error for an empty candle sequence")
	}
	if report.Decision != nil {
		t.Fatalf("no decision should be produced for an aborted cycle")
	}
}

func TestRunCycle_CandleFetchFailureAbortsWithoutChainSideEffects(t *testing.T) {
	path := t.TempDir() + "/trades.jsonl"
	journal, err := tradelog.NewJournal(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	cfg := Config{RiskProfile: models.Moderate, AccountBalance: 100000, RiskPerTrade: 0.01, ReportDir: t.TempDir()}
	o := New(cfg, &fakeCandleSource{err: context.DeadlineExceeded}, &fakeChainSource{snapshot: flatSnapshot(100)}, nil, nil, journal, zerolog.Nop())

	report := o.RunCycle(context.Background(), models.NIFTY)
	if report.Error == "" {
		t.Fatalf("expected the cycle to abort when the candle source fails")
	}

	records, err := journal.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no trade records after an aborted cycle, got %d", len(records))
	}
}

func TestCloseTrade_ComputesPnLAndClosesStatus(t *testing.T) {
	path := t.TempDir() + "/trades.jsonl"
	journal, err := tradelog.NewJournal(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	cfg := Config{RiskProfile: models.Moderate, AccountBalance: 100000, RiskPerTrade: 0.01, ReportDir: t.TempDir()}
	o := New(cfg, &fakeCandleSource{}, &fakeChainSource{}, nil, nil, journal, zerolog.Nop())

	tradeID, err := journal.Log(models.TradeRecord{
		Index: "NIFTY", Signal: models.BuyCall, EntryTime: time.Now(),
		EntryPrice: 100, Quantity: 50, Strike: 22500, Expiry: "2025-01-09",
	})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	if err := o.CloseTrade(tradeID, time.Now(), 106); err != nil {
		t.Fatalf("CloseTrade: %v", err)
	}

	records, _ := journal.All()
	if len(records) != 1 || records[0].Status != models.StatusClosed {
		t.Fatalf("expected one closed record, got %+v", records)
	}
	if *records[0].PnL != 300 {
		t.Fatalf("expected pnl 300, got %v", *records[0].PnL)
	}

	if _, err := os.Stat(cfg.ReportDir + "/performance.json"); err != nil {
		t.Fatalf("expected performance.json to be persisted: %v", err)
	}
}

func TestRunAll_RecoversPanicIntoErrorReport(t *testing.T) {
	path := t.TempDir() + "/trades.jsonl"
	journal, err := tradelog.NewJournal(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	cfg := Config{RiskProfile: models.Moderate, ReportDir: t.TempDir()}
	// A nil chain snapshot makes optionchain.Analyze dereference a nil
	// pointer, exercising the panic-to-error path RunAll must provide.
	o := New(cfg, &fakeCandleSource{candles: flatCandles(60, 100)}, &fakeChainSource{snapshot: nil}, nil, nil, journal, zerolog.Nop())

	reports := o.RunAll(context.Background(), []models.Index{models.NIFTY})
	if len(reports) != 1 {
		t.Fatalf("expected one report, got %d", len(reports))
	}
	if reports[0].Error == "" {
		t.Fatalf("expected the panicking cycle to surface as an error report")
	}
}
