package tradelog

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/models"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := t.TempDir() + "/trades.jsonl"
	j, err := NewJournal(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	return j
}

func sampleTrade() models.TradeRecord {
	return models.TradeRecord{
		Index:      "NIFTY",
		Signal:     models.BuyCall,
		EntryTime:  time.Date(2025, 1, 2, 9, 20, 0, 0, time.UTC),
		EntryPrice: 100,
		Quantity:   50,
		Strike:     22500,
		Expiry:     "2025-01-09",
	}
}

func TestLog_AssignsIDAndOpenStatus(t *testing.T) {
	j := newTestJournal(t)

	id, err := j.Log(sampleTrade())
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a non-empty trade id")
	}

	records, err := j.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Status != models.StatusOpen {
		t.Fatalf("expected OPEN status, got %s", records[0].Status)
	}
}

func TestLog_RejectsMissingRequiredFields(t *testing.T) {
	j := newTestJournal(t)

	trade := sampleTrade()
	trade.Strike = 0
	if _, err := j.Log(trade); err == nil {
		t.Fatalf("expected an error for a trade missing strike")
	}
}

func TestLog_RejectsNegativeQuantity(t *testing.T) {
	j := newTestJournal(t)

	trade := sampleTrade()
	trade.Quantity = -50
	if _, err := j.Log(trade); err != models.ErrNegativeQuantity {
		t.Fatalf("expected ErrNegativeQuantity, got %v", err)
	}
}

func TestUpdate_ClosingBothExitFieldsComputesPnLAndStatus(t *testing.T) {
	j := newTestJournal(t)

	id, err := j.Log(sampleTrade())
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	exitTime := time.Date(2025, 1, 2, 14, 0, 0, 0, time.UTC)
	exitPrice := 130.0
	if err := j.Update(id, models.TradePatch{ExitTime: &exitTime, ExitPrice: &exitPrice}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	records, _ := j.All()
	if records[0].Status != models.StatusClosed {
		t.Fatalf("expected CLOSED status, got %s", records[0].Status)
	}
	if *records[0].PnL != 1500 {
		t.Fatalf("expected pnl (130-100)*50=1500, got %v", *records[0].PnL)
	}
}

func TestUpdate_UnknownTradeID(t *testing.T) {
	j := newTestJournal(t)
	if err := j.Update("does-not-exist", models.TradePatch{}); err != models.ErrUnknownTrade {
		t.Fatalf("expected ErrUnknownTrade, got %v", err)
	}
}

func TestByIndexAndByStatus(t *testing.T) {
	j := newTestJournal(t)
	niftyID, _ := j.Log(sampleTrade())

	other := sampleTrade()
	other.Index = "BANKNIFTY"
	_, err := j.Log(other)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	records, _ := j.All()
	niftyRecords := ByIndex(records, "NIFTY")
	if len(niftyRecords) != 1 || niftyRecords[0].TradeID != niftyID {
		t.Fatalf("expected exactly the NIFTY trade, got %+v", niftyRecords)
	}

	openRecords := ByStatus(records, models.StatusOpen)
	if len(openRecords) != 2 {
		t.Fatalf("expected both trades OPEN, got %d", len(openRecords))
	}
}
