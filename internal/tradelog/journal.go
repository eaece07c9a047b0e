// Package tradelog is the append-only trade journal and the deterministic
// performance-metrics engine recomputed from it.
package tradelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/models"
)

// Journal is a single-writer, append-only JSON-lines trade log backed by a
// file on disk. Writers serialize through mu; readers see a consistent
// snapshot produced by a fresh recompute of PerformanceView.
type Journal struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
	serial int
}

// NewJournal opens (creating if absent) the journal file at path.
func NewJournal(path string, logger zerolog.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("tradelog: create journal directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tradelog: open journal: %w", err)
	}
	defer f.Close()

	j := &Journal{path: path, logger: logger.With().Str("component", "tradelog").Logger()}
	j.serial = j.countRecords()
	return j, nil
}

func (j *Journal) countRecords() int {
	f, err := os.Open(j.path)
	if err != nil {
		return 0
	}
	defer f.Close()
	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		count++
	}
	return count
}

// Log validates the required fields, assigns a globally unique trade id,
// defaults status to OPEN, appends the record, and returns the new id.
func (j *Journal) Log(trade models.TradeRecord) (string, error) {
	if trade.Index == "" || trade.Signal == "" || trade.EntryTime.IsZero() || trade.EntryPrice == 0 || trade.Quantity == 0 || trade.Strike == 0 || trade.Expiry == "" {
		return "", fmt.Errorf("%w: trade missing a required field", models.ErrInvalidInput)
	}
	if trade.Quantity < 0 {
		return "", models.ErrNegativeQuantity
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.serial++
	// Counter first so trade ids are strictly increasing; the timestamp
	// suffix disambiguates journals restarted after truncation.
	trade.TradeID = fmt.Sprintf("TRADE-%d-%s", j.serial, time.Now().Format("20060102150405"))
	trade.Status = models.StatusOpen

	if err := j.append(trade); err != nil {
		return "", err
	}
	j.logger.Info().Str("trade_id", trade.TradeID).Str("index", trade.Index).Msg("trade logged")
	return trade.TradeID, nil
}

// Update applies patch to the record identified by tradeID. Only exit
// fields, status, stop_loss, target, and notes may be mutated. Supplying
// both ExitPrice and ExitTime auto-computes pnl and sets status CLOSED.
func (j *Journal) Update(tradeID string, patch models.TradePatch) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	records, err := j.readAll()
	if err != nil {
		return err
	}

	found := false
	for i, r := range records {
		if r.TradeID != tradeID {
			continue
		}
		found = true
		applyPatch(&records[i], patch)
		break
	}
	if !found {
		return models.ErrUnknownTrade
	}

	return j.rewrite(records)
}

func applyPatch(trade *models.TradeRecord, patch models.TradePatch) {
	if patch.ExitTime != nil {
		trade.ExitTime = patch.ExitTime
	}
	if patch.ExitPrice != nil {
		trade.ExitPrice = patch.ExitPrice
	}
	if patch.StopLoss != nil {
		trade.StopLoss = patch.StopLoss
	}
	if patch.Target != nil {
		trade.Target = patch.Target
	}
	if patch.Notes != nil {
		trade.Notes = *patch.Notes
	}
	if patch.Status != nil {
		trade.Status = *patch.Status
	}
	if patch.PnL != nil {
		trade.PnL = patch.PnL
	}

	if trade.ExitPrice != nil && trade.ExitTime != nil {
		pnl := float64(trade.Direction()) * (*trade.ExitPrice - trade.EntryPrice) * float64(trade.Quantity)
		trade.PnL = &pnl
		trade.Status = models.StatusClosed
	}
}

func (j *Journal) append(trade models.TradeRecord) error {
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("tradelog: open for append: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(trade)
}

func (j *Journal) rewrite(records []models.TradeRecord) error {
	tmp := j.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("tradelog: open temp journal: %w", err)
	}
	encoder := json.NewEncoder(f)
	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			f.Close()
			return err
		}
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, j.path)
}

// readAll parses every line of the journal, skipping malformed records
// with a warning rather than failing the read.
func (j *Journal) readAll() ([]models.TradeRecord, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("tradelog: open journal: %w", err)
	}
	defer f.Close()

	var records []models.TradeRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var r models.TradeRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			j.logger.Warn().Int("line", line).Err(err).Msg("skipping malformed trade record")
			continue
		}
		records = append(records, r)
	}
	return records, scanner.Err()
}

// All returns every record in the journal (the mutation history).
func (j *Journal) All() ([]models.TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.readAll()
}

// ByIndex filters records by index.
func ByIndex(records []models.TradeRecord, index string) []models.TradeRecord {
	var out []models.TradeRecord
	for _, r := range records {
		if r.Index == index {
			out = append(out, r)
		}
	}
	return out
}

// ByDateRange filters records whose entry time falls in [start, end)
// (inclusive start, exclusive end).
func ByDateRange(records []models.TradeRecord, start, end time.Time) []models.TradeRecord {
	var out []models.TradeRecord
	for _, r := range records {
		if !r.EntryTime.Before(start) && r.EntryTime.Before(end) {
			out = append(out, r)
		}
	}
	return out
}

// ByStatus filters records by lifecycle status.
func ByStatus(records []models.TradeRecord, status models.TradeStatus) []models.TradeRecord {
	var out []models.TradeRecord
	for _, r := range records {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}

// BySignal filters records by signal kind.
func BySignal(records []models.TradeRecord, kind models.SignalKind) []models.TradeRecord {
	var out []models.TradeRecord
	for _, r := range records {
		if r.Signal == kind {
			out = append(out, r)
		}
	}
	return out
}
