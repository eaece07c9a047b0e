package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/models"
	"github.com/ridopark/options-engine/internal/tradelog"
	"github.com/ridopark/options-engine/pkg/api/types"
)

// ReportHandler serves the engine's persisted JSON artifacts read-only:
// the trade journal, the computed performance view, and the latest
// per-index cycle report. It never triggers a cycle or mutates a trade —
// that remains the orchestrator's and the CLI's concern.
type ReportHandler struct {
	journal   *tradelog.Journal
	reportDir string
	logger    zerolog.Logger
}

// NewReportHandler creates a ReportHandler over journal and the directory
// the orchestrator writes per-cycle reports to.
func NewReportHandler(journal *tradelog.Journal, reportDir string, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		journal:   journal,
		reportDir: reportDir,
		logger:    logger.With().Str("component", "report_handler").Logger(),
	}
}

// GetTrades handles GET /api/v1/trades?index=NIFTY&status=OPEN&from=...&to=....
func (h *ReportHandler) GetTrades(w http.ResponseWriter, r *http.Request) {
	records, err := h.journal.All()
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "journal_read_failed", err)
		return
	}

	if index := r.URL.Query().Get("index"); index != "" {
		records = tradelog.ByIndex(records, strings.ToUpper(index))
	}
	if status := r.URL.Query().Get("status"); status != "" {
		records = tradelog.ByStatus(records, models.TradeStatus(strings.ToUpper(status)))
	}
	if signal := r.URL.Query().Get("signal"); signal != "" {
		records = tradelog.BySignal(records, models.SignalKind(strings.ToUpper(signal)))
	}
	if from, to, ok := parseDateRange(r); ok {
		records = tradelog.ByDateRange(records, from, to)
	}

	h.writeJSON(w, http.StatusOK, records)
}

// parseDateRange reads the optional from/to RFC3339 query params. A missing
// "to" defaults to now; a missing "from" disables range filtering entirely.
func parseDateRange(r *http.Request) (from, to time.Time, ok bool) {
	fromStr := r.URL.Query().Get("from")
	if fromStr == "" {
		return time.Time{}, time.Time{}, false
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	to = time.Now()
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = parsed
		}
	}
	return from, to, true
}

// GetPerformance handles GET /api/v1/performance.
func (h *ReportHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	view, err := h.journal.Performance()
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "performance_compute_failed", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// GetLatestReport handles GET /api/v1/reports/{index}, returning the most
// recently written per-cycle report for that index.
func (h *ReportHandler) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	index := strings.ToUpper(mux.Vars(r)["index"])

	entries, err := os.ReadDir(h.reportDir)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "report_dir_unreadable", err)
		return
	}

	prefix := index + "_report_"
	var latest string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if entry.Name() > latest {
			latest = entry.Name()
		}
	}
	if latest == "" {
		h.writeError(w, r, http.StatusNotFound, "no_report_found", nil)
		return
	}

	data, err := os.ReadFile(filepath.Join(h.reportDir, latest))
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "report_read_failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ListReports handles GET /api/v1/reports, returning report file names
// sorted newest first across every index.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.reportDir)
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "report_dir_unreadable", err)
		return
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	h.writeJSON(w, http.StatusOK, names)
}

func (h *ReportHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *ReportHandler) writeError(w http.ResponseWriter, r *http.Request, status int, code string, err error) {
	correlationID := uuid.New().String()
	message := code
	if err != nil {
		message = err.Error()
		h.logger.Error().Err(err).Str("correlation_id", correlationID).Str("path", r.URL.Path).Msg(code)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Correlation-ID", correlationID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	})
}
