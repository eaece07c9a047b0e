package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/pkg/api/types"
)

// HealthHandler reports this process's own liveness. It has no external
// dependency to probe — the engine's only persisted state is the JSON
// journal/report directory the other handlers already read directly.
type HealthHandler struct {
	logger  zerolog.Logger
	version string
}

// NewHealthHandler creates a health check handler.
func NewHealthHandler(logger zerolog.Logger, version string) *HealthHandler {
	return &HealthHandler{logger: logger.With().Str("component", "health_handler").Logger(), version: version}
}

// GetHealth handles GET /health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	correlationID := uuid.New().String()

	response := types.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   h.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Correlation-ID", correlationID)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode health response")
	}
}
