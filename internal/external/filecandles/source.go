// Package filecandles is the default CandleSource: it reads the ordered
// candle sequence for an index from a JSON file on disk. The candle-fetch
// transport is left open to the application; a broker/vendor feed belongs
// behind the same external.CandleSource interface, but this file source is
// what cmd/engine wires by default so the engine runs without a live
// market-data subscription.
package filecandles

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/models"
)

// Source loads candles from "<dir>/<INDEX>.json", one JSON array of
// models.Candle per index, sorted oldest-first.
type Source struct {
	dir    string
	logger zerolog.Logger
}

// New returns a Source that reads candle files from dir.
func New(dir string, logger zerolog.Logger) *Source {
	return &Source{dir: dir, logger: logger.With().Str("component", "filecandles").Logger()}
}

// FetchCandles reads and decodes "<dir>/<index>.json".
func (s *Source) FetchCandles(ctx context.Context, index models.Index) ([]*models.Candle, error) {
	path := filepath.Join(s.dir, string(index)+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", models.ErrExternalUnavailable, path, err)
	}

	var candles []*models.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", models.ErrInvalidInput, path, err)
	}

	s.logger.Debug().Str("index", string(index)).Int("candles", len(candles)).Msg("loaded candle file")
	return candles, nil
}
