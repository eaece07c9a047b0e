package orchestrator

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/ridopark/options-engine/internal/models"
)

// RunAll runs one analysis cycle per index concurrently. A panic in any
// single index's cycle is recovered and turned into an error report rather
// than bringing down the other indices' cycles.
func (o *Orchestrator) RunAll(ctx context.Context, indices []models.Index) []*Report {
	p := pool.NewWithResults[*Report]().WithErrors().WithContext(ctx)

	for _, index := range indices {
		index := index
		p.Go(func(ctx context.Context) (*Report, error) {
			return o.runCycleSafely(ctx, index), nil
		})
	}

	reports, _ := p.Wait()
	return reports
}

func (o *Orchestrator) runCycleSafely(ctx context.Context, index models.Index) (report *Report) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Str("index", string(index)).Interface("panic", r).Msg("cycle panicked")
			report = &Report{Index: index, Error: fmt.Sprintf("cycle panicked: %v", r)}
		}
	}()
	return o.RunCycle(ctx, index)
}
