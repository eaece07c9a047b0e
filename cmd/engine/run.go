package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridopark/options-engine/internal/models"
	"github.com/ridopark/options-engine/internal/orchestrator"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one analysis cycle for every configured index and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		reports := a.orchestrator.RunAll(context.Background(), a.indices)
		succeeded := 0
		var externalErr error
		for _, report := range reports {
			if err := orchestrator.WriteReport(a.cfg.Engine.ReportDir, report); err != nil {
				a.log.Warn().Err(err).Str("index", string(report.Index)).Msg("failed to persist report")
			}
			if report.Error != "" {
				fmt.Fprintf(os.Stderr, "%s: cycle error: %s\n", report.Index, report.Error)
				if report.Err != nil && errors.Is(report.Err, models.ErrExternalUnavailable) {
					externalErr = report.Err
				}
				continue
			}
			succeeded++
			fmt.Printf("%s: %s (%s) confidence=%.2f\n", report.Index, report.Decision.Kind, report.Decision.Action, report.Decision.Confidence)
		}
		if succeeded == 0 && externalErr != nil {
			return fmt.Errorf("every cycle failed: %w", externalErr)
		}
		return nil
	},
}
