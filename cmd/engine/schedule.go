package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ridopark/options-engine/internal/orchestrator"
)

var cronExpr string

func init() {
	scheduleCmd.Flags().StringVar(&cronExpr, "cron", "*/5 9-15 * * 1-5", "cron expression driving each analysis tick")
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the analysis cycle on a cron schedule until signalled",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		sched := orchestrator.NewScheduler(a.orchestrator, a.session(), a.indices, a.cfg.Engine.ReportDir, a.log)
		if err := sched.Start(cronExpr); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.log.Info().Str("cron", cronExpr).Msg("scheduler started")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		a.log.Info().Msg("shutting down scheduler")
		sched.Stop()
		return nil
	},
}
