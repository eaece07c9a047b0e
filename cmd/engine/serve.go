package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridopark/options-engine/pkg/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only reporting API over the persisted trade journal and reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		server := api.New(api.Config{
			Host:         a.cfg.Server.Host,
			Port:         a.cfg.Server.HTTPPort,
			ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(a.cfg.Server.WriteTimeout) * time.Second,
			EnableCORS:   a.cfg.Server.EnableCORS,
			ReportDir:    a.cfg.Engine.ReportDir,
			Version:      "1.0.0",
		}, a.journal, a.log)

		server.Start()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown reporting server: %w", err)
		}
		return nil
	},
}
