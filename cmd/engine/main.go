package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridopark/options-engine/internal/models"
)

var (
	rootCmd = &cobra.Command{
		Use:   "options-engine",
		Short: "Indian index options decision engine",
		Long:  `A decision engine for NIFTY/BANKNIFTY/FINNIFTY/SENSEX/MIDCPNIFTY index options: candle and option-chain analysis, signal fusion, and trade journaling.`,
	}

	// Global flags
	configFile string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is config/.env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
}

// Exit codes: 0 normal, 1 configuration or input error, 2 unrecoverable
// external I/O after retries.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, models.ErrExternalUnavailable) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
