package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the latest performance view computed from the trade journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		view, err := a.journal.Performance()
		if err != nil {
			return fmt.Errorf("compute performance: %w", err)
		}

		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal performance view: %w", err)
		}
		fmt.Println(string(data))
		return nil
	},
}
