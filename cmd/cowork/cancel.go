package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rainycowork/cowork/internal/signals"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the run in progress",
	Long: `Signal the run in this project to stop.

The running cowork process checks for the signal between execution waves:
subtasks already underway finish, nothing new is started, and the run
aborts with a cancellation error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		if err := signals.SendCancel(cwd); err != nil {
			return fmt.Errorf("send cancel signal: %w", err)
		}

		fmt.Printf("%s Cancel signal sent\n", color.YellowString("⚠"))
		return nil
	},
}
