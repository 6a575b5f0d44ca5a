package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cowork",
	Short: "Multi-agent task orchestration",
	Long: `Cowork decomposes a complex task into a validated dependency graph of
subtasks, assigns each subtask to a specialist worker, executes
independent subtasks in parallel, and aggregates the partial results
into one coherent answer.

Core capabilities:
- Decomposes work into a dependency-ordered subtask plan
- Validates the plan (unique IDs, known references, no cycles)
- Matches subtasks to specialist workers by category
- Runs independent subtasks concurrently in dependency waves
- Aggregates partial outputs into a final result`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
