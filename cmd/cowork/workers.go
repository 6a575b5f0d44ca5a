package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rainycowork/cowork/internal/config"
	"github.com/rainycowork/cowork/internal/worker"
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List worker categories and capabilities",
	Long: `Display the specialist worker categories, the capabilities of each,
and how many of each the current configuration registers per run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		counts := cfg.Workers.Counts()

		out := cmd.OutOrStdout()
		for _, typ := range worker.SpecialistTypes() {
			sp, err := worker.NewSpecialist("preview", typ, nil)
			if err != nil {
				continue
			}
			n := counts[string(typ)]
			countLabel := fmt.Sprintf("%d configured", n)
			if n == 0 {
				countLabel = color.YellowString("disabled")
			}
			fmt.Fprintf(out, "%s (%s)\n", color.CyanString(string(typ)), countLabel)
			fmt.Fprintf(out, "  capabilities: %s\n", strings.Join(sp.Capabilities(), ", "))
		}
		return nil
	},
}
