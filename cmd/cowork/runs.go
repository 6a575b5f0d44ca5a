package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rainycowork/cowork/internal/state"
)

var runsFailed bool

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show run history",
	Long: `Display past orchestration runs recorded in the project database.

Without arguments, lists recent runs. With a run ID, shows that run's
subtasks and their outcomes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}

		dbPath := state.ProjectDBPath(cwd)
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			fmt.Println("No run history. Run 'cowork run <task>' to start.")
			return nil
		}

		db, err := state.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		if len(args) == 1 {
			return showRun(db, args[0])
		}
		return listRuns(db)
	},
}

func init() {
	runsCmd.Flags().BoolVar(&runsFailed, "failed", false, "List only failed runs")
}

func listRuns(db *state.DB) error {
	var filter *state.RunStatus
	if runsFailed {
		s := state.RunFailed
		filter = &s
	}

	runs, err := db.ListRuns(filter)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, r := range runs {
		desc := r.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Printf("%s  %s  %s  %d subtasks  %s\n",
			r.ID,
			statusLabel(r.Status),
			r.StartedAt.Local().Format(time.DateTime),
			r.SubTaskCount,
			desc,
		)
	}
	return nil
}

func showRun(db *state.DB, id string) error {
	run, err := db.GetRun(id)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}

	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Status:   %s\n", statusLabel(run.Status))
	fmt.Printf("Task:     %s\n", run.Description)
	fmt.Printf("Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	if run.CompletedAt != nil {
		fmt.Printf("Finished: %s\n", run.CompletedAt.Local().Format(time.DateTime))
	}
	if run.FailedCount > 0 {
		fmt.Printf("Failed:   %d subtask(s)\n", run.FailedCount)
	}

	subtasks, err := db.ListRunSubTasks(run.ID)
	if err != nil {
		return fmt.Errorf("list subtasks: %w", err)
	}
	if len(subtasks) > 0 {
		fmt.Println("\nSubtasks:")
		for _, st := range subtasks {
			line := fmt.Sprintf("  %s [%s] %s", st.SubTaskID, st.WorkerType, st.Description)
			switch st.Status {
			case "completed":
				fmt.Printf("%s %s\n", color.GreenString("✓"), line)
			case "failed":
				fmt.Printf("%s %s\n", color.RedString("✗"), line)
				if st.Error != "" {
					fmt.Printf("      %s\n", st.Error)
				}
			default:
				fmt.Printf("%s %s\n", color.YellowString("·"), line)
			}
		}
	}

	if run.Output != "" {
		fmt.Println("\nOutput:")
		fmt.Println(run.Output)
	}
	return nil
}

func statusLabel(s state.RunStatus) string {
	switch s {
	case state.RunCompleted:
		return color.GreenString("%-9s", string(s))
	case state.RunFailed:
		return color.RedString("%-9s", string(s))
	default:
		return color.YellowString("%-9s", string(s))
	}
}
