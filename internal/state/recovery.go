package state

import (
	"fmt"
	"time"
)

// InterruptedRun contains information about a run that was still marked
// running when the process last exited.
type InterruptedRun struct {
	RunID           string
	TaskID          string
	Description     string
	StartedAt       time.Time
	PendingSubTasks int
}

// RecoveryManager detects and cleans up interrupted runs on startup.
// Workers execute in-process, so a run left in the running state can only
// mean the previous process died before finishing it.
type RecoveryManager struct {
	db *DB
}

// NewRecoveryManager creates a new RecoveryManager with the given database.
func NewRecoveryManager(db *DB) *RecoveryManager {
	return &RecoveryManager{db: db}
}

// CheckForInterrupted returns every run still marked running, oldest last.
// Returns nil if there are none.
func (rm *RecoveryManager) CheckForInterrupted() ([]InterruptedRun, error) {
	status := RunRunning
	runs, err := rm.db.ListRuns(&status)
	if err != nil {
		return nil, fmt.Errorf("list running runs: %w", err)
	}

	var interrupted []InterruptedRun
	for _, r := range runs {
		subtasks, err := rm.db.ListRunSubTasks(r.ID)
		if err != nil {
			return nil, fmt.Errorf("list subtasks for run %s: %w", r.ID, err)
		}

		pending := 0
		for _, st := range subtasks {
			if st.Status == "pending" {
				pending++
			}
		}

		interrupted = append(interrupted, InterruptedRun{
			RunID:           r.ID,
			TaskID:          r.TaskID,
			Description:     r.Description,
			StartedAt:       r.StartedAt,
			PendingSubTasks: pending,
		})
	}

	return interrupted, nil
}

// AbandonRun marks an interrupted run failed. Its pending subtask records
// are marked failed as well so the history reflects what never executed.
func (rm *RecoveryManager) AbandonRun(runID string) error {
	run, err := rm.db.GetRun(runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	if run.Status != RunRunning {
		return fmt.Errorf("run %s is not running (status %s)", runID, run.Status)
	}

	subtasks, err := rm.db.ListRunSubTasks(runID)
	if err != nil {
		return err
	}

	failed := 0
	for _, st := range subtasks {
		if st.Status != "pending" {
			if st.Status == "failed" {
				failed++
			}
			continue
		}
		st.Status = "failed"
		st.Error = "interrupted before execution"
		if err := rm.db.UpdateRunSubTask(&st); err != nil {
			return err
		}
		failed++
	}

	return rm.db.FinishRun(runID, RunFailed, "run interrupted", failed)
}

// AbandonAll marks every interrupted run failed.
// Returns the number of runs abandoned.
func (rm *RecoveryManager) AbandonAll() (int, error) {
	interrupted, err := rm.CheckForInterrupted()
	if err != nil {
		return 0, err
	}

	for _, ir := range interrupted {
		if err := rm.AbandonRun(ir.RunID); err != nil {
			return 0, err
		}
	}
	return len(interrupted), nil
}
