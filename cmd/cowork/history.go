package main

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rainycowork/cowork/internal/state"
	"github.com/rainycowork/cowork/pkg/models"
)

// historyRecorder persists one run and its subtask transitions to the
// project database. A nil recorder is valid and records nothing, so run
// execution never depends on the database being available.
type historyRecorder struct {
	db     *state.DB
	runID  string
	logger zerolog.Logger
}

// newHistoryRecorder opens the project database, cleans up leftovers from
// previous sessions, and records the run with its planned subtasks.
func newHistoryRecorder(projectRoot string, purgeAfter time.Duration, task models.Task, subtasks []models.SubTask, logger zerolog.Logger) (*historyRecorder, error) {
	db, err := state.OpenProject(projectRoot)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	// Runs left over from a crashed process are marked failed.
	if n, err := state.NewRecoveryManager(db).AbandonAll(); err != nil {
		logger.Warn().Err(err).Msg("abandon interrupted runs")
	} else if n > 0 {
		logger.Info().Int("runs", n).Msg("marked interrupted runs failed")
	}

	if purgeAfter > 0 {
		if _, err := db.PurgeOldRuns(purgeAfter); err != nil {
			logger.Warn().Err(err).Msg("purge old runs")
		}
	}

	runID := task.ID
	if len(runID) > 8 {
		runID = runID[:8]
	}

	if err := db.CreateRun(&state.Run{
		ID:           runID,
		TaskID:       task.ID,
		Description:  task.Description,
		Status:       state.RunRunning,
		SubTaskCount: len(subtasks),
		StartedAt:    time.Now(),
	}); err != nil {
		db.Close()
		return nil, err
	}

	for _, st := range subtasks {
		deps := make([]string, len(st.Dependencies))
		copy(deps, st.Dependencies)
		if err := db.CreateRunSubTask(&state.RunSubTask{
			RunID:       runID,
			SubTaskID:   st.ID,
			Description: st.Description,
			WorkerType:  string(st.WorkerType),
			Priority:    string(st.Priority),
			DependsOn:   deps,
			Status:      "pending",
		}); err != nil {
			logger.Warn().Err(err).Str("subtask", st.ID).Msg("record subtask")
		}
	}

	return &historyRecorder{db: db, runID: runID, logger: logger}, nil
}

// SubTaskStarted records which worker picked up a subtask.
func (r *historyRecorder) SubTaskStarted(subtaskID, workerID string) {
	if r == nil {
		return
	}
	r.update(&state.RunSubTask{
		RunID: r.runID, SubTaskID: subtaskID,
		WorkerID: workerID, Status: "running",
	})
}

// SubTaskFinished records a subtask's terminal status.
func (r *historyRecorder) SubTaskFinished(subtaskID, status, errMsg string) {
	if r == nil {
		return
	}
	subtasks, err := r.db.ListRunSubTasks(r.runID)
	if err != nil {
		r.logger.Warn().Err(err).Msg("load subtask records")
		return
	}
	for _, st := range subtasks {
		if st.SubTaskID != subtaskID {
			continue
		}
		st.Status = status
		st.Error = errMsg
		r.update(&st)
		return
	}
}

func (r *historyRecorder) update(st *state.RunSubTask) {
	if err := r.db.UpdateRunSubTask(st); err != nil {
		r.logger.Warn().Err(err).Str("subtask", st.SubTaskID).Msg("update subtask record")
	}
}

// Finish marks the run terminal.
func (r *historyRecorder) Finish(success bool, output string, failedCount int) {
	if r == nil {
		return
	}
	status := state.RunCompleted
	if !success {
		status = state.RunFailed
	}
	if err := r.db.FinishRun(r.runID, status, output, failedCount); err != nil {
		r.logger.Warn().Err(err).Msg("finish run record")
	}
}

// Close releases the database handle.
func (r *historyRecorder) Close() {
	if r == nil {
		return
	}
	r.db.Close()
}
