// Package state provides SQLite-based run history for cowork.
package state

import "io"

// RunStore handles run-related persistence operations.
type RunStore interface {
	CreateRun(r *Run) error
	GetRun(id string) (*Run, error)
	UpdateRun(r *Run) error
	FinishRun(id string, status RunStatus, output string, failedCount int) error
	ListRuns(status *RunStatus) ([]Run, error)
}

// SubTaskStore handles subtask record persistence operations.
type SubTaskStore interface {
	CreateRunSubTask(st *RunSubTask) error
	UpdateRunSubTask(st *RunSubTask) error
	ListRunSubTasks(runID string) ([]RunSubTask, error)
}

// Migrator handles database schema migrations.
// Separating this allows clients to depend only on migration functionality.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// Store defines the interface for run history persistence.
// This interface allows the CLI to work with any history backend
// without depending on the concrete SQLite implementation.
// It composes focused sub-interfaces for better modularity.
type Store interface {
	io.Closer
	Migrator
	RunStore
	SubTaskStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store        = (*DB)(nil)
	_ Migrator     = (*DB)(nil)
	_ RunStore     = (*DB)(nil)
	_ SubTaskStore = (*DB)(nil)
)
