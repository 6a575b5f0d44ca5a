package models

// WorkerType is the declared specialization of a worker.
type WorkerType string

const (
	// WorkerDirector orchestrates other workers.
	WorkerDirector WorkerType = "director"
	// WorkerResearcher handles search, analysis, and data extraction.
	WorkerResearcher WorkerType = "researcher"
	// WorkerExecutor handles command and file operations.
	WorkerExecutor WorkerType = "executor"
	// WorkerCreator handles document and content writing.
	WorkerCreator WorkerType = "creator"
	// WorkerDesigner handles layout and visual design tasks.
	WorkerDesigner WorkerType = "designer"
	// WorkerDeveloper handles code generation and review.
	WorkerDeveloper WorkerType = "developer"
	// WorkerAnalyst handles data analysis and reporting.
	WorkerAnalyst WorkerType = "analyst"
)

// Valid returns true if the worker type is a known value.
func (t WorkerType) Valid() bool {
	switch t {
	case WorkerDirector, WorkerResearcher, WorkerExecutor, WorkerCreator,
		WorkerDesigner, WorkerDeveloper, WorkerAnalyst:
		return true
	default:
		return false
	}
}

// WorkerStatus represents the lifecycle state of a worker.
type WorkerStatus string

const (
	// WorkerIdle indicates the worker can accept a task.
	WorkerIdle WorkerStatus = "idle"
	// WorkerBusy indicates the worker is occupied with a task.
	WorkerBusy WorkerStatus = "busy"
)

// WorkerDescriptor describes one worker tracked by the directory.
type WorkerDescriptor struct {
	// ID is the unique identifier for this worker.
	ID string `json:"id"`
	// Name is the human-readable worker name.
	Name string `json:"name"`
	// Type is the declared specialization.
	Type WorkerType `json:"type"`
	// Status is the current lifecycle state.
	Status WorkerStatus `json:"status"`
	// CurrentTask is the ID of the task occupying the worker, if any.
	CurrentTask string `json:"current_task,omitempty"`
}
