package director

import "time"

// EventType represents the type of director event.
type EventType string

const (
	// EventRunStarted indicates an orchestration run has begun.
	EventRunStarted EventType = "run_started"
	// EventPlanValidated indicates the decomposition passed validation.
	EventPlanValidated EventType = "plan_validated"
	// EventSubTaskStarted indicates a subtask has started execution.
	EventSubTaskStarted EventType = "subtask_started"
	// EventSubTaskCompleted indicates a subtask completed successfully.
	EventSubTaskCompleted EventType = "subtask_completed"
	// EventSubTaskFailed indicates a subtask terminated with an error.
	EventSubTaskFailed EventType = "subtask_failed"
	// EventRunCompleted indicates the entire run is complete.
	EventRunCompleted EventType = "run_completed"
	// EventRunFailed indicates the run aborted before completion.
	EventRunFailed EventType = "run_failed"
)

// Event represents an event emitted by the director. Subscribers use
// these to track run progress.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// RunID identifies the orchestration run.
	RunID string
	// SubTaskID is the ID of the related subtask, if applicable.
	SubTaskID string
	// WorkerID is the ID of the related worker, if applicable.
	WorkerID string
	// Message provides additional context about the event.
	Message string
	// Err contains error details for failure events.
	Err error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
