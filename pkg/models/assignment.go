package models

// AssignmentStatus represents the lifecycle state of a task assignment.
type AssignmentStatus string

const (
	// AssignmentPending indicates the assignment has not run yet.
	AssignmentPending AssignmentStatus = "pending"
	// AssignmentCompleted indicates the assignment finished successfully.
	AssignmentCompleted AssignmentStatus = "completed"
	// AssignmentFailed indicates the assignment terminated with an error.
	AssignmentFailed AssignmentStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentCompleted, AssignmentFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true once the assignment can no longer change state.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentFailed
}

// TaskAssignment binds one subtask to one worker for the duration of a run.
// The dependency list is copied from the subtask so the coordinator can
// operate without re-dereferencing the decomposition.
type TaskAssignment struct {
	// SubTaskID is the ID of the assigned subtask.
	SubTaskID string `json:"subtask_id"`
	// WorkerID is the ID of the worker reserved for the subtask.
	WorkerID string `json:"worker_id"`
	// Status is the current lifecycle state of the assignment.
	Status AssignmentStatus `json:"status"`
	// Dependencies is a copy of the subtask's dependency IDs.
	Dependencies []string `json:"dependencies"`
	// Error holds the failure message when Status is failed.
	Error string `json:"error,omitempty"`
}
