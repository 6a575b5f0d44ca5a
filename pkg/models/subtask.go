// Package models defines the shared data types for cowork.
package models

// TaskPriority represents the urgency of a task or subtask.
type TaskPriority string

const (
	// PriorityLow indicates the task can be deferred.
	PriorityLow TaskPriority = "low"
	// PriorityMedium indicates normal scheduling.
	PriorityMedium TaskPriority = "medium"
	// PriorityHigh indicates the task should be preferred.
	PriorityHigh TaskPriority = "high"
	// PriorityCritical indicates the task is blocking everything else.
	PriorityCritical TaskPriority = "critical"
)

// Valid returns true if the priority is a known value.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// SubTask is one planned unit of work produced by decomposing a task.
// SubTasks are immutable once validated.
type SubTask struct {
	// ID is the unique identifier within one decomposition.
	ID string `json:"id"`
	// Description is what the subtask should accomplish.
	Description string `json:"description"`
	// WorkerType is the worker category that should handle this subtask.
	WorkerType WorkerType `json:"worker_type"`
	// Dependencies lists subtask IDs that must complete first.
	Dependencies []string `json:"dependencies"`
	// Priority is the urgency level for this subtask.
	Priority TaskPriority `json:"priority"`
}

// TaskContext carries ambient information a worker may use when executing.
type TaskContext struct {
	// WorkspaceID identifies the workspace the task belongs to.
	WorkspaceID string `json:"workspace_id"`
	// UserInstruction is the original instruction from the user.
	UserInstruction string `json:"user_instruction"`
	// RelevantFiles lists file paths relevant to the task.
	RelevantFiles []string `json:"relevant_files,omitempty"`
}

// Task is a unit of work handed to a worker or to the director.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Description is what the task should accomplish.
	Description string `json:"description"`
	// Priority is the urgency level.
	Priority TaskPriority `json:"priority"`
	// Dependencies lists task IDs this task waits on.
	Dependencies []string `json:"dependencies,omitempty"`
	// Context carries ambient execution information.
	Context TaskContext `json:"context"`
}
