package models

import "time"

// MessageType identifies the kind of payload carried by a bus message.
type MessageType string

const (
	// MessageTaskAssign delivers a task to a worker.
	MessageTaskAssign MessageType = "task_assign"
	// MessageTaskResult delivers a completed task's result.
	MessageTaskResult MessageType = "task_result"
	// MessageStatusUpdate announces a worker status change.
	MessageStatusUpdate MessageType = "status_update"
)

// Message is one unit of inter-worker communication on the bus.
type Message struct {
	// ID is the unique message identifier.
	ID string `json:"id"`
	// Type identifies the payload kind.
	Type MessageType `json:"type"`
	// From is the sending worker's ID.
	From string `json:"from"`
	// To is the receiving worker's ID.
	To string `json:"to"`
	// Task is set for task_assign messages.
	Task *Task `json:"task,omitempty"`
	// Result is set for task_result messages.
	Result *TaskResult `json:"result,omitempty"`
	// TaskID links result and status messages to a task.
	TaskID string `json:"task_id,omitempty"`
	// Status is set for status_update messages.
	Status WorkerStatus `json:"status,omitempty"`
	// SentAt is when the message was enqueued.
	SentAt time.Time `json:"sent_at"`
}
