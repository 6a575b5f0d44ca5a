// Package worker defines the capability boundary each specialized worker
// presents to the orchestration core, and the built-in AI-backed workers.
package worker

import (
	"context"
	"sync"

	"github.com/rainycowork/cowork/pkg/models"
)

// Worker is the narrow contract the core consumes: identity reporting,
// single-task execution, and a routing hint for upstream dispatch.
type Worker interface {
	// Describe reports the worker's identity, category, and status.
	Describe() models.WorkerDescriptor
	// Execute runs one task to completion. Failures are encoded in the
	// returned TaskResult, not as a separate error.
	Execute(ctx context.Context, task models.Task) models.TaskResult
	// CanHandle reports whether the worker plausibly handles this task.
	// Used as a routing hint upstream of formal assignment.
	CanHandle(task models.Task) bool
	// Capabilities lists the worker's advertised capability labels.
	Capabilities() []string
}

// base carries the identity and status bookkeeping shared by all workers.
type base struct {
	id   string
	name string
	typ  models.WorkerType

	mu          sync.RWMutex
	status      models.WorkerStatus
	currentTask string
}

func newBase(id, name string, typ models.WorkerType) base {
	return base{
		id:     id,
		name:   name,
		typ:    typ,
		status: models.WorkerIdle,
	}
}

// Describe returns a snapshot of the worker's descriptor.
func (b *base) Describe() models.WorkerDescriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return models.WorkerDescriptor{
		ID:          b.id,
		Name:        b.name,
		Type:        b.typ,
		Status:      b.status,
		CurrentTask: b.currentTask,
	}
}

// setBusy records that the worker is occupied with the given task.
func (b *base) setBusy(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = models.WorkerBusy
	b.currentTask = taskID
}

// setIdle returns the worker to idle.
func (b *base) setIdle() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = models.WorkerIdle
	b.currentTask = ""
}
