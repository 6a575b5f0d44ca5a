// Package directory tracks the pool of available workers and provides
// discovery and reservation operations.
package directory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rainycowork/cowork/pkg/models"
)

// ErrNoIdleWorker indicates no idle worker of the required category exists.
// This is a resourcing condition, not a plan-structure failure; callers may
// retry the whole run once capacity frees up.
var ErrNoIdleWorker = errors.New("no idle worker available")

// NoWorkerError reports a failed reservation, naming the required category.
type NoWorkerError struct {
	// Type is the worker category that could not be reserved.
	Type models.WorkerType
}

func (e *NoWorkerError) Error() string {
	return fmt.Sprintf("no available %s worker", e.Type)
}

// Unwrap allows errors.Is(err, ErrNoIdleWorker).
func (e *NoWorkerError) Unwrap() error {
	return ErrNoIdleWorker
}

// Directory is the registry of workers. Matching a worker to a task and
// flipping its status is one critical section; two concurrent reservations
// for the same category can never double-book a worker.
type Directory struct {
	// workers maps worker ID to its descriptor.
	workers map[string]*models.WorkerDescriptor
	// order preserves registration order for first-fit selection.
	order []string
	mu    sync.RWMutex
}

// New creates an empty Directory.
func New() *Directory {
	return &Directory{
		workers: make(map[string]*models.WorkerDescriptor),
	}
}

// Register adds a worker to the directory. Re-registering an ID replaces
// the descriptor but keeps its position in iteration order.
func (d *Directory) Register(w models.WorkerDescriptor) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.workers[w.ID]; !exists {
		d.order = append(d.order, w.ID)
	}
	desc := w
	d.workers[w.ID] = &desc
}

// Get returns a copy of the descriptor for a worker ID.
func (d *Directory) Get(workerID string) (models.WorkerDescriptor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	w, ok := d.workers[workerID]
	if !ok {
		return models.WorkerDescriptor{}, false
	}
	return *w, true
}

// List returns copies of all descriptors in registration order.
func (d *Directory) List() []models.WorkerDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]models.WorkerDescriptor, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.workers[id])
	}
	return out
}

// Acquire finds the first idle worker of the given type, marks it busy on
// the given task, and returns its ID. Lookup and status flip happen under
// one lock. Selection is first-fit in registration order.
func (d *Directory) Acquire(workerType models.WorkerType, taskID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range d.order {
		w := d.workers[id]
		if w.Type == workerType && w.Status == models.WorkerIdle {
			w.Status = models.WorkerBusy
			w.CurrentTask = taskID
			return w.ID, nil
		}
	}
	return "", &NoWorkerError{Type: workerType}
}

// Release returns a worker to idle and clears its current task.
// Releasing an unknown worker is a no-op.
func (d *Directory) Release(workerID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if w, ok := d.workers[workerID]; ok {
		w.Status = models.WorkerIdle
		w.CurrentTask = ""
	}
}

// Count returns the number of registered workers.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.workers)
}

// IdleCount returns the number of idle workers of the given type.
func (d *Directory) IdleCount(workerType models.WorkerType) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, w := range d.workers {
		if w.Type == workerType && w.Status == models.WorkerIdle {
			n++
		}
	}
	return n
}
