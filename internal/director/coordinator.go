package director

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rainycowork/cowork/pkg/models"
)

// DefaultPollInterval is how long the coordinator sleeps when no
// assignment is currently ready.
const DefaultPollInterval = 100 * time.Millisecond

// ExecuteFunc runs one assignment to completion and returns its result.
// Failures are encoded in the result, not returned as errors.
type ExecuteFunc func(ctx context.Context, a *models.TaskAssignment) models.TaskResult

// Coordinator drives a set of assignments to completion in dependency
// order: at each wave it starts every pending assignment whose
// dependencies have all finished, runs the wave concurrently, and joins
// before computing the next wave.
type Coordinator struct {
	pollInterval time.Duration
	logger       *DebugLogger
	emitter      *EventEmitter
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(pollInterval time.Duration, logger *DebugLogger, emitter *EventEmitter) *Coordinator {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Coordinator{
		pollInterval: pollInterval,
		logger:       logger,
		emitter:      emitter,
	}
}

// Run executes the assignments until every one is terminal, then returns
// the collected results in dispatch order. A failed assignment still
// enters the completed set so its dependents are not starved; the failure
// stays visible on the assignment and its result. Run aborts between
// waves when the context is canceled or its deadline passes.
func (c *Coordinator) Run(ctx context.Context, assignments []*models.TaskAssignment, exec ExecuteFunc) ([]models.TaskResult, error) {
	completed := make(map[string]bool, len(assignments))
	results := make([]models.TaskResult, 0, len(assignments))

	for {
		if err := ctx.Err(); err != nil {
			c.logger.Log("[coordinator] run aborted: %v", err)
			return results, err
		}

		ready := c.readySet(assignments, completed)
		if len(ready) == 0 {
			if allTerminal(assignments) {
				c.logger.Log("[coordinator] all %d assignments terminal, run complete", len(assignments))
				return results, nil
			}
			// Nothing ready but work remains pending. With a validated
			// DAG this only happens transiently; sleep and recheck.
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(c.pollInterval):
			}
			continue
		}

		c.logger.Log("[coordinator] wave of %d subtasks: %v", len(ready), subtaskIDs(ready))

		waveResults := make([]models.TaskResult, len(ready))
		g, gctx := errgroup.WithContext(ctx)
		for i, a := range ready {
			i, a := i, a
			c.emit(Event{Type: EventSubTaskStarted, SubTaskID: a.SubTaskID, WorkerID: a.WorkerID})
			g.Go(func() error {
				waveResults[i] = exec(gctx, a)
				return nil
			})
		}
		// Goroutines never return errors; Wait is a pure join.
		_ = g.Wait()

		for i, a := range ready {
			res := waveResults[i]
			if res.Success {
				a.Status = models.AssignmentCompleted
				c.emit(Event{Type: EventSubTaskCompleted, SubTaskID: a.SubTaskID, WorkerID: a.WorkerID})
			} else {
				a.Status = models.AssignmentFailed
				if len(res.Errors) > 0 {
					a.Error = res.Errors[0]
				}
				c.logger.Log("[coordinator] subtask %s failed: %v", a.SubTaskID, res.Errors)
				c.emit(Event{Type: EventSubTaskFailed, SubTaskID: a.SubTaskID, WorkerID: a.WorkerID, Message: a.Error})
			}
			completed[a.SubTaskID] = true
			results = append(results, res)
		}
	}
}

// readySet returns the pending assignments whose every dependency is in
// the completed set, ordered by subtask ID for deterministic dispatch.
func (c *Coordinator) readySet(assignments []*models.TaskAssignment, completed map[string]bool) []*models.TaskAssignment {
	var ready []*models.TaskAssignment
	for _, a := range assignments {
		if a.Status != models.AssignmentPending {
			continue
		}
		ok := true
		for _, dep := range a.Dependencies {
			if !completed[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, a)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		return ready[i].SubTaskID < ready[j].SubTaskID
	})
	return ready
}

func (c *Coordinator) emit(ev Event) {
	if c.emitter != nil {
		c.emitter.Emit(ev)
	}
}

func allTerminal(assignments []*models.TaskAssignment) bool {
	for _, a := range assignments {
		if !a.Status.Terminal() {
			return false
		}
	}
	return true
}

func subtaskIDs(assignments []*models.TaskAssignment) []string {
	ids := make([]string, len(assignments))
	for i, a := range assignments {
		ids[i] = a.SubTaskID
	}
	return ids
}
