package director

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rainycowork/cowork/internal/ai"
	"github.com/rainycowork/cowork/internal/bus"
	"github.com/rainycowork/cowork/internal/directory"
	"github.com/rainycowork/cowork/internal/plan"
	"github.com/rainycowork/cowork/internal/worker"
	"github.com/rainycowork/cowork/pkg/models"
)

// Director orchestrates the worker pool: it decomposes a task into a
// validated subtask graph, assigns subtasks to idle workers, coordinates
// wave-by-wave parallel execution, and aggregates the partial results.
// Control flow is Decomposer -> Validator -> Assigner -> Coordinator ->
// Aggregator; data flows forward only.
type Director struct {
	id   string
	name string

	provider ai.Provider
	dir      *directory.Directory
	bus      *bus.MessageBus

	decomposer  *plan.Decomposer
	assigner    *Assigner
	coordinator *Coordinator
	aggregator  *Aggregator
	emitter     *EventEmitter
	logger      *DebugLogger

	runTimeout time.Duration

	mu          sync.RWMutex
	workers     map[string]worker.Worker
	status      models.WorkerStatus
	currentTask string
}

// New creates a Director backed by the given generation provider.
func New(provider ai.Provider, opts ...Option) *Director {
	o := &directorOptions{
		pollInterval: DefaultPollInterval,
		eventBuffer:  100,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.directory == nil {
		o.directory = directory.New()
	}
	if o.logger == nil {
		o.logger = NopLogger()
	}

	emitter := NewEventEmitter(o.eventBuffer)

	return &Director{
		id:          "director-" + uuid.New().String()[:8],
		name:        "Director",
		provider:    provider,
		dir:         o.directory,
		bus:         o.bus,
		decomposer:  plan.NewDecomposer(provider),
		assigner:    NewAssigner(o.directory, o.logger),
		coordinator: NewCoordinator(o.pollInterval, o.logger, emitter),
		aggregator:  NewAggregator(provider),
		emitter:     emitter,
		logger:      o.logger,
		runTimeout:  o.runTimeout,
		workers:     make(map[string]worker.Worker),
		status:      models.WorkerIdle,
	}
}

// AddWorker registers a worker with the director and its directory.
func (d *Director) AddWorker(w worker.Worker) {
	desc := w.Describe()

	d.mu.Lock()
	d.workers[desc.ID] = w
	d.mu.Unlock()

	d.dir.Register(desc)
	if d.bus != nil {
		d.bus.Register(desc.ID)
	}
	d.logger.Log("[director] registered worker %s (%s)", desc.ID, desc.Type)
}

// Directory returns the director's worker directory.
func (d *Director) Directory() *directory.Directory {
	return d.dir
}

// Events returns the channel of run events for subscribers.
func (d *Director) Events() <-chan Event {
	return d.emitter.Events()
}

// Plan decomposes and validates a task without executing anything.
func (d *Director) Plan(ctx context.Context, task models.Task) ([]models.SubTask, error) {
	return d.decomposer.Decompose(ctx, task)
}

// ProcessTask runs one full orchestration: decompose, assign, coordinate,
// aggregate. Structural, resourcing, and generation-service failures abort
// the run with a specific reason; per-subtask execution failures do not
// abort it, they surface in the aggregated result.
func (d *Director) ProcessTask(ctx context.Context, task models.Task) (models.TaskResult, error) {
	runID := uuid.New().String()[:8]
	d.setBusy(task.ID)
	defer d.setIdle()

	if d.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.runTimeout)
		defer cancel()
	}

	d.emitter.Emit(Event{Type: EventRunStarted, RunID: runID, Message: task.Description})
	d.logger.Log("[director] run %s started: %s", runID, task.Description)

	subtasks, err := d.decomposer.Decompose(ctx, task)
	if err != nil {
		d.emitter.Emit(Event{Type: EventRunFailed, RunID: runID, Err: err})
		return models.TaskResult{}, fmt.Errorf("decompose task: %w", err)
	}

	return d.run(ctx, runID, task, subtasks)
}

// ProcessPlanned executes an already decomposed plan for task. The plan is
// re-validated: callers may have edited it since decomposition.
func (d *Director) ProcessPlanned(ctx context.Context, task models.Task, subtasks []models.SubTask) (models.TaskResult, error) {
	runID := uuid.New().String()[:8]
	d.setBusy(task.ID)
	defer d.setIdle()

	if d.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.runTimeout)
		defer cancel()
	}

	d.emitter.Emit(Event{Type: EventRunStarted, RunID: runID, Message: task.Description})
	d.logger.Log("[director] run %s started with supplied plan: %s", runID, task.Description)

	if err := plan.Validate(subtasks); err != nil {
		d.emitter.Emit(Event{Type: EventRunFailed, RunID: runID, Err: err})
		return models.TaskResult{}, fmt.Errorf("validate plan: %w", err)
	}

	return d.run(ctx, runID, task, subtasks)
}

// run drives a validated plan through assignment, coordination, and
// aggregation.
func (d *Director) run(ctx context.Context, runID string, task models.Task, subtasks []models.SubTask) (models.TaskResult, error) {
	d.emitter.Emit(Event{
		Type:    EventPlanValidated,
		RunID:   runID,
		Message: fmt.Sprintf("%d subtasks", len(subtasks)),
	})
	d.logger.Log("[director] run %s plan validated: %d subtasks", runID, len(subtasks))

	assignments, err := d.assigner.Assign(subtasks)
	if err != nil {
		d.emitter.Emit(Event{Type: EventRunFailed, RunID: runID, Err: err})
		return models.TaskResult{}, fmt.Errorf("assign subtasks: %w", err)
	}

	byID := make(map[string]models.SubTask, len(subtasks))
	for _, st := range subtasks {
		byID[st.ID] = st
	}

	results, err := d.coordinator.Run(ctx, assignments, d.executor(task, byID))
	if err != nil {
		d.releaseAll(assignments)
		d.emitter.Emit(Event{Type: EventRunFailed, RunID: runID, Err: err})
		return models.TaskResult{}, fmt.Errorf("coordinate execution: %w", err)
	}

	final, err := d.aggregator.Aggregate(ctx, results)
	if err != nil {
		d.emitter.Emit(Event{Type: EventRunFailed, RunID: runID, Err: err})
		return models.TaskResult{}, fmt.Errorf("aggregate results: %w", err)
	}
	final = final.WithMeta("run_id", runID)

	if d.bus != nil {
		d.bus.Broadcast(d.id, models.Message{
			Type:   models.MessageTaskResult,
			TaskID: task.ID,
			Result: &final,
		})
	}

	d.emitter.Emit(Event{Type: EventRunCompleted, RunID: runID})
	d.logger.Log("[director] run %s completed: %d results", runID, len(results))
	return final, nil
}

// executor adapts worker execution to the coordinator's ExecuteFunc. The
// reserved worker is released as soon as its subtask finishes.
func (d *Director) executor(parent models.Task, byID map[string]models.SubTask) ExecuteFunc {
	return func(ctx context.Context, a *models.TaskAssignment) models.TaskResult {
		defer d.dir.Release(a.WorkerID)

		st, ok := byID[a.SubTaskID]
		if !ok {
			return models.FailedResult(fmt.Sprintf("unknown subtask %s", a.SubTaskID))
		}

		d.mu.RLock()
		w, ok := d.workers[a.WorkerID]
		d.mu.RUnlock()
		if !ok {
			return models.FailedResult(fmt.Sprintf("worker %s not registered", a.WorkerID))
		}

		deps := make([]string, len(st.Dependencies))
		copy(deps, st.Dependencies)

		return w.Execute(ctx, models.Task{
			ID:           st.ID,
			Description:  st.Description,
			Priority:     st.Priority,
			Dependencies: deps,
			Context: models.TaskContext{
				WorkspaceID:     parent.Context.WorkspaceID,
				UserInstruction: parent.Description,
				RelevantFiles:   parent.Context.RelevantFiles,
			},
		})
	}
}

// releaseAll frees every worker still reserved by the run.
func (d *Director) releaseAll(assignments []*models.TaskAssignment) {
	for _, a := range assignments {
		if !a.Status.Terminal() {
			d.dir.Release(a.WorkerID)
		}
	}
}

func (d *Director) setBusy(taskID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = models.WorkerBusy
	d.currentTask = taskID
}

func (d *Director) setIdle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = models.WorkerIdle
	d.currentTask = ""
}

// Describe reports the director's own worker descriptor.
func (d *Director) Describe() models.WorkerDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return models.WorkerDescriptor{
		ID:          d.id,
		Name:        d.name,
		Type:        models.WorkerDirector,
		Status:      d.status,
		CurrentTask: d.currentTask,
	}
}

// Execute satisfies the worker contract by running a full orchestration.
func (d *Director) Execute(ctx context.Context, task models.Task) models.TaskResult {
	result, err := d.ProcessTask(ctx, task)
	if err != nil {
		return models.FailedResult(err.Error()).WithMeta("task_id", task.ID)
	}
	return result
}

// CanHandle reports whether the task warrants decomposition: long
// descriptions or tasks that already carry dependencies.
func (d *Director) CanHandle(task models.Task) bool {
	return len(task.Description) > 100 || len(task.Dependencies) > 0
}

// Capabilities lists the director's advertised capability labels.
func (d *Director) Capabilities() []string {
	return []string{
		"task_decomposition",
		"worker_assignment",
		"parallel_coordination",
		"result_aggregation",
	}
}
