package director

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rainycowork/cowork/internal/bus"
	"github.com/rainycowork/cowork/internal/directory"
	"github.com/rainycowork/cowork/internal/plan"
	"github.com/rainycowork/cowork/pkg/models"
)

// fakeWorker executes instantly and records the tasks it ran.
type fakeWorker struct {
	id  string
	typ models.WorkerType

	mu   sync.Mutex
	ran  []string
	fail bool
}

func (f *fakeWorker) Describe() models.WorkerDescriptor {
	return models.WorkerDescriptor{ID: f.id, Name: f.id, Type: f.typ, Status: models.WorkerIdle}
}

func (f *fakeWorker) Execute(ctx context.Context, task models.Task) models.TaskResult {
	f.mu.Lock()
	f.ran = append(f.ran, task.ID)
	f.mu.Unlock()

	if f.fail {
		return models.FailedResult("worker " + f.id + " failed")
	}
	return models.NewResult("output from " + f.id).WithMeta("task_id", task.ID)
}

func (f *fakeWorker) CanHandle(task models.Task) bool { return true }

func (f *fakeWorker) Capabilities() []string { return []string{"fake"} }

func (f *fakeWorker) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ran))
	copy(out, f.ran)
	return out
}

const planResponse = `[
  {"id": "subtask-1", "description": "research the topic", "worker_type": "researcher", "dependencies": [], "priority": "high"},
  {"id": "subtask-2", "description": "write the summary", "worker_type": "creator", "dependencies": ["subtask-1"], "priority": "medium"}
]`

func newTestDirector(provider *scriptedProvider, workers ...*fakeWorker) *Director {
	d := New(provider,
		WithDirectory(directory.New()),
		WithPollInterval(5*time.Millisecond),
	)
	for _, w := range workers {
		d.AddWorker(w)
	}
	return d
}

func TestProcessTask(t *testing.T) {
	provider := &scriptedProvider{responses: []string{planResponse, "final narrative"}}
	researcher := &fakeWorker{id: "r-1", typ: models.WorkerResearcher}
	creator := &fakeWorker{id: "c-1", typ: models.WorkerCreator}
	d := newTestDirector(provider, researcher, creator)

	result, err := d.ProcessTask(context.Background(), models.Task{
		ID:          "task-1",
		Description: "produce a research summary",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Output != "final narrative" {
		t.Errorf("unexpected output %q", result.Output)
	}
	if result.Metadata["subtask_count"] != 2 {
		t.Errorf("expected subtask_count 2, got %v", result.Metadata["subtask_count"])
	}
	if result.Metadata["run_id"] == nil {
		t.Error("expected run_id metadata")
	}

	if got := researcher.executed(); len(got) != 1 || got[0] != "subtask-1" {
		t.Errorf("expected researcher to run subtask-1, got %v", got)
	}
	if got := creator.executed(); len(got) != 1 || got[0] != "subtask-2" {
		t.Errorf("expected creator to run subtask-2, got %v", got)
	}

	// Workers are released once their subtask finishes.
	for _, id := range []string{"r-1", "c-1"} {
		w, _ := d.Directory().Get(id)
		if w.Status != models.WorkerIdle {
			t.Errorf("expected %s idle after run, got %s", id, w.Status)
		}
	}

	// Director itself returns to idle.
	if d.Describe().Status != models.WorkerIdle {
		t.Errorf("expected director idle after run, got %s", d.Describe().Status)
	}
}

func TestProcessTask_InvalidPlanNeverExecutes(t *testing.T) {
	// The decomposition contains a cycle: validation rejects it and no
	// worker is ever invoked.
	cyclic := `[
	  {"id": "a", "description": "first", "worker_type": "researcher", "dependencies": ["b"], "priority": "low"},
	  {"id": "b", "description": "second", "worker_type": "researcher", "dependencies": ["a"], "priority": "low"}
	]`
	provider := &scriptedProvider{responses: []string{cyclic}}
	researcher := &fakeWorker{id: "r-1", typ: models.WorkerResearcher}
	d := newTestDirector(provider, researcher)

	_, err := d.ProcessTask(context.Background(), models.Task{ID: "task-1", Description: "x"})
	if !errors.Is(err, plan.ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
	if len(researcher.executed()) != 0 {
		t.Error("no worker may run when the plan is rejected")
	}
}

func TestProcessTask_ResourcingErrorIsDistinguishable(t *testing.T) {
	provider := &scriptedProvider{responses: []string{planResponse}}
	// Only a researcher is registered; the creator subtask cannot be placed.
	researcher := &fakeWorker{id: "r-1", typ: models.WorkerResearcher}
	d := newTestDirector(provider, researcher)

	_, err := d.ProcessTask(context.Background(), models.Task{ID: "task-1", Description: "x"})
	if !errors.Is(err, directory.ErrNoIdleWorker) {
		t.Fatalf("expected ErrNoIdleWorker, got %v", err)
	}
	if errors.Is(err, plan.ErrInvalidPlan) {
		t.Error("resourcing error must not look like a structural error")
	}
	if len(researcher.executed()) != 0 {
		t.Error("no worker may run when assignment fails")
	}
}

func TestProcessTask_PartialFailureSurfacesInAggregate(t *testing.T) {
	provider := &scriptedProvider{responses: []string{planResponse, "partial narrative"}}
	researcher := &fakeWorker{id: "r-1", typ: models.WorkerResearcher, fail: true}
	creator := &fakeWorker{id: "c-1", typ: models.WorkerCreator}
	d := newTestDirector(provider, researcher, creator)

	result, err := d.ProcessTask(context.Background(), models.Task{ID: "task-1", Description: "x"})
	if err != nil {
		t.Fatalf("expected run to complete despite subtask failure, got %v", err)
	}

	if result.Metadata["failed_count"] != 1 {
		t.Errorf("expected failed_count 1, got %v", result.Metadata["failed_count"])
	}
	// The dependent subtask still ran.
	if len(creator.executed()) != 1 {
		t.Errorf("expected creator to run despite failed dependency, got %v", creator.executed())
	}
}

func TestProcessTask_BroadcastsFinalResult(t *testing.T) {
	b := bus.New()
	provider := &scriptedProvider{responses: []string{planResponse, "final narrative"}}
	d := New(provider,
		WithDirectory(directory.New()),
		WithBus(b),
		WithPollInterval(5*time.Millisecond),
	)
	researcher := &fakeWorker{id: "r-1", typ: models.WorkerResearcher}
	creator := &fakeWorker{id: "c-1", typ: models.WorkerCreator}
	d.AddWorker(researcher)
	d.AddWorker(creator)

	if _, err := d.ProcessTask(context.Background(), models.Task{ID: "task-1", Description: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs := b.Receive("r-1")
	if len(msgs) != 1 || msgs[0].Type != models.MessageTaskResult {
		t.Fatalf("expected broadcast task_result for r-1, got %v", msgs)
	}
	if msgs[0].Result == nil || msgs[0].Result.Output != "final narrative" {
		t.Errorf("unexpected broadcast payload: %+v", msgs[0].Result)
	}
}

func TestProcessPlanned(t *testing.T) {
	// Only the aggregation call hits the provider; the plan is supplied.
	provider := &scriptedProvider{responses: []string{"planned narrative"}}
	researcher := &fakeWorker{id: "r-1", typ: models.WorkerResearcher}
	d := newTestDirector(provider, researcher)

	subtasks := []models.SubTask{
		{ID: "only", Description: "look something up", WorkerType: models.WorkerResearcher, Priority: models.PriorityMedium},
	}
	result, err := d.ProcessPlanned(context.Background(), models.Task{ID: "task-1", Description: "x"}, subtasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output != "planned narrative" {
		t.Errorf("unexpected output %q", result.Output)
	}
	if len(provider.prompts) != 1 {
		t.Errorf("expected a single provider call, got %d", len(provider.prompts))
	}

	// A caller-supplied plan is still validated.
	bad := []models.SubTask{
		{ID: "a", Description: "x", WorkerType: models.WorkerResearcher, Dependencies: []string{"missing"}},
	}
	if _, err := d.ProcessPlanned(context.Background(), models.Task{ID: "task-2", Description: "x"}, bad); !errors.Is(err, plan.ErrInvalidPlan) {
		t.Errorf("expected ErrInvalidPlan, got %v", err)
	}
}

func TestDirector_WorkerContract(t *testing.T) {
	d := New(&scriptedProvider{})

	desc := d.Describe()
	if desc.Type != models.WorkerDirector {
		t.Errorf("expected director type, got %s", desc.Type)
	}
	if desc.Status != models.WorkerIdle {
		t.Errorf("expected idle, got %s", desc.Status)
	}

	caps := d.Capabilities()
	if len(caps) != 4 {
		t.Errorf("expected 4 capabilities, got %v", caps)
	}

	if d.CanHandle(models.Task{Description: "short"}) {
		t.Error("short independent tasks do not need the director")
	}
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'x'
	}
	if !d.CanHandle(models.Task{Description: string(long)}) {
		t.Error("expected long descriptions to be handled")
	}
	if !d.CanHandle(models.Task{Description: "short", Dependencies: []string{"other"}}) {
		t.Error("expected dependency-bearing tasks to be handled")
	}
}

func TestProcessTask_RunTimeout(t *testing.T) {
	provider := &scriptedProvider{responses: []string{planResponse}}
	slow := &slowWorker{fakeWorker{id: "r-1", typ: models.WorkerResearcher}, 500 * time.Millisecond}
	creator := &fakeWorker{id: "c-1", typ: models.WorkerCreator}

	d := New(provider,
		WithDirectory(directory.New()),
		WithPollInterval(5*time.Millisecond),
		WithRunTimeout(50*time.Millisecond),
	)
	d.AddWorker(slow)
	d.AddWorker(creator)

	_, err := d.ProcessTask(context.Background(), models.Task{ID: "task-1", Description: "x"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

// slowWorker delays execution to trigger run timeouts.
type slowWorker struct {
	fakeWorker
	delay time.Duration
}

func (s *slowWorker) Execute(ctx context.Context, task models.Task) models.TaskResult {
	select {
	case <-ctx.Done():
	case <-time.After(s.delay):
	}
	return s.fakeWorker.Execute(ctx, task)
}
