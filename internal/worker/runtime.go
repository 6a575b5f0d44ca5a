package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rainycowork/cowork/internal/bus"
	"github.com/rainycowork/cowork/pkg/models"
)

// DefaultPollInterval is how often a runtime checks its bus queue.
const DefaultPollInterval = 100 * time.Millisecond

// Runtime runs one worker as an independent long-lived loop: it drains the
// worker's bus queue, executes task_assign messages, and replies with
// task_result messages to the sender.
type Runtime struct {
	worker   Worker
	bus      *bus.MessageBus
	interval time.Duration
	logger   zerolog.Logger
}

// NewRuntime creates a runtime for the given worker and bus.
func NewRuntime(w Worker, b *bus.MessageBus, logger zerolog.Logger) *Runtime {
	desc := w.Describe()
	return &Runtime{
		worker:   w,
		bus:      b,
		interval: DefaultPollInterval,
		logger: logger.With().
			Str("worker_id", desc.ID).
			Str("worker_type", string(desc.Type)).
			Logger(),
	}
}

// SetPollInterval overrides the queue polling interval.
func (r *Runtime) SetPollInterval(d time.Duration) {
	if d > 0 {
		r.interval = d
	}
}

// Run drains and serves the worker's queue until the context is canceled.
// The worker's queue is registered up front so broadcasts reach it.
func (r *Runtime) Run(ctx context.Context) error {
	id := r.worker.Describe().ID
	r.bus.Register(id)
	r.logger.Info().Msg("worker runtime started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("worker runtime stopped")
			return ctx.Err()
		case <-ticker.C:
			for _, msg := range r.bus.Receive(id) {
				r.handle(ctx, msg)
			}
		}
	}
}

// handle dispatches one message. Unknown message types are logged and
// dropped.
func (r *Runtime) handle(ctx context.Context, msg models.Message) {
	switch msg.Type {
	case models.MessageTaskAssign:
		if msg.Task == nil {
			r.logger.Warn().Str("message_id", msg.ID).Msg("task_assign without task payload")
			return
		}
		r.execute(ctx, msg.From, *msg.Task)
	case models.MessageStatusUpdate, models.MessageTaskResult:
		// Informational for workers; nothing to do.
	default:
		r.logger.Warn().Str("type", string(msg.Type)).Msg("unknown message type")
	}
}

func (r *Runtime) execute(ctx context.Context, replyTo string, task models.Task) {
	id := r.worker.Describe().ID

	r.logger.Info().Str("task_id", task.ID).Msg("executing task")
	result := r.worker.Execute(ctx, task)

	if result.Success {
		r.logger.Info().Str("task_id", task.ID).Msg("task completed")
	} else {
		r.logger.Error().Str("task_id", task.ID).Strs("errors", result.Errors).Msg("task failed")
	}

	r.bus.Send(id, replyTo, models.Message{
		Type:   models.MessageTaskResult,
		TaskID: task.ID,
		Result: &result,
	})
}
