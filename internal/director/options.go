package director

import (
	"time"

	"github.com/rainycowork/cowork/internal/bus"
	"github.com/rainycowork/cowork/internal/directory"
)

// Option configures a Director. Use With* functions to create Options.
type Option func(*directorOptions)

// directorOptions holds all optional configuration, applied at
// construction time.
type directorOptions struct {
	directory    *directory.Directory
	bus          *bus.MessageBus
	logger       *DebugLogger
	pollInterval time.Duration
	runTimeout   time.Duration
	eventBuffer  int
}

// WithDirectory sets the worker directory. A fresh one is created when
// not provided.
func WithDirectory(d *directory.Directory) Option {
	return func(o *directorOptions) { o.directory = d }
}

// WithBus sets the message bus used to announce run results to workers.
func WithBus(b *bus.MessageBus) Option {
	return func(o *directorOptions) { o.bus = b }
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *directorOptions) { o.logger = l }
}

// WithPollInterval sets the coordinator's idle poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(o *directorOptions) { o.pollInterval = d }
}

// WithRunTimeout bounds the total duration of one orchestration run.
// Zero means no bound.
func WithRunTimeout(d time.Duration) Option {
	return func(o *directorOptions) { o.runTimeout = d }
}

// WithEventBuffer sets the event channel buffer size.
func WithEventBuffer(n int) Option {
	return func(o *directorOptions) { o.eventBuffer = n }
}
