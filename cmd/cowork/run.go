package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rainycowork/cowork/internal/ai"
	"github.com/rainycowork/cowork/internal/bus"
	"github.com/rainycowork/cowork/internal/config"
	"github.com/rainycowork/cowork/internal/director"
	"github.com/rainycowork/cowork/internal/signals"
	"github.com/rainycowork/cowork/internal/worker"
	"github.com/rainycowork/cowork/pkg/models"
)

var (
	runDryRun    bool
	runTimeout   time.Duration
	runBroadcast bool
	runNoHistory bool
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a task with worker orchestration",
	Long: `Run a task using a team of specialist workers.

The task is decomposed into a dependency-ordered plan of subtasks. Each
subtask is matched to an idle worker of the requested category, independent
subtasks execute concurrently, and the partial outputs are aggregated into
one final answer.

Use --dry-run to print the validated plan without executing it.

A run already underway can be stopped with 'cowork cancel' from another
terminal, or with Ctrl-C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Decompose and validate only, print the plan as YAML")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "Overall run timeout (overrides config)")
	runCmd.Flags().BoolVar(&runBroadcast, "broadcast", false, "Broadcast the final result to all workers on the message bus")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in the project history")
}

func runTask(cmd *cobra.Command, args []string) error {
	description := strings.Join(args, " ")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runTimeout > 0 {
		cfg.Director.RunTimeout = runTimeout
	}
	if runBroadcast {
		cfg.Director.BroadcastResults = true
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	logger := newRunLogger()

	// Ctrl-C, SIGTERM, or a cancel file stops the run between waves.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sigs, err := signals.NewManager(cwd)
	if err != nil {
		return fmt.Errorf("init signal manager: %w", err)
	}
	defer sigs.Close()
	sigs.Clear()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-sigs.Done():
			logger.Warn().Msg("cancel signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	d, err := newDirector(cfg, provider, cwd)
	if err != nil {
		return err
	}
	registerWorkers(d, cfg, provider, logger)

	task := models.Task{
		ID:          uuid.New().String(),
		Description: description,
	}

	logger.Info().Str("task", task.ID).Msg("decomposing task")
	subtasks, err := d.Plan(ctx, task)
	if err != nil {
		return fmt.Errorf("plan task: %w", err)
	}
	logger.Info().Int("subtasks", len(subtasks)).Msg("plan validated")

	if runDryRun {
		return printPlan(cmd.OutOrStdout(), description, subtasks)
	}

	var rec *historyRecorder
	if cfg.History.Enabled && !runNoHistory {
		rec, err = newHistoryRecorder(cwd, cfg.History.PurgeAfter, task, subtasks, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("run history unavailable")
		} else {
			defer rec.Close()
		}
	}

	progressDone := make(chan struct{})
	go consumeEvents(d.Events(), rec, progressDone)

	result, err := d.ProcessPlanned(ctx, task, subtasks)
	close(progressDone)

	if err != nil {
		rec.Finish(false, "", 0)
		return fmt.Errorf("run task: %w", err)
	}
	rec.Finish(true, result.Output, metaInt(result, "failed_count"))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	if n := metaInt(result, "failed_count"); n > 0 {
		color.Yellow("Completed with %d failed subtask(s)", n)
	} else {
		color.Green("Completed %d subtask(s)", len(subtasks))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, result.Output)

	in, outTok := provider.Tracker().Total()
	logger.Info().
		Int64("input_tokens", in).
		Int64("output_tokens", outTok).
		Str("cost", fmt.Sprintf("$%.4f", provider.Tracker().Cost())).
		Msg("token usage")

	return nil
}

// newDirector wires the director from configuration. The debug trace log
// is only written when COWORK_DEBUG is set.
func newDirector(cfg *config.Config, provider ai.Provider, cwd string) (*director.Director, error) {
	opts := []director.Option{
		director.WithPollInterval(cfg.Director.PollInterval),
		director.WithRunTimeout(cfg.Director.RunTimeout),
		director.WithEventBuffer(cfg.Director.EventBuffer),
	}

	if cfg.Director.BroadcastResults {
		opts = append(opts, director.WithBus(bus.New()))
	}

	if os.Getenv("COWORK_DEBUG") != "" {
		dl, err := director.NewDebugLogger(filepath.Join(cwd, ".cowork", "debug.log"))
		if err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
		opts = append(opts, director.WithLogger(dl))
	}

	return director.New(provider, opts...), nil
}

// registerWorkers creates the configured number of specialists per category.
func registerWorkers(d *director.Director, cfg *config.Config, provider ai.Provider, logger zerolog.Logger) {
	counts := cfg.Workers.Counts()
	for _, typ := range worker.SpecialistTypes() {
		n := counts[string(typ)]
		for i := 1; i <= n; i++ {
			id := fmt.Sprintf("%s-%d", typ, i)
			sp, err := worker.NewSpecialist(id, typ, provider)
			if err != nil {
				logger.Warn().Err(err).Str("worker", id).Msg("skipping worker")
				continue
			}
			d.AddWorker(sp)
		}
	}
}

// dryRunPlan is the YAML shape printed by --dry-run.
type dryRunPlan struct {
	Task     string          `yaml:"task"`
	SubTasks []dryRunSubTask `yaml:"subtasks"`
}

type dryRunSubTask struct {
	ID           string   `yaml:"id"`
	Description  string   `yaml:"description"`
	WorkerType   string   `yaml:"worker_type"`
	Priority     string   `yaml:"priority"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

func printPlan(out io.Writer, description string, subtasks []models.SubTask) error {
	p := dryRunPlan{Task: description}
	for _, st := range subtasks {
		p.SubTasks = append(p.SubTasks, dryRunSubTask{
			ID:           st.ID,
			Description:  st.Description,
			WorkerType:   string(st.WorkerType),
			Priority:     string(st.Priority),
			Dependencies: st.Dependencies,
		})
	}

	data, err := yaml.Marshal(&p)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	_, err = out.Write(data)
	return err
}

// consumeEvents prints run progress and forwards subtask transitions to
// the history recorder until done is closed.
func consumeEvents(events <-chan director.Event, rec *historyRecorder, done <-chan struct{}) {
	for {
		select {
		case ev := <-events:
			handleEvent(ev, rec)
		case <-done:
			// Drain whatever the emitter already buffered.
			for {
				select {
				case ev := <-events:
					handleEvent(ev, rec)
				default:
					return
				}
			}
		}
	}
}

func handleEvent(ev director.Event, rec *historyRecorder) {
	switch ev.Type {
	case director.EventSubTaskStarted:
		fmt.Printf("  %s %s (%s)\n", color.CyanString("→"), ev.SubTaskID, ev.WorkerID)
		rec.SubTaskStarted(ev.SubTaskID, ev.WorkerID)
	case director.EventSubTaskCompleted:
		fmt.Printf("  %s %s\n", color.GreenString("✓"), ev.SubTaskID)
		rec.SubTaskFinished(ev.SubTaskID, "completed", "")
	case director.EventSubTaskFailed:
		fmt.Printf("  %s %s: %s\n", color.RedString("✗"), ev.SubTaskID, ev.Message)
		rec.SubTaskFinished(ev.SubTaskID, "failed", ev.Message)
	}
}

func metaInt(result models.TaskResult, key string) int {
	if v, ok := result.Metadata[key].(int); ok {
		return v
	}
	return 0
}

// newRunLogger builds the console logger for run progress.
func newRunLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if os.Getenv("COWORK_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
