package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/rainycowork/cowork/internal/ai"
	"github.com/rainycowork/cowork/pkg/models"
)

// roleSpec describes one specialized worker role: its category, the system
// preamble for its prompts, the capabilities it advertises, and the task
// keywords it volunteers for.
type roleSpec struct {
	typ          models.WorkerType
	name         string
	preamble     string
	capabilities []string
	keywords     []string
}

var roles = map[models.WorkerType]roleSpec{
	models.WorkerResearcher: {
		typ:      models.WorkerResearcher,
		name:     "Researcher",
		preamble: "You are a research specialist. Search, analyze, and extract the information needed below. Cite what you relied on and highlight key findings.",
		capabilities: []string{
			"web_search", "file_analysis", "data_extraction", "research_synthesis",
		},
		keywords: []string{"search", "research", "analyze", "find", "extract", "investigate"},
	},
	models.WorkerExecutor: {
		typ:      models.WorkerExecutor,
		name:     "Executor",
		preamble: "You are an execution specialist. Carry out the operational steps below and report exactly what was done and the outcome of each step.",
		capabilities: []string{
			"command_execution", "file_operations", "process_management",
		},
		keywords: []string{"run", "execute", "perform", "apply", "install", "deploy"},
	},
	models.WorkerCreator: {
		typ:      models.WorkerCreator,
		name:     "Creator",
		preamble: "You are a writing specialist. Produce the document or content requested below, organized clearly with an appropriate tone.",
		capabilities: []string{
			"document_writing", "content_generation", "summarization", "editing",
		},
		keywords: []string{"write", "draft", "compose", "document", "summarize", "create"},
	},
	models.WorkerDesigner: {
		typ:      models.WorkerDesigner,
		name:     "Designer",
		preamble: "You are a design specialist. Propose the layout, structure, or visual design requested below, describing it concretely enough to implement.",
		capabilities: []string{
			"layout_design", "visual_design", "wireframing", "style_guidance",
		},
		keywords: []string{"design", "layout", "style", "mockup", "wireframe", "visual"},
	},
	models.WorkerDeveloper: {
		typ:      models.WorkerDeveloper,
		name:     "Developer",
		preamble: "You are a software development specialist. Implement or review the code requested below. Include the code itself and note any assumptions.",
		capabilities: []string{
			"code_generation", "code_review", "debugging", "refactoring",
		},
		keywords: []string{"code", "implement", "develop", "program", "debug", "refactor", "build"},
	},
	models.WorkerAnalyst: {
		typ:      models.WorkerAnalyst,
		name:     "Analyst",
		preamble: "You are a data analysis specialist. Analyze the data or situation described below and report findings, trends, and recommendations.",
		capabilities: []string{
			"data_analysis", "trend_detection", "reporting", "forecasting",
		},
		keywords: []string{"analyze", "report", "metrics", "statistics", "trend", "evaluate"},
	},
}

// Specialist is an AI-backed worker for one role.
type Specialist struct {
	base
	role     roleSpec
	provider ai.Provider
}

// NewSpecialist creates a worker of the given type backed by the provider.
// Returns an error for unknown worker types.
func NewSpecialist(id string, typ models.WorkerType, provider ai.Provider) (*Specialist, error) {
	role, ok := roles[typ]
	if !ok {
		return nil, fmt.Errorf("unknown worker type: %s", typ)
	}
	return &Specialist{
		base:     newBase(id, role.name, typ),
		role:     role,
		provider: provider,
	}, nil
}

// Execute runs one task through the generation service using the role's
// preamble. The worker is busy for the duration of the call.
func (s *Specialist) Execute(ctx context.Context, task models.Task) models.TaskResult {
	s.setBusy(task.ID)
	defer s.setIdle()

	prompt := fmt.Sprintf("%s\n\nTask: %s", s.role.preamble, task.Description)
	if task.Context.UserInstruction != "" && task.Context.UserInstruction != task.Description {
		prompt += fmt.Sprintf("\n\nOriginal instruction: %s", task.Context.UserInstruction)
	}
	if len(task.Context.RelevantFiles) > 0 {
		prompt += fmt.Sprintf("\n\nRelevant files: %s", strings.Join(task.Context.RelevantFiles, ", "))
	}

	output, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return models.FailedResult(err.Error()).
			WithMeta("task_id", task.ID).
			WithMeta("worker_id", s.id)
	}

	return models.NewResult(output).
		WithMeta("task_id", task.ID).
		WithMeta("worker_id", s.id).
		WithMeta("worker_type", string(s.typ))
}

// CanHandle reports whether the task description mentions any of the
// role's keywords.
func (s *Specialist) CanHandle(task models.Task) bool {
	desc := strings.ToLower(task.Description)
	for _, kw := range s.role.keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// Capabilities lists the role's advertised capability labels.
func (s *Specialist) Capabilities() []string {
	caps := make([]string, len(s.role.capabilities))
	copy(caps, s.role.capabilities)
	return caps
}

// SpecialistTypes returns the worker types with a built-in role, in a
// stable order.
func SpecialistTypes() []models.WorkerType {
	return []models.WorkerType{
		models.WorkerResearcher,
		models.WorkerExecutor,
		models.WorkerCreator,
		models.WorkerDesigner,
		models.WorkerDeveloper,
		models.WorkerAnalyst,
	}
}
