package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rainycowork/cowork/internal/ai"
	"github.com/rainycowork/cowork/pkg/models"
)

// decomposedSubTask is the JSON structure the generation service returns
// for a single subtask.
type decomposedSubTask struct {
	ID           string   `json:"id"`
	Description  string   `json:"description"`
	WorkerType   string   `json:"worker_type"`
	Dependencies []string `json:"dependencies"`
	Priority     string   `json:"priority"`
}

// Decomposer turns one high-level task into a validated subtask graph.
type Decomposer struct {
	provider ai.Provider
}

// NewDecomposer creates a Decomposer backed by the given provider.
func NewDecomposer(provider ai.Provider) *Decomposer {
	return &Decomposer{provider: provider}
}

// Decompose asks the generation service for a structured decomposition of
// the task, parses it strictly, and validates the result. A parse or
// validation failure aborts the decomposition; there is no silent empty
// plan.
func (d *Decomposer) Decompose(ctx context.Context, task models.Task) ([]models.SubTask, error) {
	prompt := fmt.Sprintf(decompositionPrompt, task.Description, task.Context.UserInstruction)

	response, err := d.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("decomposition query: %w", err)
	}

	subtasks, err := ParseResponse(response)
	if err != nil {
		return nil, fmt.Errorf("parse decomposition response: %w", err)
	}

	if err := Validate(subtasks); err != nil {
		return nil, fmt.Errorf("validate decomposition: %w", err)
	}

	return subtasks, nil
}

// ParseResponse parses the generation service's response into SubTasks.
// The response is treated as untrusted input: the JSON array is located,
// unmarshaled strictly, and an empty array is rejected.
func ParseResponse(response string) ([]models.SubTask, error) {
	jsonStart := strings.Index(response, "[")
	jsonEnd := strings.LastIndex(response, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		preview := response
		if len(preview) > 500 {
			preview = preview[:500] + "... (truncated)"
		}
		return nil, fmt.Errorf("no JSON array found in response (got %d chars): %q", len(response), preview)
	}

	var decomposed []decomposedSubTask
	if err := json.Unmarshal([]byte(response[jsonStart:jsonEnd+1]), &decomposed); err != nil {
		return nil, fmt.Errorf("unmarshal subtasks: %w", err)
	}
	if len(decomposed) == 0 {
		return nil, fmt.Errorf("empty subtask list returned")
	}

	subtasks := make([]models.SubTask, len(decomposed))
	for i, dt := range decomposed {
		if dt.ID == "" {
			return nil, fmt.Errorf("subtask at index %d has no id", i)
		}
		if dt.Description == "" {
			return nil, fmt.Errorf("subtask %s has no description", dt.ID)
		}

		priority := models.TaskPriority(strings.ToLower(dt.Priority))
		if !priority.Valid() {
			priority = models.PriorityMedium
		}

		deps := dt.Dependencies
		if deps == nil {
			deps = []string{}
		}

		subtasks[i] = models.SubTask{
			ID:           dt.ID,
			Description:  dt.Description,
			WorkerType:   models.WorkerType(strings.ToLower(dt.WorkerType)),
			Dependencies: deps,
			Priority:     priority,
		}
	}

	return subtasks, nil
}
