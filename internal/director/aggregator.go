package director

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rainycowork/cowork/internal/ai"
	"github.com/rainycowork/cowork/pkg/models"
)

// aggregationPrompt instructs the generation service to fold subtask
// results into one narrative.
const aggregationPrompt = `Combine these task results into a cohesive output:
Results: %s

Provide a unified response that addresses the original task. Organize the
information clearly and highlight key findings. Note explicitly any
subtasks that failed.`

// Aggregator folds completed subtask results into one unified TaskResult.
type Aggregator struct {
	provider ai.Provider
}

// NewAggregator creates an Aggregator backed by the given provider.
func NewAggregator(provider ai.Provider) *Aggregator {
	return &Aggregator{provider: provider}
}

// Aggregate synthesizes one TaskResult from the subtask results. Zero
// results is a genuine non-error state, not a failure. A synthesis-call
// failure propagates as a hard error.
func (ag *Aggregator) Aggregate(ctx context.Context, results []models.TaskResult) (models.TaskResult, error) {
	if len(results) == 0 {
		return models.NewResult("No subtasks were executed"), nil
	}

	payload, err := json.Marshal(results)
	if err != nil {
		return models.TaskResult{}, fmt.Errorf("serialize results: %w", err)
	}

	combined, err := ag.provider.Complete(ctx, fmt.Sprintf(aggregationPrompt, payload))
	if err != nil {
		return models.TaskResult{}, fmt.Errorf("aggregation query: %w", err)
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}

	out := models.NewResult(combined).
		WithMeta("subtask_count", len(results)).
		WithMeta("aggregated", true)
	if failed > 0 {
		out = out.WithMeta("failed_count", failed)
	}
	return out, nil
}
