package director

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rainycowork/cowork/internal/ai"
	"github.com/rainycowork/cowork/pkg/models"
)

// scriptedProvider returns queued responses in order.
type scriptedProvider struct {
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedProvider) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", ai.ErrEmptyResponse
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func (s *scriptedProvider) Name() string { return "scripted" }

func TestAggregate_Empty(t *testing.T) {
	ag := NewAggregator(&scriptedProvider{})

	result, err := ag.Aggregate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("expected empty aggregation to succeed")
	}
	if result.Output != "No subtasks were executed" {
		t.Errorf("unexpected output %q", result.Output)
	}
	if len(result.Errors) != 0 {
		t.Errorf("expected empty error list, got %v", result.Errors)
	}
}

func TestAggregate(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"unified narrative"}}
	ag := NewAggregator(provider)

	results := []models.TaskResult{
		models.NewResult("first finding"),
		models.NewResult("second finding"),
	}

	result, err := ag.Aggregate(context.Background(), results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Output != "unified narrative" {
		t.Errorf("unexpected output %q", result.Output)
	}
	if result.Metadata["subtask_count"] != 2 {
		t.Errorf("expected subtask_count 2, got %v", result.Metadata["subtask_count"])
	}
	if result.Metadata["aggregated"] != true {
		t.Errorf("expected aggregated flag, got %v", result.Metadata["aggregated"])
	}
	if _, ok := result.Metadata["failed_count"]; ok {
		t.Error("expected no failed_count for all-success input")
	}

	// The full result set is serialized into the prompt.
	if len(provider.prompts) != 1 || !strings.Contains(provider.prompts[0], "first finding") {
		t.Error("expected prompt to embed the serialized results")
	}
}

func TestAggregate_CountsFailures(t *testing.T) {
	provider := &scriptedProvider{responses: []string{"partial narrative"}}
	ag := NewAggregator(provider)

	results := []models.TaskResult{
		models.NewResult("good"),
		models.FailedResult("bad"),
	}

	result, err := ag.Aggregate(context.Background(), results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Metadata["failed_count"] != 1 {
		t.Errorf("expected failed_count 1, got %v", result.Metadata["failed_count"])
	}
}

func TestAggregate_ProviderErrorPropagates(t *testing.T) {
	ag := NewAggregator(&scriptedProvider{err: ai.ErrRequestFailed})

	_, err := ag.Aggregate(context.Background(), []models.TaskResult{models.NewResult("x")})
	if !errors.Is(err, ai.ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}
