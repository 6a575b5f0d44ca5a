package models

// TaskResult is the outcome of executing one task or of aggregating a run.
type TaskResult struct {
	// Success reports whether the task completed without errors.
	Success bool `json:"success"`
	// Output is the primary textual output of the task.
	Output string `json:"output"`
	// Errors lists error messages encountered during execution.
	Errors []string `json:"errors"`
	// Metadata carries free-form context (subtask id, worker id, etc.).
	Metadata map[string]any `json:"metadata"`
}

// NewResult creates a successful TaskResult with the given output.
func NewResult(output string) TaskResult {
	return TaskResult{
		Success:  true,
		Output:   output,
		Errors:   []string{},
		Metadata: map[string]any{},
	}
}

// FailedResult creates a failed TaskResult carrying the given error message.
func FailedResult(msg string) TaskResult {
	return TaskResult{
		Success:  false,
		Errors:   []string{msg},
		Metadata: map[string]any{},
	}
}

// WithMeta returns a copy of the result with one metadata entry added.
func (r TaskResult) WithMeta(key string, value any) TaskResult {
	meta := make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		meta[k] = v
	}
	meta[key] = value
	r.Metadata = meta
	return r
}
