package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rainycowork/cowork/internal/config"
	"github.com/rainycowork/cowork/pkg/models"
)

func TestPrintPlan(t *testing.T) {
	subtasks := []models.SubTask{
		{
			ID:          "subtask-1",
			Description: "research the topic",
			WorkerType:  models.WorkerResearcher,
			Priority:    models.PriorityHigh,
		},
		{
			ID:           "subtask-2",
			Description:  "write the summary",
			WorkerType:   models.WorkerCreator,
			Priority:     models.PriorityMedium,
			Dependencies: []string{"subtask-1"},
		},
	}

	var buf bytes.Buffer
	if err := printPlan(&buf, "produce a research summary", subtasks); err != nil {
		t.Fatalf("print plan: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"task: produce a research summary",
		"id: subtask-1",
		"worker_type: researcher",
		"priority: high",
		"- subtask-1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected plan output to contain %q, got:\n%s", want, out)
		}
	}

	// The independent subtask has no dependencies key at all.
	if strings.Count(out, "dependencies:") != 1 {
		t.Errorf("expected a single dependencies key, got:\n%s", out)
	}
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(*config.Config) bool
	}{
		{
			name: "model", key: "anthropic.model", value: "claude-opus-4-20250514",
			check: func(c *config.Config) bool { return c.Anthropic.Model == "claude-opus-4-20250514" },
		},
		{
			name: "poll interval", key: "director.poll_interval", value: "50ms",
			check: func(c *config.Config) bool { return c.Director.PollInterval == 50*time.Millisecond },
		},
		{
			name: "worker count", key: "workers.analyst", value: "3",
			check: func(c *config.Config) bool { return c.Workers.Analyst == 3 },
		},
		{
			name: "history toggle", key: "history.enabled", value: "false",
			check: func(c *config.Config) bool { return !c.History.Enabled },
		},
		{name: "bad duration", key: "director.run_timeout", value: "soon", wantErr: true},
		{name: "negative workers", key: "workers.creator", value: "-1", wantErr: true},
		{name: "unknown category", key: "workers.wizard", value: "1", wantErr: true},
		{name: "unknown key", key: "nope.nope", value: "x", wantErr: true},
		{name: "malformed api key", key: "anthropic.api_key", value: "not-a-key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			err := setConfigValue(cfg, tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("setConfigValue(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			}
			if err == nil && tt.check != nil && !tt.check(cfg) {
				t.Errorf("value not applied for %s", tt.key)
			}
		})
	}
}

func TestGetConfigValue(t *testing.T) {
	cfg := config.Default()
	cfg.Workers.Developer = 2

	got, err := getConfigValue(cfg, "workers.developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2" {
		t.Errorf("expected 2, got %q", got)
	}

	if _, err := getConfigValue(cfg, "bogus.key"); err == nil {
		t.Error("expected error for unknown key")
	}

	// Unset API key displays as a placeholder, never empty.
	got, err = getConfigValue(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "(not set)" {
		t.Errorf("expected placeholder, got %q", got)
	}
}
