package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Anthropic.MaxTokens != 4096 {
		t.Errorf("expected max tokens 4096, got %d", cfg.Anthropic.MaxTokens)
	}

	if cfg.Director.PollInterval != 100*time.Millisecond {
		t.Errorf("expected poll interval 100ms, got %v", cfg.Director.PollInterval)
	}

	if cfg.Director.RunTimeout != 10*time.Minute {
		t.Errorf("expected run timeout 10m, got %v", cfg.Director.RunTimeout)
	}

	if cfg.Director.EventBuffer != 64 {
		t.Errorf("expected event buffer 64, got %d", cfg.Director.EventBuffer)
	}

	counts := cfg.Workers.Counts()
	for category, n := range counts {
		if n != 1 {
			t.Errorf("expected one %s worker by default, got %d", category, n)
		}
	}
	if len(counts) != 6 {
		t.Errorf("expected 6 worker categories, got %d", len(counts))
	}

	if !cfg.History.Enabled {
		t.Error("expected history.enabled to be true")
	}

	if cfg.History.PurgeAfter != 720*time.Hour {
		t.Errorf("expected purge after 720h, got %v", cfg.History.PurgeAfter)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `anthropic:
  api_key: sk-ant-test-key
  model: claude-opus-4-20250514
director:
  poll_interval: 50ms
  run_timeout: 2m
  broadcast_results: true
workers:
  researcher: 2
  analyst: 0
history:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-test-key" {
		t.Errorf("expected api key from file, got %q", cfg.Anthropic.APIKey)
	}
	if cfg.Anthropic.Model != "claude-opus-4-20250514" {
		t.Errorf("expected model from file, got %q", cfg.Anthropic.Model)
	}
	if cfg.Director.PollInterval != 50*time.Millisecond {
		t.Errorf("expected poll interval 50ms, got %v", cfg.Director.PollInterval)
	}
	if cfg.Director.RunTimeout != 2*time.Minute {
		t.Errorf("expected run timeout 2m, got %v", cfg.Director.RunTimeout)
	}
	if !cfg.Director.BroadcastResults {
		t.Error("expected broadcast_results true")
	}

	// Overridden values take effect; untouched sections keep defaults.
	if cfg.Workers.Researcher != 2 {
		t.Errorf("expected 2 researchers, got %d", cfg.Workers.Researcher)
	}
	if cfg.Workers.Analyst != 0 {
		t.Errorf("expected 0 analysts, got %d", cfg.Workers.Analyst)
	}
	if cfg.Workers.Executor != 1 {
		t.Errorf("expected default 1 executor, got %d", cfg.Workers.Executor)
	}
	if cfg.History.Enabled {
		t.Error("expected history disabled")
	}
	if cfg.Anthropic.MaxTokens != 4096 {
		t.Errorf("expected default max tokens, got %d", cfg.Anthropic.MaxTokens)
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadFromPathExpandsEnvReferences(t *testing.T) {
	t.Setenv("COWORK_TEST_KEY", "sk-ant-from-env")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "anthropic:\n  api_key: ${COWORK_TEST_KEY}\n"
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Anthropic.APIKey != "sk-ant-from-env" {
		t.Errorf("expected expanded key, got %q", cfg.Anthropic.APIKey)
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Anthropic.Model = "claude-haiku-3-5-20241022"
	cfg.Workers.Developer = 3

	if err := Save(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}

	loaded, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if loaded.Anthropic.Model != "claude-haiku-3-5-20241022" {
		t.Errorf("expected saved model, got %q", loaded.Anthropic.Model)
	}
	if loaded.Workers.Developer != 3 {
		t.Errorf("expected 3 developers, got %d", loaded.Workers.Developer)
	}
}

func TestGetUserConfigPathHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	want := filepath.Join(dir, "cowork", "config.yaml")
	if got := GetUserConfigPath(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
