// Package config handles configuration loading and management for cowork.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for cowork.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Director  DirectorConfig  `mapstructure:"director"`
	Workers   WorkersConfig   `mapstructure:"workers"`
	History   HistoryConfig   `mapstructure:"history"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`
	MaxTokens  int    `mapstructure:"max_tokens"`
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// DirectorConfig holds orchestration settings.
type DirectorConfig struct {
	PollInterval     time.Duration `mapstructure:"poll_interval"`
	RunTimeout       time.Duration `mapstructure:"run_timeout"`
	EventBuffer      int           `mapstructure:"event_buffer"`
	BroadcastResults bool          `mapstructure:"broadcast_results"`
}

// WorkersConfig holds how many workers of each category to register.
type WorkersConfig struct {
	Researcher int `mapstructure:"researcher"`
	Executor   int `mapstructure:"executor"`
	Creator    int `mapstructure:"creator"`
	Designer   int `mapstructure:"designer"`
	Developer  int `mapstructure:"developer"`
	Analyst    int `mapstructure:"analyst"`
}

// Counts returns the worker counts keyed by category name.
func (w WorkersConfig) Counts() map[string]int {
	return map[string]int{
		"researcher": w.Researcher,
		"executor":   w.Executor,
		"creator":    w.Creator,
		"designer":   w.Designer,
		"developer":  w.Developer,
		"analyst":    w.Analyst,
	}
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	PurgeAfter time.Duration `mapstructure:"purge_after"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, COWORK_*)
// 2. Project config (.cowork.yaml in current directory or parent)
// 3. User config (~/.config/cowork/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Load user config from XDG path
	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			// Merge project config (takes precedence)
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvPrefix("COWORK")

	// Map specific environment variables
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.model", "COWORK_MODEL")
	v.BindEnv("anthropic.use_bedrock", "COWORK_USE_BEDROCK")
	v.BindEnv("anthropic.aws_region", "AWS_REGION")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.max_tokens", cfg.Anthropic.MaxTokens)
	v.Set("anthropic.use_bedrock", cfg.Anthropic.UseBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("director.poll_interval", cfg.Director.PollInterval.String())
	v.Set("director.run_timeout", cfg.Director.RunTimeout.String())
	v.Set("director.event_buffer", cfg.Director.EventBuffer)
	v.Set("director.broadcast_results", cfg.Director.BroadcastResults)
	v.Set("workers.researcher", cfg.Workers.Researcher)
	v.Set("workers.executor", cfg.Workers.Executor)
	v.Set("workers.creator", cfg.Workers.Creator)
	v.Set("workers.designer", cfg.Workers.Designer)
	v.Set("workers.developer", cfg.Workers.Developer)
	v.Set("workers.analyst", cfg.Workers.Analyst)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.purge_after", cfg.History.PurgeAfter.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	// Anthropic defaults
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.use_bedrock", false)
	v.SetDefault("anthropic.aws_region", "us-east-1")
	v.SetDefault("anthropic.aws_profile", "")

	// Director defaults
	v.SetDefault("director.poll_interval", "100ms")
	v.SetDefault("director.run_timeout", "10m")
	v.SetDefault("director.event_buffer", 64)
	v.SetDefault("director.broadcast_results", false)

	// One worker of each category
	v.SetDefault("workers.researcher", 1)
	v.SetDefault("workers.executor", 1)
	v.SetDefault("workers.creator", 1)
	v.SetDefault("workers.designer", 1)
	v.SetDefault("workers.developer", 1)
	v.SetDefault("workers.analyst", 1)

	// History defaults
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.purge_after", "720h")
}

// getUserConfigDir returns the XDG config directory for cowork.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cowork")
	}

	// Fall back to ~/.config/cowork
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "cowork")
	}
	return filepath.Join(home, ".config", "cowork")
}

// findProjectConfig searches for .cowork.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".cowork.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
			AWSRegion: "us-east-1",
		},
		Director: DirectorConfig{
			PollInterval: 100 * time.Millisecond,
			RunTimeout:   10 * time.Minute,
			EventBuffer:  64,
		},
		Workers: WorkersConfig{
			Researcher: 1,
			Executor:   1,
			Creator:    1,
			Designer:   1,
			Developer:  1,
			Analyst:    1,
		},
		History: HistoryConfig{
			Enabled:    true,
			PurgeAfter: 720 * time.Hour,
		},
	}
}
