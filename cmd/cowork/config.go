package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rainycowork/cowork/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify cowork configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/cowork/config.yaml
Project-specific overrides can be placed in .cowork.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	key, source, err := config.ResolveAPIKey(cfg)
	apiKeyDisplay := "(not set)"
	if err == nil {
		apiKeyDisplay = fmt.Sprintf("%s (from %s)", config.MaskAPIKey(key), source)
	}

	fmt.Printf("anthropic.api_key: %s\n", apiKeyDisplay)
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.max_tokens: %d\n", cfg.Anthropic.MaxTokens)
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", cfg.Anthropic.AWSRegion)
	fmt.Printf("anthropic.aws_profile: %s\n", cfg.Anthropic.AWSProfile)
	fmt.Printf("director.poll_interval: %s\n", cfg.Director.PollInterval)
	fmt.Printf("director.run_timeout: %s\n", cfg.Director.RunTimeout)
	fmt.Printf("director.event_buffer: %d\n", cfg.Director.EventBuffer)
	fmt.Printf("director.broadcast_results: %t\n", cfg.Director.BroadcastResults)
	for _, category := range []string{"researcher", "executor", "creator", "designer", "developer", "analyst"} {
		fmt.Printf("workers.%s: %d\n", category, cfg.Workers.Counts()[category])
	}
	fmt.Printf("history.enabled: %t\n", cfg.History.Enabled)
	fmt.Printf("history.purge_after: %s\n", cfg.History.PurgeAfter)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if cfg.Anthropic.APIKey == "" {
			return "(not set)", nil
		}
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.max_tokens":
		return strconv.Itoa(cfg.Anthropic.MaxTokens), nil
	case "anthropic.use_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "director.poll_interval":
		return cfg.Director.PollInterval.String(), nil
	case "director.run_timeout":
		return cfg.Director.RunTimeout.String(), nil
	case "director.event_buffer":
		return strconv.Itoa(cfg.Director.EventBuffer), nil
	case "director.broadcast_results":
		return strconv.FormatBool(cfg.Director.BroadcastResults), nil
	case "history.enabled":
		return strconv.FormatBool(cfg.History.Enabled), nil
	case "history.purge_after":
		return cfg.History.PurgeAfter.String(), nil
	default:
		if category, ok := strings.CutPrefix(strings.ToLower(key), "workers."); ok {
			if n, found := cfg.Workers.Counts()[category]; found {
				return strconv.Itoa(n), nil
			}
		}
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return err
		}
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("max_tokens must be a positive integer")
		}
		cfg.Anthropic.MaxTokens = n
	case "anthropic.use_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("use_bedrock must be true or false")
		}
		cfg.Anthropic.UseBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "director.poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("poll_interval must be a positive duration (e.g. 100ms)")
		}
		cfg.Director.PollInterval = d
	case "director.run_timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("run_timeout must be a duration (e.g. 10m)")
		}
		cfg.Director.RunTimeout = d
	case "director.event_buffer":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("event_buffer must be a positive integer")
		}
		cfg.Director.EventBuffer = n
	case "director.broadcast_results":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("broadcast_results must be true or false")
		}
		cfg.Director.BroadcastResults = b
	case "history.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("enabled must be true or false")
		}
		cfg.History.Enabled = b
	case "history.purge_after":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("purge_after must be a duration (e.g. 720h)")
		}
		cfg.History.PurgeAfter = d
	default:
		if category, ok := strings.CutPrefix(strings.ToLower(key), "workers."); ok {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("worker count must be a non-negative integer")
			}
			switch category {
			case "researcher":
				cfg.Workers.Researcher = n
			case "executor":
				cfg.Workers.Executor = n
			case "creator":
				cfg.Workers.Creator = n
			case "designer":
				cfg.Workers.Designer = n
			case "developer":
				cfg.Workers.Developer = n
			case "analyst":
				cfg.Workers.Analyst = n
			default:
				return fmt.Errorf("unknown worker category: %s", category)
			}
			return nil
		}
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
