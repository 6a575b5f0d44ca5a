package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/rainycowork/cowork/internal/ai"
	"github.com/rainycowork/cowork/internal/config"
)

// newProvider builds the Anthropic provider from configuration.
// Bedrock runs resolve credentials through the AWS SDK chain; direct API
// runs require an API key from the environment or config file.
func newProvider(cfg *config.Config) (*ai.AnthropicProvider, error) {
	pc := ai.AnthropicConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		MaxTokens:     int64(cfg.Anthropic.MaxTokens),
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	}

	if !cfg.Anthropic.UseBedrock {
		key, _, err := config.ResolveAPIKey(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w\n\nSet ANTHROPIC_API_KEY or run 'cowork config anthropic.api_key <key>'", err)
		}
		pc.APIKey = key
	}

	return ai.NewAnthropicProvider(pc)
}
