// Package ai provides the text-generation boundary for cowork.
// The core treats the generation service as opaque, possibly slow, and
// possibly failing; no retry policy lives here.
package ai

import (
	"context"
	"errors"
)

// Sentinel errors for generation-service failures. Callers distinguish
// these with errors.Is to pick the right remediation.
var (
	// ErrRateLimited indicates the service rejected the request for quota reasons.
	ErrRateLimited = errors.New("generation service rate limited")
	// ErrInvalidCredential indicates the API key was rejected.
	ErrInvalidCredential = errors.New("invalid generation service credential")
	// ErrRequestFailed indicates a transport or server-side failure.
	ErrRequestFailed = errors.New("generation request failed")
	// ErrEmptyResponse indicates the service returned no usable text.
	ErrEmptyResponse = errors.New("generation service returned empty response")
)

// Provider is the contract for one text-generation capability:
// given a prompt, return a response string or a structured failure.
type Provider interface {
	// Complete sends the prompt and returns the generated text.
	Complete(ctx context.Context, prompt string) (string, error)
	// Name identifies the provider for logging and metadata.
	Name() string
}
