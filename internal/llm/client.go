// Package llm integrates the external language-model service behind a
// single text-completion call.
package llm

import (
	"context"
)

// Client is the interface to the text-completion service. One prompt in,
// one reply out; the call is fallible and latency-bearing.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for LLM clients
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   int
	MaxTokens int
}
