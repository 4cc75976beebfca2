// Package llm provides the OpenAI-compatible text completion capability.
package llm

import "context"

// CompletionClient is the single-method completion capability consumed by the
// agent services. Use this interface for dependency injection to enable
// deterministic fakes in tests.
type CompletionClient interface {
	// Complete performs one blocking chat completion and returns the raw
	// model output. It never retries and never streams.
	Complete(ctx context.Context, prompt string, systemMessage string) (string, error)

	// Model returns the configured model name.
	Model() string
}

// Ensure Client implements CompletionClient at compile time.
var _ CompletionClient = (*Client)(nil)
