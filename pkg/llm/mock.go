package llm

import "context"

// MockCompletionClient is a configurable fake for testing. Set CompleteFunc
// to control behavior; calls are counted for verification.
type MockCompletionClient struct {
	// CompleteFunc is called when Complete is invoked. If nil, Complete
	// returns an empty string and nil error.
	CompleteFunc func(ctx context.Context, prompt string, systemMessage string) (string, error)

	// ModelName is returned by Model. Defaults to "mock-model".
	ModelName string

	CompleteCalls int
	LastPrompt    string
	LastSystem    string
}

// NewMockCompletionClient creates a new mock with sensible defaults.
func NewMockCompletionClient() *MockCompletionClient {
	return &MockCompletionClient{ModelName: "mock-model"}
}

// Complete implements CompletionClient.
func (m *MockCompletionClient) Complete(ctx context.Context, prompt string, systemMessage string) (string, error) {
	m.CompleteCalls++
	m.LastPrompt = prompt
	m.LastSystem = systemMessage
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemMessage)
	}
	return "", nil
}

// Model implements CompletionClient.
func (m *MockCompletionClient) Model() string {
	if m.ModelName == "" {
		return "mock-model"
	}
	return m.ModelName
}

var _ CompletionClient = (*MockCompletionClient)(nil)
