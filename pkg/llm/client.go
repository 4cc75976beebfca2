package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client provides access to OpenAI-compatible completion endpoints,
// including local servers (Ollama, vLLM) that speak the same protocol.
type Client struct {
	client      *openai.Client
	endpoint    string
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// Config holds configuration for creating a completion client.
type Config struct {
	Endpoint    string        // Base URL, e.g. "http://localhost:11434/v1"
	Model       string        // Model name, e.g. "llama3"
	APIKey      string        // Optional for local endpoints
	Temperature float64       // Sampling temperature for all completions
	Timeout     time.Duration // Upper bound on a single completion call
}

// NewClient creates a new OpenAI-compatible completion client.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		endpoint:    cfg.Endpoint,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     timeout,
		logger:      logger.Named("llm"),
	}, nil
}

// Complete performs one chat completion. The call is bounded by the
// configured timeout; a timeout surfaces as a GenerationError like any other
// transport failure.
func (c *Client) Complete(ctx context.Context, prompt string, systemMessage string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("completion request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Error("completion request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &GenerationError{Message: "no choices in response"}
	}

	c.logger.Info("completion request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return resp.Choices[0].Message.Content, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
