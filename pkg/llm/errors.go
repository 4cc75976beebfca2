package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// GenerationError reports that the completion capability itself failed:
// unreachable endpoint, auth rejection, timeout, or an empty response.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("completion failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("completion failed: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// classifyError wraps a transport error in a GenerationError with a
// human-readable classification. Best effort over the error text; unknown
// causes get a generic message.
func classifyError(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	lower := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "timeout"):
		return &GenerationError{Message: "request timed out", Cause: err}
	case strings.Contains(lower, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key"):
		return &GenerationError{Message: "authentication failed", Cause: err}
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return &GenerationError{Message: "endpoint unreachable", Cause: err}
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return &GenerationError{Message: "rate limited", Cause: err}
	default:
		return &GenerationError{Message: "model error", Cause: err}
	}
}
