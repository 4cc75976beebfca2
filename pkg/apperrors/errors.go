// Package apperrors defines sentinel errors shared across layers.
package apperrors

import "errors"

var (
	ErrEmptyQuestion = errors.New("question text is required")
)
