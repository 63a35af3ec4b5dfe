package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies generation failures. The distinction is kept for
// observability; callers treat all kinds as a failed generation.
type ErrorKind string

const (
	KindTimeout      ErrorKind = "timeout"
	KindServiceError ErrorKind = "service_error"
	KindInvalidInput ErrorKind = "invalid_input"
)

// GenerationError is a typed failure from the AI provider.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("generation %s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// KindOf returns the error kind when err is a GenerationError, or the
// empty kind otherwise.
func KindOf(err error) ErrorKind {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// IsGenerationError reports whether err originated from the AI provider.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
