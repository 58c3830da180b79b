package pipeline

import (
	"github.com/goliatone/go-errors"
)

// ErrAssembled is a sentinel error returned when a builder that was already
// consumed by Assemble is assembled again. Callers can detect the condition
// with errors.Is(err, ErrAssembled).
var ErrAssembled = errors.New("pipeline builder already assembled", errors.CategoryConflict).
	WithTextCode("BUILDER_ALREADY_ASSEMBLED")

// NewError creates a generic pipeline error carrying a descriptive message.
// Middleware is free to return any error type; this helper exists for
// handlers that have nothing richer to report.
func NewError(msg string) error {
	return errors.New(msg, errors.CategoryHandler).
		WithTextCode("PIPELINE_ERROR")
}

// WrapError wraps a failure from inside a handler with additional context
// while keeping the original error reachable through errors.Is/As.
func WrapError(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryHandler, msg).
		WithTextCode("PIPELINE_ERROR")
}
