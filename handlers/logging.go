package handlers

import (
	"github.com/goliatone/go-pipeline"
)

// Logger interface shared across packages
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Logging returns middleware that logs before delegating, after the
// continuation returns, and on error. The name identifies the wrapped
// section of the chain in log output. A nil logger delegates silently.
func Logging(name string, logger Logger) pipeline.Middleware {
	return func(ctx pipeline.Context, next *pipeline.Pipeline) error {
		if logger == nil {
			return next.Invoke(ctx)
		}

		logger.Info("pipeline enter", "section", name)
		if err := next.Invoke(ctx); err != nil {
			logger.Error("pipeline failed", "section", name, "error", err)
			return err
		}
		logger.Info("pipeline exit", "section", name)
		return nil
	}
}
