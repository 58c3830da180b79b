package handlers

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-pipeline"
)

// Recover returns middleware that converts a panic anywhere downstream into
// an error returned from Invoke. When a logger is provided the cleaned stack
// trace is logged before the error propagates.
func Recover(logger Logger) pipeline.Middleware {
	return func(ctx pipeline.Context, next *pipeline.Pipeline) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			stack := make([]byte, 8096)
			n := runtime.Stack(stack, false)
			stack = cleanStackTrace(stack[:n])

			if logger != nil {
				logger.Error("recovered from panic in pipeline", "panic", r, "stack", string(stack))
			}

			if perr, ok := r.(error); ok {
				err = errors.Wrap(perr, errors.CategoryHandler, "panic in pipeline handler").
					WithTextCode("HANDLER_PANIC")
				return
			}
			err = errors.New(fmt.Sprintf("panic in pipeline handler: %v", r), errors.CategoryHandler).
				WithTextCode("HANDLER_PANIC")
		}()

		return next.Invoke(ctx)
	}
}

// cleanStackTrace drops the frames above the panic site so log output starts
// at the handler that actually blew up.
func cleanStackTrace(stack []byte) []byte {
	lines := strings.Split(string(stack), "\n")

	panicLineIndex := -1
	for i, line := range lines {
		if strings.Contains(line, "panic(") {
			panicLineIndex = i
			break
		}
	}

	if panicLineIndex >= 0 && panicLineIndex+2 < len(lines) {
		// remove the panic() call line & file reference line
		lines = lines[panicLineIndex+2:]
	}

	return []byte(strings.Join(lines, "\n"))
}
