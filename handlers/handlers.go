// Package handlers provides a standard set of generic middleware for the
// pipeline package. Handlers that depend on a context capability attempt a
// typed recovery of the context; when the recovery fails they do nothing at
// all, neither repeating nor delegating.
package handlers

import (
	"time"

	"github.com/goliatone/go-pipeline"
)

// Repeatable lets a context drive repeated traversal of the remainder of
// the chain.
type Repeatable interface {
	// ShouldRepeat reports whether the rest of the pipeline should run again.
	ShouldRepeat() bool

	// Delay is the pause between iterations. Zero means no pause.
	Delay() time.Duration
}

// Repeat returns middleware that keeps invoking the continuation while the
// context reports ShouldRepeat, sleeping Delay between iterations. The sleep
// blocks the calling goroutine. An error from the continuation aborts the
// loop and propagates.
func Repeat[T Repeatable]() pipeline.Middleware {
	return func(ctx pipeline.Context, next *pipeline.Pipeline) error {
		c, ok := pipeline.As[T](ctx)
		if !ok {
			return nil
		}

		for c.ShouldRepeat() {
			if err := next.Invoke(ctx); err != nil {
				return err
			}

			if d := c.Delay(); d > 0 {
				time.Sleep(d)
			}
		}

		return nil
	}
}

// RepeatWithStrategy behaves like Repeat but takes the inter-iteration pause
// from the given strategy, keyed by iteration index, instead of the
// context's own Delay.
func RepeatWithStrategy[T Repeatable](strategy DelayStrategy) pipeline.Middleware {
	return func(ctx pipeline.Context, next *pipeline.Pipeline) error {
		c, ok := pipeline.As[T](ctx)
		if !ok {
			return nil
		}

		for iteration := 0; c.ShouldRepeat(); iteration++ {
			if err := next.Invoke(ctx); err != nil {
				return err
			}

			if strategy != nil {
				if d := strategy.SleepDuration(iteration); d > 0 {
					time.Sleep(d)
				}
			}
		}

		return nil
	}
}

// End is middleware that results in a noop by immediately returning nil.
//
// Useful for returning from a branch early or having an explicit definition
// of the end of the pipeline or branch.
func End(_ pipeline.Context, _ *pipeline.Pipeline) error {
	return nil
}
