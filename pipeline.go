// Package pipeline composes ordered middleware chains into a single
// invocable unit. Each registered middleware receives the traversal context
// and a continuation representing the remainder of the chain, letting it
// perform work both before and after delegating downstream.
package pipeline

// Middleware is the unit of work registered on a Builder. It can be a free
// standing function or an inline closure. A middleware decides whether to
// call next.Invoke(ctx); skipping the call short-circuits the remainder of
// the chain.
type Middleware func(ctx Context, next *Pipeline) error

// Predicate evaluates the context to decide whether a branch applies.
type Predicate func(ctx Context) bool

// thunk is the internal composed form of a middleware plus its suffix chain.
type thunk func(ctx Context) error

// Pipeline holds the next step of an assembled chain. A Pipeline with no
// next step is the terminal handle: invoking it succeeds and does nothing.
//
// An assembled Pipeline carries no mutable state of its own, so it can be
// cached and invoked many times, concurrently, as long as each invocation
// gets its own context instance.
type Pipeline struct {
	next thunk
}

// Invoke runs the attached continuation with ctx, or returns nil immediately
// when the pipeline is terminal. Errors from the continuation are returned
// verbatim, never wrapped.
func (p *Pipeline) Invoke(ctx Context) error {
	if p == nil || p.next == nil {
		return nil
	}
	return p.next(ctx)
}
