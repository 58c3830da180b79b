package pipeline

import (
	"sync"
)

// Builder accumulates middleware registrations in order and assembles them
// into a single Pipeline. Registration order is execution order.
type Builder struct {
	mu         sync.Mutex
	middleware []Middleware
	assembled  bool
}

// New creates an empty Builder.
func New() *Builder {
	return &Builder{}
}

// With appends a middleware to the chain. Nil middleware is ignored. Returns
// the builder for chaining.
func (b *Builder) With(mw Middleware) *Builder {
	if mw == nil {
		return b
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middleware = append(b.middleware, mw)
	return b
}

// When registers a conditional branch. The branch callback populates a fresh
// nested builder, which is assembled immediately into a sub-pipeline. At
// invocation time, if predicate(ctx) is true the sub-pipeline runs and its
// result is returned without calling the outer continuation; otherwise the
// outer continuation runs and the branch never executes.
//
// A taken branch replaces the remainder of the outer chain for that
// traversal, it does not merge back into it.
func (b *Builder) When(predicate Predicate, branch func(*Builder)) *Builder {
	sub := New()
	if branch != nil {
		branch(sub)
	}
	sub.mu.Lock()
	sub.assembled = true
	branchPipeline := assemble(sub.middleware)
	sub.middleware = nil
	sub.mu.Unlock()

	return b.With(func(ctx Context, next *Pipeline) error {
		if predicate != nil && predicate(ctx) {
			return branchPipeline.Invoke(ctx)
		}
		return next.Invoke(ctx)
	})
}

// Assemble consumes the builder and returns the composed Pipeline. The
// builder cannot be assembled twice: a second call fails with ErrAssembled.
// Assembly is pure data folding and performs no context-dependent work; an
// empty builder yields the terminal pipeline, whose Invoke is a no-op
// success.
func (b *Builder) Assemble() (*Pipeline, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.assembled {
		return nil, ErrAssembled
	}
	b.assembled = true

	middleware := b.middleware
	b.middleware = nil

	return assemble(middleware), nil
}

// assemble folds the middleware list right-to-left so that each middleware
// closes over the continuation representing everything after it. The
// closures are immutable once built and shared by every invocation of the
// resulting pipeline.
func assemble(middleware []Middleware) *Pipeline {
	chain := &Pipeline{}
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := chain
		chain = &Pipeline{next: func(ctx Context) error {
			return mw(ctx, next)
		}}
	}
	return chain
}
