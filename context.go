package pipeline

// Context is the caller-owned state threaded through one pipeline traversal.
// It is type-erased so middleware can be written generically; handlers that
// need the concrete type recover it with As.
//
// Exactly one context instance should be live per traversal. The same
// assembled pipeline may run concurrently as long as each invocation owns
// its own context.
type Context any

// As attempts to recover the concrete context type from the erased value.
// The second return reports whether the recovery succeeded; generic
// middleware is expected to treat a failed recovery as "not applicable" and
// behave as a no-op rather than an error.
func As[T any](ctx Context) (T, bool) {
	v, ok := ctx.(T)
	return v, ok
}
