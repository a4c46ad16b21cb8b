package logging

import "context"

// contextKey is a private key type so values stored by this package can
// never collide with other packages using the same context.
type contextKey string

const traceIDKey contextKey = "traceId"

// ContextWithTraceID returns a child context carrying the given trace id.
// An empty id mints a fresh one. The parent context is never mutated, so
// concurrent flows holding the parent remain isolated from each other.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if traceID == emptyString {
		traceID = NewTraceID()
	}
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext reports the trace id active on ctx, if any.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return emptyString, false
	}
	id, ok := ctx.Value(traceIDKey).(string)
	if !ok || id == emptyString {
		return emptyString, false
	}
	return id, true
}

// EnsureTraceID returns a context that is guaranteed to carry a trace id,
// reusing the ambient one when present and minting otherwise.
func EnsureTraceID(ctx context.Context) (context.Context, string) {
	if id, ok := TraceIDFromContext(ctx); ok {
		return ctx, id
	}
	id := NewTraceID()
	return ContextWithTraceID(ctx, id), id
}

// Run executes fn inside a trace scope bound to the given id (minted when
// empty). The scope exists only on the context passed to fn; the caller's
// context is untouched, so interleaved flows each observe their own id.
// fn's result is returned unchanged.
func Run(ctx context.Context, traceID string, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ContextWithTraceID(ctx, traceID))
}
