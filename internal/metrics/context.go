package metrics

import "context"

type contextKey struct{}

// NewContext attaches m to ctx so internal/dispatch (and any other package
// issuing provider calls) can record instrumentation without threading a
// *Metrics through every function signature.
func NewContext(ctx context.Context, m *Metrics) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the Metrics attached to ctx, or nil if none was
// attached. Every Metrics method tolerates a nil receiver, so callers never
// need a presence check of their own.
func FromContext(ctx context.Context) *Metrics {
	m, _ := ctx.Value(contextKey{}).(*Metrics)
	return m
}
