// Package requestmeta gives every inbound HTTP request a correlation id and
// a start time, and derives the flat set of request properties that log and
// telemetry code attach to every line they write about a request.
//
// The correlation id is taken from the X-Request-ID header when the caller
// sends an acceptable one, otherwise it is generated. Either way the same
// value is echoed on the response before any handler runs.
package requestmeta

import (
	"context"
	"time"
)

// RequestContext is the per-request state created by Begin.
// It lives in the request's context.Context and is never persisted.
type RequestContext struct {
	// CorrelationID is propagated from the inbound header or freshly generated.
	CorrelationID string

	// StartTime carries a monotonic clock reading, so Elapsed is not affected
	// by wall-clock adjustments.
	StartTime time.Time
}

// Elapsed returns the time spent since the request entered the service.
func (rc *RequestContext) Elapsed() time.Duration {
	return time.Since(rc.StartTime)
}

type contextKey struct{}

// WithRequestContext returns a copy of ctx carrying rc.
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// FromContext returns the RequestContext stored in ctx, if any.
func FromContext(ctx context.Context) (*RequestContext, bool) {
	rc, ok := ctx.Value(contextKey{}).(*RequestContext)
	return rc, ok && rc != nil
}

// RequestID returns the correlation id stored in ctx, or "" when the
// request never went through Begin.
func RequestID(ctx context.Context) string {
	if rc, ok := FromContext(ctx); ok {
		return rc.CorrelationID
	}
	return ""
}
