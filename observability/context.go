package observability

import (
	"context"
	"time"
)

// RequestContext holds the identity of one in-flight request. It is a value
// type and immutable by convention: middleware that needs to add a field
// (e.g. the authenticated user) replaces the whole value via WithRequestContext
// rather than mutating it in place.
type RequestContext struct {
	RequestID string    `json:"request_id"`
	UserID    string    `json:"user_id,omitempty"`
	CompanyID string    `json:"company_id,omitempty"`
	Endpoint  string    `json:"endpoint"`
	Timestamp time.Time `json:"timestamp"`
}

// IsZero reports whether no request context has been installed.
func (rc RequestContext) IsZero() bool {
	return rc.RequestID == "" && rc.Endpoint == ""
}

// Context key types to avoid collisions
type requestContextKey struct{}
type bufferKey struct{}

// WithRequestContext installs a request context value. Child goroutines started
// with the returned ctx see the value; replacing it later in a different ctx
// never leaks back (value-at-fork semantics of context.Context).
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestContextFrom returns the ambient request context, or a zero value when
// none was installed. Never panics.
func RequestContextFrom(ctx context.Context) RequestContext {
	if ctx == nil {
		return RequestContext{}
	}
	if rc, ok := ctx.Value(requestContextKey{}).(RequestContext); ok {
		return rc
	}
	return RequestContext{}
}

// WithBuffer installs the request's operation log. Only the lifecycle
// middleware installs a buffer; everything else reads it through BufferFrom,
// preserving the single-writer ownership of the log.
func WithBuffer(ctx context.Context, buf *OperationLog) context.Context {
	return context.WithValue(ctx, bufferKey{}, buf)
}

// BufferFrom returns the ambient operation log, or nil when none is installed.
func BufferFrom(ctx context.Context) *OperationLog {
	if ctx == nil {
		return nil
	}
	if buf, ok := ctx.Value(bufferKey{}).(*OperationLog); ok {
		return buf
	}
	return nil
}

// RequestIDFrom returns the ambient request id, or empty string.
func RequestIDFrom(ctx context.Context) string {
	return RequestContextFrom(ctx).RequestID
}
