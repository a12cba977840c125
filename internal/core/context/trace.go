package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext identifies one HTTP request across logs and audit entries.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// NewTraceContext builds a TraceContext from incoming header values.
// A missing request id is generated; a missing trace id reuses the request id.
func NewTraceContext(requestID, traceID string) *TraceContext {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	if traceID == "" {
		traceID = requestID
	}
	return &TraceContext{
		TraceID:   traceID,
		SpanID:    uuid.NewString()[:16],
		RequestID: requestID,
	}
}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
