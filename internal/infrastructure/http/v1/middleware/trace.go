package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "colisflow/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// gin context keys shared by the middleware chain.
const (
	ctxRequestID = "request_id"
	ctxTraceID   = "trace_id"
)

// Trace propagates or generates request and trace ids and echoes them back.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext(c.GetHeader(HeaderRequestID), c.GetHeader(HeaderTraceID))
		c.Request = c.Request.WithContext(appctx.WithTrace(c.Request.Context(), trace))

		c.Set(ctxTraceID, trace.TraceID)
		c.Set(ctxRequestID, trace.RequestID)

		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
