package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	appctx "colisflow/internal/core/context"
	"colisflow/pkg/logger"
)

// Logger logs every request with timing and status.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		ctx := c.Request.Context()

		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"user_code", appctx.GetUserCode(ctx),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.Last().Error())
		}

		l := log.WithContext(ctx)
		switch {
		case status >= 500:
			l.Errorw("http request", kv...)
		case status >= 400:
			l.Warnw("http request", kv...)
		default:
			l.Infow("http request", kv...)
		}
	}
}
