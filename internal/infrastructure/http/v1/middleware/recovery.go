// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"colisflow/internal/core/apperror"
	"colisflow/pkg/logger"
)

// Recovery turns a panic into a 500 AppError. The stack is logged, never returned.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", r,
					"stack", string(debug.Stack()),
				)

				_ = c.Error(
					apperror.NewInternal(fmt.Errorf("panic: %v", r)).
						WithDetail("request_id", c.GetString(ctxRequestID)),
				)
				c.Abort()
			}
		}()
		c.Next()
	}
}
