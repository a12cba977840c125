package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"colisflow/internal/core/apperror"
	"colisflow/pkg/logger"
)

// ErrorHandler turns c.Errors into the JSON error envelope.
// Internal causes are logged and never returned to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// Handler already answered.
		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		var body gin.H

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			status = appErr.HTTPStatus
			body = gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
			body = gin.H{
				"code":    apperror.CodeInternal,
				"message": "Internal server error",
				"details": map[string]any{
					"request_id": c.GetString(ctxRequestID),
				},
			}
		}

		failIdempotency(c, status, body)
		c.JSON(status, body)
	}
}

// failIdempotency stores the error response for replay, or releases the key
// on a server fault so the client can retry. Best-effort.
func failIdempotency(c *gin.Context, status int, body gin.H) {
	key := c.GetString(ctxIdempotencyKey)
	if key == "" {
		return
	}
	v, ok := c.Get(ctxIdempotencyStore)
	if !ok {
		return
	}
	store, ok := v.(IdempotencyStore)
	if !ok || store == nil {
		return
	}

	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		if err := store.ReleaseKey(ctx, key); err != nil {
			logger.Warn(ctx, "release idempotency key", "key", key, "error", err)
		}
		return
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return
	}
	if err := store.FailKey(ctx, key, status, "application/json", raw); err != nil {
		logger.Warn(ctx, "fail idempotency key", "key", key, "error", err)
	}
}
