package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"colisflow/internal/core/apperror"
	appctx "colisflow/internal/core/context"
	"colisflow/internal/infrastructure/storage/postgres"
)

const (
	HeaderIdempotencyKey    = "X-Idempotency-Key"
	maxIdempotencyBodyBytes = 1 << 20 // 1 MiB
)

// gin keys read by handlers.BaseHandler and ErrorHandler.
const (
	ctxIdempotencyKey   = "idempotency_key"
	ctxIdempotencyStore = "idempotency_store"
)

// IdempotencyStore is implemented by postgres.IdempotencyStore.
type IdempotencyStore interface {
	AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*postgres.IdempotencyReplay, error)
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
	FailKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error
	ReleaseKey(ctx context.Context, key string) error
}

// Idempotency replays the stored response for a repeated X-Idempotency-Key.
// Requests without the header run normally.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1))
		if err != nil {
			_ = c.Error(apperror.NewValidation("unreadable request body"))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(body)
		operation := c.Request.Method + " " + c.FullPath()
		userID := appctx.GetUserID(c.Request.Context())

		replay, err := store.AcquireKey(c.Request.Context(), key, userID, operation, hex.EncodeToString(hash[:]))
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				_ = c.Error(appErr)
			} else {
				_ = c.Error(apperror.NewInternal(err).WithDetail("component", "idempotency"))
			}
			c.Abort()
			return
		}

		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			c.Abort()
			return
		}

		c.Set(ctxIdempotencyKey, key)
		c.Set(ctxIdempotencyStore, store)
		c.Next()
	}
}
