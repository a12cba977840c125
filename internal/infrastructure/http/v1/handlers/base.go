package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/pkg/logger"
)

// idempotencyCompleter is the part of the idempotency store a handler needs.
type idempotencyCompleter interface {
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
}

// BaseHandler provides common handler utilities.
type BaseHandler struct{}

// NewBaseHandler creates a new base handler.
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// ParamID parses a UUID path parameter.
func (h *BaseHandler) ParamID(c *gin.Context, name string) (id.ID, bool) {
	v, err := id.Parse(c.Param(name))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").
			WithDetail("field", name).
			WithDetail("value", c.Param(name)))
		return id.ID{}, false
	}
	return v, true
}

// Error registers error on Gin context and aborts request.
// The JSON response is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// CompleteIdempotency stores the response (status, content type and body) for
// replay when the request carried an idempotency key.
func (h *BaseHandler) CompleteIdempotency(c *gin.Context, statusCode int, contentType string, response any) {
	key := c.GetString("idempotency_key")
	if key == "" {
		return
	}
	v, ok := c.Get("idempotency_store")
	if !ok {
		return
	}
	store, ok := v.(idempotencyCompleter)
	if !ok {
		return
	}
	if err := store.CompleteKey(c.Request.Context(), key, statusCode, contentType, response); err != nil {
		logger.Warn(c.Request.Context(), "complete idempotency key", "key", key, "error", err)
	}
}

// Created sends a 201 response with data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", data)
	c.JSON(http.StatusCreated, data)
}

// OK sends a 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	h.CompleteIdempotency(c, http.StatusOK, "application/json", data)
	c.JSON(http.StatusOK, data)
}
