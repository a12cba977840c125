package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInsufficientBalance(t *testing.T) {
	err := NewInsufficientBalance("reg-1", decimal.RequireFromString("1000.01"), decimal.RequireFromString("1000"))

	assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
	assert.Equal(t, "1000.01", err.Details["requested"])
	assert.Equal(t, "1000", err.Details["available"])
	assert.Equal(t, "reg-1", err.Details["register_id"])
}

func TestHasCode_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("disburse: %w", NewInsufficientBalance("r", decimal.Zero, decimal.Zero))

	assert.True(t, IsInsufficientBalance(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(wrapped))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "Internal server error", err.Message)
}

func TestIdempotencyCodes(t *testing.T) {
	assert.Equal(t, CodeIdempotency, NewIdempotencyConflict("k").Code)
	assert.Equal(t, CodeIdempotencyMismatch, NewIdempotencyMismatch("k").Code)
	assert.Equal(t, http.StatusConflict, NewIdempotencyMismatch("k").HTTPStatus)
}
