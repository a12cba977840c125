// Package apperror carries the structured errors rendered by the HTTP layer.
// Domain code returns *AppError for every failure a client can act on;
// anything else is reported as an internal error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes.
const (
	// 5xx
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// 400
	CodeValidation = "VALIDATION_ERROR"

	// 401, 403
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// 404
	CodeNotFound = "NOT_FOUND"

	// 409
	CodeConflict            = "CONFLICT"
	CodeDuplicate           = "DUPLICATE_ENTRY"
	CodeRegisterBusy        = "REGISTER_BUSY"
	CodeIdempotency         = "IDEMPOTENCY_CONFLICT"
	CodeIdempotencyMismatch = "IDEMPOTENCY_MISMATCH"

	// 422
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
)

// AppError is the error body returned to API clients.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	HTTPStatus int   `json:"-"`
	Err        error `json:"-"` // never serialized
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// NewValidation reports malformed input (400).
func NewValidation(message string) *AppError {
	return newError(CodeValidation, http.StatusBadRequest, message)
}

// NewNotFound reports a missing entity (404).
func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", entity)).
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewInsufficientBalance is returned when a disbursement exceeds the register
// balance. Amounts are decimal strings so the response keeps full precision.
func NewInsufficientBalance(registerID string, requested, available fmt.Stringer) *AppError {
	return newError(CodeInsufficientBalance, http.StatusUnprocessableEntity, "Insufficient register balance").
		WithDetail("register_id", registerID).
		WithDetail("requested", requested.String()).
		WithDetail("available", available.String())
}

// NewRegisterBusy is returned when the register lock could not be obtained in time.
func NewRegisterBusy(registerID string) *AppError {
	return newError(CodeRegisterBusy, http.StatusConflict, "Register is busy, retry the operation").
		WithDetail("register_id", registerID)
}

// NewDatabase wraps a storage failure (500, cause hidden from the client).
func NewDatabase(err error) *AppError {
	return newError(CodeDatabase, http.StatusInternalServerError, "Database error").WithCause(err)
}

// NewInternal wraps an unexpected failure (500, cause hidden from the client).
func NewInternal(err error) *AppError {
	return newError(CodeInternal, http.StatusInternalServerError, "Internal server error").WithCause(err)
}

func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, message)
}

// NewIdempotencyConflict is returned while the first request with key is still running.
func NewIdempotencyConflict(key string) *AppError {
	return newError(CodeIdempotency, http.StatusConflict, "Operation already in progress").
		WithDetail("idempotency_key", key)
}

// NewIdempotencyMismatch is returned when key was first used by a different
// user, route or request body.
func NewIdempotencyMismatch(key string) *AppError {
	return newError(CodeIdempotencyMismatch, http.StatusConflict, "Idempotency key reused for a different request").
		WithDetail("idempotency_key", key)
}

func NewConflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message)
}

// NewDuplicate reports a unique constraint hit on entity.field (409).
func NewDuplicate(entity, field, value string) *AppError {
	return newError(CodeDuplicate, http.StatusConflict, fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// AsAppError extracts AppError from the error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns the status for any error, 500 for non-AppErrors.
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// HasCode reports whether the chain holds an AppError with code.
func HasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

func IsInsufficientBalance(err error) bool {
	return HasCode(err, CodeInsufficientBalance)
}
