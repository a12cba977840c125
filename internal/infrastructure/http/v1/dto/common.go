// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"strings"
	"time"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// --- Pagination ---

// PageQuery holds limit/offset query parameters.
type PageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount,omitempty"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- ID Response ---

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// --- Error Response ---

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- Parsing helpers ---

// ParseDate parses an optional YYYY-MM-DD value. Empty yields the zero time.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date, expected YYYY-MM-DD").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return t, nil
}

// ParseOptionalID parses an optional id query value.
func ParseOptionalID(field, value string) (*id.ID, error) {
	v, err := id.ParseOptional(strings.TrimSpace(value))
	if err != nil {
		return nil, apperror.NewValidation("invalid id").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return v, nil
}

func dayAfter(t time.Time) *time.Time {
	next := t.AddDate(0, 0, 1)
	return &next
}
