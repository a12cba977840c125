// Package audit records one trail entry per intercepted API request. Entries
// are written asynchronously and a failed write never affects the request.
package audit

import (
	"context"
	"time"

	"colisflow/internal/core/id"
)

// Action is derived from the HTTP method.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionRead    Action = "READ"
	ActionUpdate  Action = "UPDATE"
	ActionDelete  Action = "DELETE"
	ActionUnknown Action = "UNKNOWN"
)

// Outcome of the audited request.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// UnknownEntity is recorded when the path has no /api/ segment.
const UnknownEntity = "unknown"

// Entry is one append-only audit row.
type Entry struct {
	ID         id.ID          `db:"id" json:"id"`
	UserID     string         `db:"user_id" json:"userId"`
	Action     Action         `db:"action" json:"action"`
	Entity     string         `db:"entity" json:"entity"`
	EntityID   string         `db:"entity_id" json:"entityId,omitempty"`
	Method     string         `db:"method" json:"method"`
	Path       string         `db:"path" json:"path"`
	StatusCode int            `db:"status_code" json:"statusCode"`
	Details    map[string]any `db:"-" json:"details,omitempty"`
	IP         string         `db:"ip" json:"ip"`
	UserAgent  string         `db:"user_agent" json:"userAgent"`
	DurationMs int64          `db:"duration_ms" json:"durationMs"`
	Outcome    Outcome        `db:"outcome" json:"outcome"`
	RequestID  string         `db:"request_id" json:"requestId,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}

// Filter selects entries for the audit listing.
type Filter struct {
	UserID   string
	Entity   string
	EntityID string
	Action   Action
	Outcome  Outcome
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// Store persists entries.
type Store interface {
	Save(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) ([]Entry, error)
}
