// Package id provides UUIDv7 identifiers for registers, movements, parcels and users.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7, so movement ids sort by insertion.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse id %q: %w", s, err)
	}
	return v, nil
}

// ParseOptional returns nil for an empty string.
func ParseOptional(s string) (*ID, error) {
	if s == "" {
		return nil, nil
	}
	v, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

// Looks reports whether s is a well-formed UUID.
func Looks(s string) bool {
	return uuid.Validate(s) == nil
}
