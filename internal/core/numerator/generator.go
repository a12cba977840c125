// Package numerator provides the contract for human-readable sequential numbers
// (movement numbers, register codes, parcel references).
package numerator

import (
	"context"
	"time"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict bumps the sequence row for every number. When called inside
	// the business transaction the number rolls back with it, so there are no gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges in memory. Gaps appear after restarts.
	StrategyCached
)

// Options configures one generation call.
type Options struct {
	Strategy Strategy
	// RangeSize is the block reserved per round trip in cached mode (default 50).
	RangeSize int64
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "DEC", "COL")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns PREFIX-YYYY-NNNNN with a yearly reset.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Generator generates sequential numbers.
type Generator interface {
	// GetNextNumber returns the next number for cfg in the given period.
	// A nil opts means StrategyStrict.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
}
