// Package numerator implements sequential numbering on top of the sys_sequences table.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	core "colisflow/internal/core/numerator"
)

// Querier is the single method the service needs from a pool or transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for a call, typically the transaction in ctx.
type QuerierFunc func(ctx context.Context) Querier

type cachedRange struct {
	current int64
	max     int64
}

// Service provides numbering for movements, register codes and parcel references.
type Service struct {
	querier QuerierFunc

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

var _ core.Generator = (*Service)(nil)

// New creates a service bound to one querier.
func New(q Querier) *Service {
	return NewWithQuerier(func(context.Context) Querier { return q })
}

// NewWithQuerier creates a service that resolves its querier per call, so strict
// numbers are allocated inside the caller's transaction.
func NewWithQuerier(fn QuerierFunc) *Service {
	return &Service{
		querier: fn,
		ranges:  make(map[string]*cachedRange),
	}
}

// GetNextNumber generates the next number.
// Pattern: PREFIX-YEAR-XXXXX (e.g., DEC-2025-00001)
func (s *Service) GetNextNumber(ctx context.Context, cfg core.Config, opts *core.Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if cfg.Prefix == "" {
		return "", fmt.Errorf("numerator: empty prefix")
	}

	key := buildKey(cfg, period)

	var (
		num int64
		err error
	)
	if opts != nil && opts.Strategy == core.StrategyCached {
		num, err = s.nextCached(ctx, key, opts.RangeSize)
	} else {
		num, err = s.nextStrict(ctx, key)
	}
	if err != nil {
		return "", err
	}

	return formatNumber(cfg, period, num), nil
}

func (s *Service) nextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("strict next %s: %w", key, err)
	}
	return num, nil
}

// nextCached hands out numbers from an in-memory block and reserves a new one
// when it runs out. current_val always holds the last reserved number.
func (s *Service) nextCached(ctx context.Context, key string, size int64) (int64, error) {
	if size <= 0 {
		size = 50
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		var newMax int64
		err := s.querier(ctx).QueryRow(ctx, `
			INSERT INTO sys_sequences (key, current_val)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
			RETURNING current_val
		`, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range %s: %w", key, err)
		}
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

func buildKey(cfg core.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

func formatNumber(cfg core.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}
