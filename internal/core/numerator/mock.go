package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGenerator is an in-memory Generator for unit tests.
// Without GetNextNumberFunc it counts per prefix and year.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	mu       sync.Mutex
	counters map[string]int64
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg, opts, period)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	key := fmt.Sprintf("%s-%d", cfg.Prefix, period.Year())
	m.counters[key]++
	return fmt.Sprintf("%s-%05d", key, m.counters[key]), nil
}

var _ Generator = (*MockGenerator)(nil)
