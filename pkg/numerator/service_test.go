package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "colisflow/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = m.val
	}
	return nil
}

// mockQuerier keeps one counter per sequence key, like sys_sequences.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	calls  int
	err    error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	increment := int64(1)
	if len(args) == 2 {
		increment = args[1].(int64)
	}
	m.values[key] += increment
	return &mockRow{val: m.values[key]}
}

var period = time.Date(2025, time.March, 14, 10, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("DEC")

	num, err := svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "DEC-2025-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, period)
	require.NoError(t, err)
	assert.Equal(t, "DEC-2025-00002", num)

	// Each prefix has its own sequence.
	num, err = svc.GetNextNumber(ctx, core.DefaultConfig("ENC"), nil, period)
	require.NoError(t, err)
	assert.Equal(t, "ENC-2025-00001", num)
}

func TestGetNextNumber_YearlyReset(t *testing.T) {
	svc := New(newMockQuerier())
	cfg := core.DefaultConfig("APR")

	_, err := svc.GetNextNumber(context.Background(), cfg, nil, period)
	require.NoError(t, err)

	num, err := svc.GetNextNumber(context.Background(), cfg, nil, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "APR-2026-00001", num)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := newMockQuerier()
	svc := New(q)
	ctx := context.Background()
	cfg := core.Config{Prefix: "COL", PadWidth: 6}
	opts := &core.Options{Strategy: core.StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "COL-000001", num)
	assert.Equal(t, int64(10), q.values["COL"])

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, q.calls, "range must be served from memory")

	num, err = svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "COL-000011", num)
	assert.Equal(t, int64(20), q.values["COL"])
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_ResolvesQuerierPerCall(t *testing.T) {
	outer, inner := newMockQuerier(), newMockQuerier()
	type txKey struct{}
	svc := NewWithQuerier(func(ctx context.Context) Querier {
		if ctx.Value(txKey{}) != nil {
			return inner
		}
		return outer
	})

	ctx := context.WithValue(context.Background(), txKey{}, true)
	_, err := svc.GetNextNumber(ctx, core.DefaultConfig("DEC"), nil, period)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 0, outer.calls)
}

func TestGetNextNumber_Errors(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection reset")
	svc := New(q)

	_, err := svc.GetNextNumber(context.Background(), core.DefaultConfig("DEC"), nil, period)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	_, err = svc.GetNextNumber(context.Background(), core.Config{}, nil, period)
	assert.Error(t, err)
}
