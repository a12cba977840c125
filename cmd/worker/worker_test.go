package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
	"colisflow/internal/domain/cash"
	"colisflow/pkg/logger"
	"colisflow/pkg/metrics"
)

type fakeBalances struct {
	items []cash.Balance
	err   error
	calls atomic.Int32
}

func (f *fakeBalances) Balances(context.Context) ([]cash.Balance, error) {
	f.calls.Add(1)
	return f.items, f.err
}

type fakeKeys struct{ calls atomic.Int32 }

func (f *fakeKeys) CleanupExpired(context.Context) (int64, error) {
	f.calls.Add(1)
	return 3, nil
}

func TestWorker_ScanBalances(t *testing.T) {
	src := &fakeBalances{items: []cash.Balance{
		{RegisterID: id.New(), RegisterCode: "CAI-A", Current: types.MustMoney("50.00"), MinBalanceAlert: types.MustMoney("100.00"), BelowAlert: true},
		{RegisterID: id.New(), RegisterCode: "CAI-B", Current: types.MustMoney("900.25"), MinBalanceAlert: types.MustMoney("100.00")},
	}}
	w := NewWorker(src, &fakeKeys{}, logger.Nop(), Intervals{})

	below := w.scanBalances(context.Background())
	require.Len(t, below, 1)
	assert.Equal(t, "CAI-A", below[0].RegisterCode)

	assert.InDelta(t, 900.25, testutil.ToFloat64(metrics.RegisterBalance.WithLabelValues("CAI-B")), 0.001)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RegistersBelowAlert))
}

func TestWorker_ScanFailureKeepsRunning(t *testing.T) {
	w := NewWorker(&fakeBalances{err: errors.New("db down")}, &fakeKeys{}, logger.Nop(), Intervals{})
	assert.Nil(t, w.scanBalances(context.Background()))
}

func TestWorker_RunTicksUntilCancelled(t *testing.T) {
	src := &fakeBalances{}
	keys := &fakeKeys{}
	w := NewWorker(src, keys, logger.Nop(), Intervals{Alert: 5 * time.Millisecond, Cleanup: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return src.calls.Load() >= 2 && keys.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
