package main

import (
	"context"
	"time"

	"colisflow/internal/domain/cash"
	"colisflow/pkg/logger"
	"colisflow/pkg/metrics"
)

// BalanceSource computes the balance of every register.
type BalanceSource interface {
	Balances(ctx context.Context) ([]cash.Balance, error)
}

// KeyCleaner removes expired idempotency records.
type KeyCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Intervals sets how often each job runs.
type Intervals struct {
	Alert   time.Duration
	Cleanup time.Duration
}

// Worker runs the periodic jobs until its context is cancelled.
type Worker struct {
	balances  BalanceSource
	keys      KeyCleaner
	log       *logger.Logger
	intervals Intervals
}

// NewWorker creates a worker. Non-positive intervals fall back to 5m and 1h.
func NewWorker(balances BalanceSource, keys KeyCleaner, log *logger.Logger, iv Intervals) *Worker {
	if iv.Alert <= 0 {
		iv.Alert = 5 * time.Minute
	}
	if iv.Cleanup <= 0 {
		iv.Cleanup = time.Hour
	}
	return &Worker{
		balances:  balances,
		keys:      keys,
		log:       log.WithComponent("worker"),
		intervals: iv,
	}
}

// Run scans once immediately, then on every tick.
func (w *Worker) Run(ctx context.Context) {
	alertTicker := time.NewTicker(w.intervals.Alert)
	defer alertTicker.Stop()
	cleanupTicker := time.NewTicker(w.intervals.Cleanup)
	defer cleanupTicker.Stop()

	w.scanBalances(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-alertTicker.C:
			w.scanBalances(ctx)
		case <-cleanupTicker.C:
			w.cleanupIdempotency(ctx)
		}
	}
}

// scanBalances exports every balance as a gauge and warns about registers
// below their minimum. It returns the registers below alert.
func (w *Worker) scanBalances(ctx context.Context) []cash.Balance {
	balances, err := w.balances.Balances(ctx)
	if err != nil {
		w.log.Errorw("balance scan failed", "error", err)
		return nil
	}

	var below []cash.Balance
	for _, b := range balances {
		current, _ := b.Current.Float64()
		metrics.RegisterBalance.WithLabelValues(b.RegisterCode).Set(current)

		if b.BelowAlert {
			below = append(below, b)
			w.log.Warnw("register balance below minimum",
				"register_id", b.RegisterID,
				"register", b.RegisterCode,
				"balance", b.Current.StringFixed(2),
				"minimum", b.MinBalanceAlert.StringFixed(2),
			)
		}
	}
	metrics.RegistersBelowAlert.Set(float64(len(below)))

	w.log.Debugw("balance scan done", "registers", len(balances), "below_alert", len(below))
	return below
}

func (w *Worker) cleanupIdempotency(ctx context.Context) {
	n, err := w.keys.CleanupExpired(ctx)
	if err != nil {
		w.log.Warnw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
}
