package audit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"colisflow/internal/core/id"
	"colisflow/pkg/logger"
	"colisflow/pkg/metrics"
)

// WriterConfig sizes the asynchronous writer.
type WriterConfig struct {
	QueueSize    int
	Workers      int
	WriteTimeout time.Duration
}

// DefaultWriterConfig returns a small pool suitable for a single instance.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{QueueSize: 1024, Workers: 2, WriteTimeout: 5 * time.Second}
}

// WriterStats counts entries by fate.
type WriterStats struct {
	Submitted int64
	Dropped   int64
	Written   int64
	Failed    int64
}

// Writer persists entries on background workers. Submit never blocks the
// request path and write failures are only logged.
type Writer struct {
	store  Store
	cfg    WriterConfig
	queue  chan *Entry
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	log    *logger.Logger
	stats  struct{ submitted, dropped, written, failed atomic.Int64 }
}

// NewWriter starts cfg.Workers workers draining a queue of cfg.QueueSize.
func NewWriter(store Store, cfg WriterConfig, log *logger.Logger) *Writer {
	def := DefaultWriterConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if log == nil {
		log = logger.Default()
	}

	w := &Writer{
		store: store,
		cfg:   cfg,
		queue: make(chan *Entry, cfg.QueueSize),
		log:   log.WithComponent("audit_writer"),
	}
	for i := 0; i < cfg.Workers; i++ {
		w.wg.Add(1)
		go w.worker(i)
	}
	return w
}

// Submit enqueues an entry without blocking. It returns false when the entry
// was dropped because the queue is full or the writer is closed.
func (w *Writer) Submit(e *Entry) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.drop(e, "writer closed")
		return false
	}

	select {
	case w.queue <- e:
		w.stats.submitted.Add(1)
		metrics.AuditQueueLength.Set(float64(len(w.queue)))
		return true
	default:
		w.drop(e, "queue full")
		return false
	}
}

func (w *Writer) drop(e *Entry, reason string) {
	w.stats.dropped.Add(1)
	metrics.RecordAudit("dropped")
	w.log.Warnw("audit entry dropped",
		"reason", reason,
		"action", e.Action,
		"entity", e.Entity,
		"path", e.Path,
	)
}

func (w *Writer) worker(n int) {
	defer w.wg.Done()
	for e := range w.queue {
		w.write(n, e)
		metrics.AuditQueueLength.Set(float64(len(w.queue)))
	}
}

// write isolates one entry: a panic or error in the store ends here.
func (w *Writer) write(worker int, e *Entry) {
	defer func() {
		if r := recover(); r != nil {
			w.fail(worker, e, fmt.Errorf("panic: %v", r))
		}
	}()

	prepare(e)

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.WriteTimeout)
	defer cancel()

	if err := w.store.Save(ctx, e); err != nil {
		w.fail(worker, e, err)
		return
	}
	w.stats.written.Add(1)
	metrics.RecordAudit("written")
}

func (w *Writer) fail(worker int, e *Entry, err error) {
	w.stats.failed.Add(1)
	metrics.RecordAudit("failed")
	w.log.Errorw("audit write failed",
		"worker", worker,
		"action", e.Action,
		"entity", e.Entity,
		"request_id", e.RequestID,
		"error", err,
	)
}

// prepare fills defaults and sanitizes details on the worker, off the request path.
func prepare(e *Entry) {
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.UserID == "" {
		e.UserID = "anonymous"
	}
	if e.Entity == "" {
		e.Entity = UnknownEntity
	}
	if e.Details != nil {
		if clean, ok := Sanitize(e.Details).(map[string]any); ok {
			e.Details = clean
		}
	}
}

// Close stops accepting entries and waits until the queue is drained or ctx ends.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit writer drain: %w", ctx.Err())
	}
}

// Stats returns counters since start.
func (w *Writer) Stats() WriterStats {
	return WriterStats{
		Submitted: w.stats.submitted.Load(),
		Dropped:   w.stats.dropped.Load(),
		Written:   w.stats.written.Load(),
		Failed:    w.stats.failed.Load(),
	}
}
