package worker

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/hyperengineering/nextbest/internal/metrics"
)

// PersistStore defines the store operations needed by the persist worker.
type PersistStore interface {
	PutValues(ctx context.Context, values map[string]string) error
}

// PersistWorker writes key-value sets to durable storage in the background.
// Only the most recent pending set is kept: a set enqueued before the
// previous one was written replaces it. Failed writes are logged and dropped.
type PersistWorker struct {
	store   PersistStore
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]string
	signal  chan struct{}
}

// NewPersistWorker creates a worker that bounds each write by timeout.
func NewPersistWorker(store PersistStore, timeout time.Duration) *PersistWorker {
	return &PersistWorker{
		store:   store,
		timeout: timeout,
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue schedules values for writing and returns immediately.
func (w *PersistWorker) Enqueue(values map[string]string) {
	w.mu.Lock()
	if w.pending != nil {
		metrics.PersistWrites.WithLabelValues("superseded").Inc()
	}
	w.pending = maps.Clone(values)
	w.mu.Unlock()

	select {
	case w.signal <- struct{}{}:
	default:
	}
}

// Pending reports whether a write is waiting.
func (w *PersistWorker) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil
}

// Run starts the worker loop. Blocks until ctx is cancelled, then makes one
// last attempt to write whatever is still pending.
func (w *PersistWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "ledger-persist",
		"timeout", w.timeout.String(),
	)

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
			w.Flush(flushCtx)
			cancel()
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "ledger-persist",
				"reason", "context_cancelled",
			)
			return
		case <-w.signal:
			// Writes are bounded by the timeout alone so that a write in
			// flight at shutdown still lands.
			writeCtx, cancel := context.WithTimeout(context.Background(), w.timeout)
			w.Flush(writeCtx)
			cancel()
		}
	}
}

// Flush writes the pending set, if any, synchronously. The error is returned
// for callers that want it; the worker loop only logs it.
func (w *PersistWorker) Flush(ctx context.Context) error {
	w.mu.Lock()
	values := w.pending
	w.pending = nil
	w.mu.Unlock()

	if values == nil {
		return nil
	}

	start := time.Now()
	if err := w.store.PutValues(ctx, values); err != nil {
		metrics.PersistWrites.WithLabelValues("error").Inc()
		slog.Warn("ledger persist failed",
			"component", "worker",
			"action", "persist_failed",
			"keys", len(values),
			"error", err,
		)
		return err
	}

	metrics.PersistWrites.WithLabelValues("ok").Inc()
	slog.Debug("ledger persisted",
		"component", "worker",
		"action", "persist_complete",
		"keys", len(values),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
