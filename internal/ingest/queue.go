package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// OrderReconciler is the part of the ingest service the queue needs.
type OrderReconciler interface {
	ReconcileOrder(ctx context.Context, cand *OrderCandidate) (*OrderResult, error)
}

// ReconcileQueue fans candidate orders out to a fixed pool of workers, each
// running one reconciliation transaction at a time. Enqueue blocks when the
// buffer is full; producers get backpressure instead of dropped candidates.
type ReconcileQueue struct {
	svc     OrderReconciler
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan *OrderCandidate
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type QueueOption func(*ReconcileQueue)

func WithWorkers(n int) QueueOption {
	return func(q *ReconcileQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) QueueOption {
	return func(q *ReconcileQueue) {
		if n > 0 {
			q.ch = make(chan *OrderCandidate, n)
		}
	}
}

func WithReconcileTimeout(d time.Duration) QueueOption {
	return func(q *ReconcileQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewReconcileQueue(svc OrderReconciler, logger *slog.Logger, opts ...QueueOption) *ReconcileQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ReconcileQueue{
		svc:     svc,
		logger:  logger,
		workers: 4,
		timeout: 30 * time.Second,
		ch:      make(chan *OrderCandidate, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ReconcileQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("reconcile worker started", "worker_id", workerID)

				for cand := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					result, err := q.svc.ReconcileOrder(ctx, cand)
					cancel()

					if err != nil {
						q.logger.Error("reconciliation failed",
							"worker_id", workerID, "user_id", cand.Order.UserID, "error", err)
					} else {
						q.logger.Info("candidate reconciled",
							"worker_id", workerID, "order_id", result.Order.ID, "is_new", result.IsNew)
					}
				}

				q.logger.Info("reconcile worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue hands a candidate to the pool. Returns false when the queue is
// already shutting down.
func (q *ReconcileQueue) Enqueue(_ context.Context, cand *OrderCandidate) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "user_id", cand.Order.UserID)
		return false
	}
	select {
	case q.ch <- cand:
	default:
		q.logger.Warn("queue full, applying backpressure", "user_id", cand.Order.UserID)
		q.ch <- cand
	}
	return true
}

// Shutdown stops intake and waits for in-flight candidates to drain, bounded
// by ctx.
func (q *ReconcileQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
