package ingest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackable-ai/trackable/internal/entity"
)

type fakeReconciler struct {
	mu    sync.Mutex
	seen  []*OrderCandidate
	block chan struct{}
}

func (f *fakeReconciler) ReconcileOrder(ctx context.Context, cand *OrderCandidate) (*OrderResult, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	f.seen = append(f.seen, cand)
	f.mu.Unlock()
	return &OrderResult{
		Merchant: &cand.Merchant,
		Order:    &entity.Order{ID: uuid.New(), UserID: cand.Order.UserID},
		IsNew:    true,
	}, nil
}

func (f *fakeReconciler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

func TestReconcileQueueProcessesAllCandidates(t *testing.T) {
	fake := &fakeReconciler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	q := NewReconcileQueue(fake, logger, WithWorkers(2), WithQueueSize(16))

	for i := 0; i < 10; i++ {
		ok := q.Enqueue(context.Background(), validCandidate())
		require.True(t, ok)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, 10, fake.count())
}

func TestReconcileQueueRejectsAfterShutdown(t *testing.T) {
	fake := &fakeReconciler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	q := NewReconcileQueue(fake, logger, WithWorkers(1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)

	ok := q.Enqueue(context.Background(), validCandidate())
	assert.False(t, ok)

	// Shutdown twice is safe.
	q.Shutdown(ctx)
}
