package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu        sync.Mutex
	retries   []int
	conflicts int
}

func (o *recordingObserver) RecordRetry(_ context.Context, attempt int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries = append(o.retries, attempt)
}

func (o *recordingObserver) RecordConflict(_ context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conflicts++
}

func newTestRetryingScope(maxRetries int) (*RetryingScope, *recordingObserver) {
	scope := NewRetryingScope(NewNoOpTransactionScope(nil), RetryPolicy{
		MaxRetries: maxRetries,
		Timeout:    time.Second,
		BaseDelay:  time.Millisecond,
	}, nil)
	observer := &recordingObserver{}
	scope.SetObserver(observer)
	return scope, observer
}

func TestRetryingScope_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("success runs once", func(t *testing.T) {
		scope, observer := newTestRetryingScope(3)
		calls := 0

		err := scope.Execute(ctx, func(TransactionalRepositories) error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, observer.retries)
	})

	t.Run("optimistic lock failure is retried", func(t *testing.T) {
		scope, observer := newTestRetryingScope(3)
		calls := 0

		err := scope.Execute(ctx, func(TransactionalRepositories) error {
			calls++
			if calls < 3 {
				return shared.ErrOptimisticLock
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, observer.retries)
		assert.Zero(t, observer.conflicts)
	})

	t.Run("exhausted retries become a concurrency conflict", func(t *testing.T) {
		scope, observer := newTestRetryingScope(2)
		calls := 0

		err := scope.Execute(ctx, func(TransactionalRepositories) error {
			calls++
			return shared.ErrOptimisticLock
		})

		require.Error(t, err)
		assert.True(t, shared.HasCode(err, shared.CodeConcurrencyConflict))
		assert.Equal(t, 3, calls)
		assert.Equal(t, 1, observer.conflicts)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		scope, _ := newTestRetryingScope(3)
		calls := 0

		err := scope.Execute(ctx, func(TransactionalRepositories) error {
			calls++
			return shared.ErrInsufficientStock
		})

		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 1, calls)
	})

	t.Run("each attempt is bounded by the timeout", func(t *testing.T) {
		scope := NewRetryingScope(NewNoOpTransactionScope(nil), RetryPolicy{Timeout: 10 * time.Millisecond}, nil)

		err := scope.Execute(ctx, func(TransactionalRepositories) error {
			<-time.After(50 * time.Millisecond)
			return errors.New("slow query")
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeded")
	})

	t.Run("cancelled context stops the backoff", func(t *testing.T) {
		scope := NewRetryingScope(NewNoOpTransactionScope(nil), RetryPolicy{
			MaxRetries: 3,
			BaseDelay:  time.Second,
		}, nil)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := scope.Execute(cancelled, func(TransactionalRepositories) error {
			return shared.ErrOptimisticLock
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRetryPolicy_Defaults(t *testing.T) {
	p := RetryPolicy{MaxRetries: -1}.withDefaults()

	assert.Equal(t, 0, p.MaxRetries)
	assert.Equal(t, DefaultUnitOfWorkTimeout, p.Timeout)
	assert.Equal(t, defaultRetryBaseDelay, p.BaseDelay)
}
