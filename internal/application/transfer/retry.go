package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	DefaultMaxRetries        = 3
	DefaultUnitOfWorkTimeout = 10 * time.Second
	defaultRetryBaseDelay    = 20 * time.Millisecond
)

// RetryPolicy bounds a unit of work
type RetryPolicy struct {
	// MaxRetries is how many times a unit that lost an optimistic lock race is re-run
	MaxRetries int
	// Timeout bounds each attempt
	Timeout time.Duration
	// BaseDelay is the backoff before the first retry, doubled per attempt and jittered
	BaseDelay time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultUnitOfWorkTimeout
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultRetryBaseDelay
	}
	return p
}

// RetryObserver is told about retries and exhausted units
type RetryObserver interface {
	RecordRetry(ctx context.Context, attempt int)
	RecordConflict(ctx context.Context)
}

// RetryingScope re-runs a unit of work that lost a concurrent update race.
// Every attempt is a fresh transaction, so fn must reload what it reads.
type RetryingScope struct {
	inner    TransactionScope
	policy   RetryPolicy
	observer RetryObserver
	logger   *zap.Logger
}

// NewRetryingScope wraps inner with retries and a per-attempt timeout
func NewRetryingScope(inner TransactionScope, policy RetryPolicy, logger *zap.Logger) *RetryingScope {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingScope{inner: inner, policy: policy.withDefaults(), logger: logger}
}

// SetObserver sets the retry observer
func (s *RetryingScope) SetObserver(o RetryObserver) {
	s.observer = o
}

// Execute runs fn, retrying on optimistic lock failures. When retries are
// exhausted it returns CONCURRENCY_CONFLICT.
func (s *RetryingScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	attempts := 0
	var lastErr error
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		lastErr = s.attempt(ctx, fn)
		if lastErr != nil && !shared.IsRetryable(lastErr) {
			return struct{}{}, backoff.Permanent(lastErr)
		}
		return struct{}{}, lastErr
	},
		backoff.WithBackOff(s.schedule()),
		backoff.WithMaxTries(uint(s.policy.MaxRetries+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if s.observer != nil {
				s.observer.RecordRetry(ctx, attempts)
			}
			s.logger.Debug("unit of work lost a concurrent update, retrying",
				zap.Int("attempt", attempts),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)

	switch {
	case err == nil:
		return nil
	case lastErr != nil && !shared.IsRetryable(lastErr):
		return lastErr
	case !shared.IsRetryable(err):
		// cancelled while waiting for the next attempt
		return err
	}

	if s.observer != nil {
		s.observer.RecordConflict(ctx)
	}
	s.logger.Warn("unit of work gave up after concurrent updates",
		zap.Int("attempts", attempts),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %v", shared.ErrConcurrencyConflict, err)
}

func (s *RetryingScope) attempt(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.policy.Timeout)
	defer cancel()

	err := s.inner.Execute(ctx, fn)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("unit of work exceeded %s: %w", s.policy.Timeout, err)
	}
	return err
}

// schedule doubles BaseDelay per retry with half of it as jitter. A fresh
// schedule is built per unit since ExponentialBackOff keeps state.
func (s *RetryingScope) schedule() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.policy.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	b.MaxInterval = s.policy.BaseDelay << max(s.policy.MaxRetries, 1)
	return b
}

var _ TransactionScope = (*RetryingScope)(nil)
