package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultIdempotencyTTL is how long a handled event id is remembered
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStats is a snapshot of idempotent handler counters
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

// IdempotentHandler wraps an EventHandler so each event id is handled once.
// The claim is released when the wrapped handler fails so a redelivery can
// try again.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	prefix  string
	logger  *zap.Logger

	processed atomic.Int64
	duplicate atomic.Int64
	failed    atomic.Int64
}

// IdempotentHandlerOption configures an IdempotentHandler
type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyTTL sets how long event ids stay claimed
func WithIdempotencyTTL(ttl time.Duration) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

// WithKeyNamespace prefixes claimed keys so two handlers of the same event
// do not shadow each other
func WithKeyNamespace(ns string) IdempotentHandlerOption {
	return func(h *IdempotentHandler) {
		h.prefix = ns + ":"
	}
}

// NewIdempotentHandler wraps handler with event id deduplication
func NewIdempotentHandler(handler shared.EventHandler, store shared.IdempotencyStore, logger *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &IdempotentHandler{
		handler: handler,
		store:   store,
		ttl:     DefaultIdempotencyTTL,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes delegates to the wrapped handler
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle runs the wrapped handler unless the event id is already claimed
func (h *IdempotentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := h.prefix + event.EventID().String()
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
	}

	claimed, err := h.store.MarkProcessed(ctx, key, h.ttl)
	switch {
	case err != nil:
		// A store outage must not drop events; handle without the guard.
		h.logger.Warn("idempotency check failed, handling anyway", append(fields, zap.Error(err))...)
	case !claimed:
		h.duplicate.Add(1)
		h.logger.Debug("duplicate event skipped", fields...)
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		h.failed.Add(1)
		if claimed {
			if relErr := h.store.Release(context.WithoutCancel(ctx), key); relErr != nil {
				h.logger.Warn("failed to release idempotency key", append(fields, zap.Error(relErr))...)
			}
		}
		return err
	}

	h.processed.Add(1)
	return nil
}

// Stats returns the handler counters
func (h *IdempotentHandler) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: h.processed.Load(),
		EventsDuplicate: h.duplicate.Load(),
		EventsFailed:    h.failed.Load(),
	}
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
