package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already claimed. It backs the
// Idempotency-Key guard on mutating requests and notification delivery
// deduplication.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It returns false when the key is
	// already claimed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is currently claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release drops a claim so the work may be attempted again
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
