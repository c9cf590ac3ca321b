package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/stocktransfer/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every IdempotencyStore must share
func exerciseStore(t *testing.T, store shared.IdempotencyStore, expire func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	claimed, err := store.MarkProcessed(ctx, "tenant-a:key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "first claim wins")

	claimed, err = store.MarkProcessed(ctx, "tenant-a:key-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed, "second claim loses")

	processed, err := store.IsProcessed(ctx, "tenant-a:key-1")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = store.IsProcessed(ctx, "tenant-b:key-1")
	require.NoError(t, err)
	assert.False(t, processed, "keys are independent")

	require.NoError(t, store.Release(ctx, "tenant-a:key-1"))
	claimed, err = store.MarkProcessed(ctx, "tenant-a:key-1", 50*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, claimed, "released key can be claimed again")

	expire(100 * time.Millisecond)
	claimed, err = store.MarkProcessed(ctx, "tenant-a:key-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "expired claim can be claimed again")
}

func TestInMemoryIdempotencyStore(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	exerciseStore(t, store, time.Sleep)
	assert.Equal(t, 1, store.Len())

	store.mu.Lock()
	store.claims["stale"] = time.Now().Add(-time.Second)
	store.mu.Unlock()
	assert.Equal(t, 2, store.Len())
	store.sweep()
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close is idempotent")
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisIdempotencyStore(client, "")
	exerciseStore(t, store, mr.FastForward)
	assert.True(t, mr.Exists(defaultKeyPrefix+"tenant-a:key-1"))
}

func TestIdempotencyStoreFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("uses Redis when reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		store, err := NewIdempotencyStoreFactory(client, WithKeyPrefix("test:")).CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &RedisIdempotencyStore{}, store)
	})

	t.Run("falls back to memory", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })
		mr.Close()

		store, err := NewIdempotencyStoreFactory(client).CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
		_ = store.Close()
	})

	t.Run("fails without fallback", func(t *testing.T) {
		_, err := NewIdempotencyStoreFactory(nil, WithInMemoryFallback(false)).CreateStore(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required")
	})
}
