package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/stocktransfer/internal/domain/shared"
)

const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps claims in process memory. Claims are lost on
// restart and are not shared between instances.
type InMemoryIdempotencyStore struct {
	mu      sync.RWMutex
	claims  map[string]time.Time
	now     func() time.Time
	done    chan struct{}
	swept   sync.WaitGroup
	stopped sync.Once
}

// NewInMemoryIdempotencyStore creates a store and starts sweeping expired
// claims until Close.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		claims: make(map[string]time.Time),
		now:    time.Now,
		done:   make(chan struct{}),
	}
	s.swept.Add(1)
	go s.sweepLoop()
	return s
}

func (s *InMemoryIdempotencyStore) live(key string) bool {
	until, ok := s.claims[key]
	return ok && s.now().Before(until)
}

func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live(key) {
		return false, nil
	}
	s.claims[key] = s.now().Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live(key), nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.claims, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. Calling it again is a no-op.
func (s *InMemoryIdempotencyStore) Close() error {
	s.stopped.Do(func() {
		close(s.done)
		s.swept.Wait()
	})
	return nil
}

// Len returns the number of claims held, expired ones included
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.claims)
}

func (s *InMemoryIdempotencyStore) sweepLoop() {
	defer s.swept.Done()
	tick := time.NewTicker(sweepInterval)
	defer tick.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-tick.C:
			s.sweep()
		}
	}
}

func (s *InMemoryIdempotencyStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, until := range s.claims {
		if !now.Before(until) {
			delete(s.claims, key)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
