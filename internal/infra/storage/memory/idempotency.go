package memory

import (
	"context"
	"sync"
	"time"

	"swapmeet/internal/app/middleware"
)

// IdempotencyStore stores results in memory.
type IdempotencyStore struct {
	mu    sync.RWMutex
	items map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{items: make(map[string]middleware.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

// PurgeExpired removes records older than ttl and returns how many went.
func (s *IdempotencyStore) PurgeExpired(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	if ttl <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, rec := range s.items {
		if now.Sub(rec.OccurredAt) > ttl {
			delete(s.items, key)
			removed++
		}
	}
	return removed, nil
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
