// Package ratelimit provides the keyed counter used to throttle the
// registration and password-reset endpoints.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Store counts requests per key within a fixed window. Allow performs the
// check and the increment as one atomic step: of two concurrent calls
// hitting the last free slot, only one passes.
type Store interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
}

type entry struct {
	count int
	reset time.Time
}

// MemoryStore is a process-local Store. Correct for a single worker only;
// deployments with multiple workers must use the Redis store.
type MemoryStore struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

func NewMemoryStore(max int, window time.Duration) *MemoryStore {
	return &MemoryStore{
		max:     max,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.entries[key]
	if !found || now.After(e.reset) {
		e = &entry{reset: now.Add(s.window)}
		s.entries[key] = e
	}
	if e.count >= s.max {
		return false, e.reset.Sub(now), nil
	}
	e.count++
	return true, 0, nil
}
