package ratelimit

import (
	"context"
	"sync"
	"time"
)

// CounterStore is the backing for fixed-window counters. The in-process
// MemoryStore serves single-instance deployments; RedisStore provides a
// shared counter for multi-instance deployments. The Limiter is agnostic
// to which one it is given.
type CounterStore interface {
	// Incr bumps the counter for key, starting a fresh window if none is
	// active, and returns the new count and the window reset time.
	Incr(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
	// Clear removes the counter for key.
	Clear(ctx context.Context, key string) error
	// Sweep removes counters whose windows have elapsed and returns the
	// number removed.
	Sweep(ctx context.Context) (int, error)
}

type memoryEntry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local CounterStore. Counters are lost on
// restart; that is an accepted limitation of single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	entry, ok := s.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &memoryEntry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = entry
		return entry.count, entry.resetAt, nil
	}

	entry.count++
	return entry.count, entry.resetAt, nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.resetAt) {
			delete(s.entries, key)
			removed++
		}
	}

	return removed, nil
}
