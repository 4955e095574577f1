package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value    any
	storedAt time.Time
}

// Store is a process-local key/value cache. Entries older than ttl are
// reported as missing by Get but are retained, so callers can fall back to
// the last good value through GetStale. A ttl <= 0 never expires entries.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	flight  singleflight.Group
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.expired(e) {
		return nil, false
	}
	return e.value, true
}

// GetStale returns the last stored value for key regardless of age.
func (s *Store) GetStale(_ context.Context, key string) (any, time.Time, bool) {
	if key == "" {
		return nil, time.Time{}, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, time.Time{}, false
	}
	return e.value, e.storedAt, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry{value: value, storedAt: s.now()}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// GetOrLoad returns the fresh value for key, or runs loader once for all
// concurrent callers of the same key and stores a successful result.
// A failed load leaves any previous entry untouched.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}
		return s.load(ctx, key, loader)
	})
	return value, err
}

// Reload runs loader even when a fresh entry exists. Concurrent reloads and
// loads of the same key share one call.
func (s *Store) Reload(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		return s.load(ctx, key, loader)
	})
	return value, err
}

func (s *Store) load(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	loaded, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	s.Set(ctx, key, loaded)
	return loaded, nil
}

func (s *Store) expired(e entry) bool {
	if s.ttl <= 0 {
		return false
	}
	return !e.storedAt.Add(s.ttl).After(s.now())
}
