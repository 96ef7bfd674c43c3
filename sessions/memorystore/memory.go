// Package memorystore provides an in-process sessions.Store backed by
// github.com/hashicorp/golang-lru/v2. Sessions expire after their TTL and
// the least recently used sessions are evicted once the store is full.
// State is lost on restart and not shared between processes; use
// redisstore for that.
package memorystore

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mulesoft-labs/wikiauth/sessions"
	"github.com/thejerf/abtime"
)

type item struct {
	state     *sessions.State
	expiresAt time.Time // zero means no expiry
}

func (i *item) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for expiry.
func WithClock(clock abtime.AbstractTime) Option {
	return func(s *Store) { s.clock = clock }
}

// Store implements sessions.Store in memory.
type Store struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *item]
	clock abtime.AbstractTime
}

var _ sessions.Store = (*Store)(nil)

// New creates a store holding at most maxItems sessions.
func New(maxItems int, opts ...Option) (*Store, error) {
	cache, err := lru.New[string, *item](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	s := &Store{cache: cache, clock: abtime.NewRealTime()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Load(_ context.Context, id string) (*sessions.State, error) {
	if id == "" {
		return nil, sessions.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.cache.Get(id)
	if !ok {
		return nil, nil
	}
	if it.expired(s.clock.Now()) {
		s.cache.Remove(id)
		return nil, nil
	}
	return it.state.Clone(), nil
}

func (s *Store) Save(_ context.Context, id string, st *sessions.State, ttl time.Duration) error {
	if id == "" {
		return sessions.ErrInvalidID
	}
	it := &item{state: st.Clone()}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl > 0 {
		it.expiresAt = s.clock.Now().Add(ttl)
	}
	s.cache.Add(id, it)
	return nil
}

func (s *Store) Touch(_ context.Context, id string, ttl time.Duration) error {
	if id == "" {
		return sessions.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.cache.Get(id)
	if !ok {
		return nil
	}
	now := s.clock.Now()
	if it.expired(now) {
		s.cache.Remove(id)
		return nil
	}
	if ttl > 0 {
		it.expiresAt = now.Add(ttl)
	} else {
		it.expiresAt = time.Time{}
	}
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	if id == "" {
		return sessions.ErrInvalidID
	}
	s.mu.Lock()
	s.cache.Remove(id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, including expired ones not
// yet pruned.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// Prune removes expired sessions and returns how many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	n := 0
	for _, key := range s.cache.Keys() {
		if it, ok := s.cache.Peek(key); ok && it.expired(now) {
			s.cache.Remove(key)
			n++
		}
	}
	return n
}

// Run prunes expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.cache.Purge()
	s.mu.Unlock()
	return nil
}
