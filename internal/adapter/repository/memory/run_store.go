// Package memory keeps runs and idempotency keys in process memory. It backs
// the HTTP server when no Redis URL is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/amlsynth/internal/domain"
)

type storedRun struct {
	ds        *domain.Dataset
	expiresAt time.Time
}

// RunStore implements usecase.RunStore with a map guarded by a mutex.
type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]storedRun
	ttl   time.Duration
	clock func() time.Time
}

// NewRunStore creates a RunStore whose runs expire after ttl. A zero ttl
// keeps runs until the process exits.
func NewRunStore(ttl time.Duration) *RunStore {
	return NewRunStoreWithClock(ttl, time.Now)
}

// NewRunStoreWithClock creates a RunStore with an injected clock.
func NewRunStoreWithClock(ttl time.Duration, clock func() time.Time) *RunStore {
	return &RunStore{
		runs:  make(map[string]storedRun),
		ttl:   ttl,
		clock: clock,
	}
}

// Save stores ds, replacing any run with the same id.
func (s *RunStore) Save(_ context.Context, ds *domain.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired()

	r := storedRun{ds: ds}
	if s.ttl > 0 {
		r.expiresAt = s.clock().Add(s.ttl)
	}
	s.runs[ds.RunID] = r

	return nil
}

// Get returns the run with the given id.
func (s *RunStore) Get(_ context.Context, runID string) (*domain.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[runID]
	if !ok || s.expired(r.expiresAt) {
		return nil, domain.ErrRunNotFound
	}

	return r.ds, nil
}

// Len returns the number of live runs.
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.runs {
		if !s.expired(r.expiresAt) {
			n++
		}
	}
	return n
}

func (s *RunStore) expired(at time.Time) bool {
	return !at.IsZero() && !s.clock().Before(at)
}

// evictExpired must be called with mu held for writing.
func (s *RunStore) evictExpired() {
	for id, r := range s.runs {
		if s.expired(r.expiresAt) {
			delete(s.runs, id)
		}
	}
}
