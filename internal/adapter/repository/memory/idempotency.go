package memory

import (
	"context"
	"sync"
	"time"
)

type idempotencyKey struct {
	response  []byte
	done      bool
	expiresAt time.Time
}

// IdempotencyStore implements usecase.IdempotencyStore in memory.
type IdempotencyStore struct {
	mu    sync.Mutex
	keys  map[string]idempotencyKey
	clock func() time.Time
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		keys:  make(map[string]idempotencyKey),
		clock: time.Now,
	}
}

// Reserve claims key for a new request.
func (s *IdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	if k, ok := s.keys[key]; ok && now.Before(k.expiresAt) {
		if !k.done {
			return false, nil, nil
		}
		return false, k.response, nil
	}

	s.keys[key] = idempotencyKey{expiresAt: now.Add(ttl)}
	return true, nil, nil
}

// Complete stores the final response for key.
func (s *IdempotencyStore) Complete(_ context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[key] = idempotencyKey{
		response:  append([]byte(nil), response...),
		done:      true,
		expiresAt: s.clock().Add(ttl),
	}
	return nil
}

// Release drops a reservation so the key can be retried.
func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, key)
	return nil
}
