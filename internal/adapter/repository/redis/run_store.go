package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/amlsynth/internal/domain"
)

// RunStore implements usecase.RunStore using Redis. Datasets are stored as
// JSON and expire after ttl.
type RunStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRunStore creates a new RunStore.
func NewRunStore(client *redis.Client, ttl time.Duration) *RunStore {
	return &RunStore{
		client: client,
		prefix: "amlsynth:run:",
		ttl:    ttl,
	}
}

// Save stores a dataset under its run id.
func (s *RunStore) Save(ctx context.Context, ds *domain.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", ds.RunID, err)
	}

	return s.client.Set(ctx, s.prefix+ds.RunID, data, s.ttl).Err()
}

// Get retrieves a dataset by run id.
func (s *RunStore) Get(ctx context.Context, runID string) (*domain.Dataset, error) {
	data, err := s.client.Get(ctx, s.prefix+runID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	var ds domain.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}

	relinkAccounts(&ds)

	return &ds, nil
}

// relinkAccounts restores the sharing between entity and dataset account
// pointers that JSON decoding splits into copies.
func relinkAccounts(ds *domain.Dataset) {
	byID := make(map[string]*domain.Account, len(ds.Accounts))
	for _, a := range ds.Accounts {
		byID[a.ID] = a
	}
	for _, e := range ds.Entities {
		for i, a := range e.Accounts {
			if shared, ok := byID[a.ID]; ok {
				e.Accounts[i] = shared
			}
		}
	}
}
