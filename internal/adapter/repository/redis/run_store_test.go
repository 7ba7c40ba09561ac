package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/amlsynth/internal/domain"
)

func storedDataset() *domain.Dataset {
	acct := &domain.Account{ID: "A", OwnerID: "e1", Launderer: true}
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Dataset{
		RunID:    "run-1",
		Seed:     9,
		Accounts: []*domain.Account{acct},
		Entities: []*domain.Entity{{ID: "e1", Accounts: []*domain.Account{acct}, Launderer: true}},
		Entries: []domain.LedgerEntry{{
			EntryID: "T1-D", Timestamp: at, AccountID: "A", Direction: domain.DirectionDebit,
			Amount: decimal.RequireFromString("12.34"), IsLaundering: true,
		}},
		Summary: domain.Summary{TotalEntries: 1, LaunderingEntries: 1},
	}
}

func TestRunStoreSaveAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewRunStore(client, time.Hour)
	ctx := context.Background()

	if err := store.Save(ctx, storedDataset()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if got.Seed != 9 || got.Summary.TotalEntries != 1 {
		t.Fatalf("unexpected dataset %+v", got)
	}
	if len(got.Entries) != 1 || !got.Entries[0].Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("unexpected entries %+v", got.Entries)
	}
	if got.Entities[0].Accounts[0] != got.Accounts[0] {
		t.Fatalf("expected entity accounts to share dataset accounts")
	}

	if ttl := mr.TTL(store.prefix + "run-1"); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}
}

func TestRunStoreGetMissing(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	_, err := NewRunStore(client, time.Hour).Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunStoreExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewRunStore(client, time.Minute)
	ctx := context.Background()

	if err := store.Save(ctx, storedDataset()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "run-1"); !errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("expected expired run, got %v", err)
	}
}

func TestRunStoreCorruptPayload(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	store := NewRunStore(client, time.Hour)
	if err := mr.Set(store.prefix+"bad", "{not json"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	_, err := store.Get(context.Background(), "bad")
	if err == nil || errors.Is(err, domain.ErrRunNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
