package usecase_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/usecase"
	"github.com/iho/amlsynth/internal/usecase/mocks"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := domain.ParseTimestamp(s)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", s, err)
	}
	return v
}

func entry(t *testing.T, at, account, counterparty string, dir domain.Direction, laundering bool) domain.LedgerEntry {
	t.Helper()
	return domain.LedgerEntry{
		EntryID:      account + "@" + at,
		Timestamp:    ts(t, at),
		AccountID:    account,
		Counterparty: counterparty,
		Direction:    dir,
		Amount:       decimal.NewFromInt(100),
		IsLaundering: laundering,
	}
}

func accountsNamed(ids ...string) []*domain.Account {
	out := make([]*domain.Account, len(ids))
	for i, id := range ids {
		out[i] = &domain.Account{ID: id, OwnerID: "owner-" + id, Currency: "USD"}
	}
	return out
}

func knownIDs(accounts []*domain.Account) []string {
	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	return ids
}

func newDeps(seed uint64, known []string) usecase.LaunderingDeps {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	return usecase.LaunderingDeps{
		Rand:      rng,
		IDs:       mocks.NewSequentialIDGenerator(),
		Scheduler: usecase.NewScheduler(rng),
		Describer: &mocks.StubDescriber{},
		Splitter:  usecase.NewSplitter(known),
		Metrics:   mocks.NewRecordingMetrics(),
		Logger:    zerolog.Nop(),
	}
}

// floorsAt gives every account the same floor.
func floorsAt(at time.Time, accounts []*domain.Account) map[string]time.Time {
	m := make(map[string]time.Time, len(accounts))
	for _, a := range accounts {
		m[a.ID] = at
	}
	return m
}

func labels(entries []domain.LedgerEntry) []bool {
	out := make([]bool, len(entries))
	for i := range entries {
		out[i] = entries[i].IsLaundering
	}
	return out
}
