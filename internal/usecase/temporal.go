package usecase

import (
	"time"

	"github.com/iho/amlsynth/internal/domain"
)

// EarliestTimestampsByAccount returns the first event time seen per account.
// Entries without a timestamp are skipped.
func EarliestTimestampsByAccount(entries []domain.LedgerEntry) map[string]time.Time {
	earliest := make(map[string]time.Time)

	for i := range entries {
		e := &entries[i]
		if e.AccountID == "" || e.Timestamp.IsZero() {
			continue
		}

		if cur, ok := earliest[e.AccountID]; !ok || e.Timestamp.Before(cur) {
			earliest[e.AccountID] = e.Timestamp
		}
	}

	return earliest
}

// MinStartTime shifts every earliest timestamp forward by buffer. The result is
// the floor before which no laundering activity may be scheduled on an account.
func MinStartTime(earliest map[string]time.Time, buffer time.Duration) map[string]time.Time {
	floors := make(map[string]time.Time, len(earliest))
	for id, ts := range earliest {
		floors[id] = ts.Add(buffer)
	}
	return floors
}

// AccountsWithHistory keeps the accounts that have a floor, in input order.
func AccountsWithHistory(accounts []*domain.Account, minStart map[string]time.Time) []*domain.Account {
	out := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if _, ok := minStart[a.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// EligibleAccounts keeps the accounts whose floor is at or before end.
func EligibleAccounts(accounts []*domain.Account, minStart map[string]time.Time, end time.Time) []*domain.Account {
	out := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if floor, ok := minStart[a.ID]; ok && !floor.After(end) {
			out = append(out, a)
		}
	}
	return out
}

// TransactionFloor is the earliest time a transaction between the given
// accounts may be scheduled: the latest of start and every account's floor.
// ok is false when the floor falls after end.
func TransactionFloor(minStart map[string]time.Time, start, end time.Time, accountIDs ...string) (floor time.Time, ok bool) {
	floor = start
	for _, id := range accountIDs {
		if t, found := minStart[id]; found && t.After(floor) {
			floor = t
		}
	}
	return floor, !floor.After(end)
}
