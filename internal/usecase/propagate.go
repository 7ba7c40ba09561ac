package usecase

import (
	"fmt"
	"slices"
	"time"

	"github.com/iho/amlsynth/internal/domain"
)

// PropagationStats describes one propagation run.
type PropagationStats struct {
	Passes    int
	Seeded    int
	Relabeled int
	Tainted   int
}

// PropagateLaundering extends the laundering label forward through the
// transaction graph and returns the entries sorted by timestamp. The input
// slice is not modified.
func PropagateLaundering(entries []domain.LedgerEntry) []domain.LedgerEntry {
	out, _ := Propagate(entries)
	return out
}

// Propagate is PropagateLaundering with run statistics.
//
// Entries are walked in timestamp order (stable for ties) while a per-account
// first-taint time is maintained. A credit becomes tainted when its
// counterparty was tainted at or before the credit. A debit from an account
// tainted at or before the debit is tainted and taints its counterparty as of
// the debit. Walks repeat until nothing changes, so taint crossing entries
// that share a timestamp converges regardless of input order.
//
// Entries without an account or timestamp violate the generator contract and
// cause a panic.
func Propagate(entries []domain.LedgerEntry) ([]domain.LedgerEntry, PropagationStats) {
	out := slices.Clone(entries)
	for i := range out {
		if out[i].AccountID == "" || out[i].Timestamp.IsZero() {
			panic(fmt.Sprintf("propagate: %v: entry %q", domain.ErrMalformedEntry, out[i].EntryID))
		}
	}

	slices.SortStableFunc(out, func(a, b domain.LedgerEntry) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	stats := PropagationStats{Seeded: domain.LaunderingCount(out)}
	g := taintGraph{first: make(map[string]time.Time)}

	// Every pass either lowers a first-taint time or flips a label, both
	// bounded by the entry count.
	for stats.Passes <= len(out) {
		stats.Passes++
		g.changed = false

		for i := range out {
			g.visit(&out[i])
		}

		if !g.changed {
			break
		}
	}

	stats.Tainted = domain.LaunderingCount(out)
	stats.Relabeled = stats.Tainted - stats.Seeded

	return out, stats
}

type taintGraph struct {
	first   map[string]time.Time
	changed bool
}

func (g *taintGraph) visit(e *domain.LedgerEntry) {
	if e.IsLaundering {
		g.taint(e.AccountID, e.Timestamp)
	}

	switch e.Direction {
	case domain.DirectionCredit:
		if e.HasCounterAccount() && g.taintedAt(e.Counterparty, e.Timestamp) {
			g.label(e)
			g.taint(e.AccountID, e.Timestamp)
		}
	case domain.DirectionDebit:
		if g.taintedAt(e.AccountID, e.Timestamp) {
			g.label(e)
			if e.HasCounterAccount() {
				g.taint(e.Counterparty, e.Timestamp)
			}
		}
	}
}

func (g *taintGraph) label(e *domain.LedgerEntry) {
	if !e.IsLaundering {
		e.IsLaundering = true
		g.changed = true
	}
}

func (g *taintGraph) taint(accountID string, at time.Time) {
	if cur, ok := g.first[accountID]; !ok || at.Before(cur) {
		g.first[accountID] = at
		g.changed = true
	}
}

func (g *taintGraph) taintedAt(accountID string, at time.Time) bool {
	t, ok := g.first[accountID]
	return ok && !t.After(at)
}
