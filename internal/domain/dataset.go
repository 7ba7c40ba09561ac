package domain

import "time"

// Dataset is the output of one generation run.
type Dataset struct {
	RunID       string        `json:"run_id"`
	Seed        uint64        `json:"seed"`
	GeneratedAt time.Time     `json:"generated_at"`
	Entries     []LedgerEntry `json:"entries"`
	Accounts    []*Account    `json:"accounts"`
	Entities    []*Entity     `json:"entities"`
	Banks       []*Bank       `json:"banks"`
	Summary     Summary       `json:"summary"`
}

// Summary counts what each stage of a run produced.
type Summary struct {
	Accounts          int `json:"accounts"`
	KnownAccounts     int `json:"known_accounts"`
	AccountsEligible  int `json:"accounts_eligible"`
	LegitEntries      int `json:"legit_entries"`
	LaunderingEntries int `json:"laundering_entries"`
	TotalEntries      int `json:"total_entries"`
	TaintedEntries    int `json:"tainted_entries"`
	PropagationPasses int `json:"propagation_passes"`
	FlaggedAccounts   int `json:"flagged_accounts"`
	FlaggedEntities   int `json:"flagged_entities"`
	PatternsSkipped   int `json:"patterns_skipped"`
	TransactionsGated int `json:"transactions_gated"`
}

// LaunderingCount returns how many entries are labeled laundering.
func LaunderingCount(entries []LedgerEntry) int {
	n := 0
	for i := range entries {
		if entries[i].IsLaundering {
			n++
		}
	}
	return n
}
