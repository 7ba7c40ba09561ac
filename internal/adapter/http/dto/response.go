package dto

import (
	"time"

	"github.com/iho/amlsynth/internal/domain"
)

// RunResponse describes a stored generation run.
type RunResponse struct {
	RunID       string         `json:"run_id"`
	Seed        uint64         `json:"seed"`
	GeneratedAt time.Time      `json:"generated_at"`
	Summary     domain.Summary `json:"summary"`
}

// RunFromDomain converts a dataset to its run summary.
func RunFromDomain(ds *domain.Dataset) *RunResponse {
	return &RunResponse{
		RunID:       ds.RunID,
		Seed:        ds.Seed,
		GeneratedAt: ds.GeneratedAt,
		Summary:     ds.Summary,
	}
}

// EntryListResponse is a page of ledger entries.
type EntryListResponse struct {
	RunID   string               `json:"run_id"`
	Entries []domain.LedgerEntry `json:"entries"`
	Limit   int                  `json:"limit"`
	Offset  int                  `json:"offset"`
}

// AccountResponse represents an account with its launderer flag.
type AccountResponse struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	OwnerType string `json:"owner_type"`
	OwnerName string `json:"owner_name"`
	BankID    string `json:"bank_id"`
	Currency  string `json:"currency"`
	Launderer bool   `json:"launderer"`
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = &AccountResponse{
			ID:        a.ID,
			OwnerID:   a.OwnerID,
			OwnerType: string(a.OwnerKind),
			OwnerName: a.OwnerName,
			BankID:    a.BankID,
			Currency:  a.Currency,
			Launderer: a.Launderer,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
