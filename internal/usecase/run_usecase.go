package usecase

import (
	"context"

	"github.com/iho/amlsynth/internal/domain"
)

// Entry page sizes.
const (
	DefaultEntryLimit = 100
	MaxEntryLimit     = 1000
)

// EntryFilter selects entries of a stored run.
type EntryFilter struct {
	Laundering *bool
	AccountID  string
	Limit      int
	Offset     int
}

// Normalize returns f with the limit defaulted and capped and a negative
// offset reset to zero.
func (f EntryFilter) Normalize() EntryFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultEntryLimit
	}
	if f.Limit > MaxEntryLimit {
		f.Limit = MaxEntryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// RunUseCase generates datasets on request and serves them back.
type RunUseCase struct {
	generator *DatasetUseCase
	store     RunStore
}

// NewRunUseCase creates a new RunUseCase.
func NewRunUseCase(generator *DatasetUseCase, store RunStore) *RunUseCase {
	return &RunUseCase{generator: generator, store: store}
}

// CreateRun generates a dataset and stores it.
func (uc *RunUseCase) CreateRun(ctx context.Context, opts GenerateOptions) (*domain.Dataset, error) {
	ds, err := uc.generator.Generate(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := uc.store.Save(ctx, ds); err != nil {
		return nil, err
	}

	return ds, nil
}

// GetRun returns a stored dataset.
func (uc *RunUseCase) GetRun(ctx context.Context, runID string) (*domain.Dataset, error) {
	return uc.store.Get(ctx, runID)
}

// ListEntries returns the entries of a run matching f, in chronological order.
func (uc *RunUseCase) ListEntries(ctx context.Context, runID string, f EntryFilter) ([]domain.LedgerEntry, error) {
	ds, err := uc.store.Get(ctx, runID)
	if err != nil {
		return nil, err
	}

	f = f.Normalize()

	out := make([]domain.LedgerEntry, 0, f.Limit)
	skipped := 0
	for i := range ds.Entries {
		e := &ds.Entries[i]
		if f.Laundering != nil && e.IsLaundering != *f.Laundering {
			continue
		}
		if f.AccountID != "" && e.AccountID != f.AccountID {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}

		out = append(out, *e)
		if len(out) == f.Limit {
			break
		}
	}

	return out, nil
}

// ListAccounts returns the accounts of a run with their launderer flags.
func (uc *RunUseCase) ListAccounts(ctx context.Context, runID string) ([]*domain.Account, error) {
	ds, err := uc.store.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	return ds.Accounts, nil
}
