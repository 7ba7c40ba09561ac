package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/usecase"
	"github.com/iho/amlsynth/internal/usecase/mocks"
)

func sequentialIDs(uint64) usecase.IDGenerator {
	return mocks.NewSequentialIDGenerator()
}

func generateOptions() usecase.GenerateOptions {
	return usecase.GenerateOptions{
		Individuals:       40,
		Companies:         10,
		Banks:             3,
		LegitTxns:         600,
		LaunderingChains:  6,
		KnownAccountRatio: 0.8,
		StartDate:         "2025-01-01",
		EndDate:           "2025-03-31",
		Seed:              20250101,
		Patterns: []domain.PatternSpec{
			{Type: domain.PatternCycle, Instances: 2, StartDate: "2025-02-01", EndDate: "2025-03-31"},
			{Type: domain.PatternFanOut, StartDate: "2025-02-01", EndDate: "2025-03-31"},
			{Type: domain.PatternFanIn, StartDate: "2025-02-01", EndDate: "2025-03-31"},
			{Type: domain.PatternScatterGather, StartDate: "2025-02-01", EndDate: "2025-03-31"},
			{Type: domain.PatternCashStructuring, Accounts: 2, StartDate: "2025-02-01", EndDate: "2025-03-31"},
		},
	}
}

func TestDatasetUseCase_Generate(t *testing.T) {
	metrics := mocks.NewRecordingMetrics()
	uc := usecase.NewDatasetUseCase(sequentialIDs, metrics, zerolog.Nop())

	ds, err := uc.Generate(context.Background(), generateOptions())
	require.NoError(t, err)

	s := ds.Summary
	assert.NotEmpty(t, ds.RunID)
	assert.Equal(t, uint64(20250101), ds.Seed)
	assert.Len(t, ds.Entities, 50)
	assert.Len(t, ds.Accounts, s.Accounts)
	assert.Len(t, ds.Entries, s.TotalEntries)
	assert.Equal(t, s.LegitEntries+s.LaunderingEntries, s.TotalEntries)
	assert.Positive(t, s.LegitEntries)
	assert.Positive(t, s.LaunderingEntries)
	assert.Equal(t, domain.LaunderingCount(ds.Entries), s.TaintedEntries)
	assert.GreaterOrEqual(t, s.TaintedEntries, s.LaunderingEntries)
	assert.Equal(t, s.LegitEntries, metrics.Entries[usecase.SourceLegit])
	assert.Equal(t, s.LaunderingEntries, metrics.Entries[usecase.SourcePattern]+metrics.Entries[usecase.SourceChain])
	assert.Equal(t, s.PropagationPasses, metrics.Passes)
	assert.Equal(t, s.FlaggedAccounts, metrics.Flagged)

	known := map[string]bool{}
	for i, e := range ds.Entries {
		require.NoError(t, e.Validate(), e.EntryID)
		known[e.AccountID] = true
		if i > 0 {
			assert.False(t, e.Timestamp.Before(ds.Entries[i-1].Timestamp), "entries must be chronological")
		}
	}
	assert.LessOrEqual(t, len(known), s.KnownAccounts)

	// Flags mirror the labels exactly.
	laundering := map[string]bool{}
	for _, e := range ds.Entries {
		if e.IsLaundering {
			laundering[e.AccountID] = true
		}
	}
	flagged := 0
	for _, a := range ds.Accounts {
		assert.Equal(t, laundering[a.ID], a.Launderer, a.ID)
		if a.Launderer {
			flagged++
		}
	}
	assert.Equal(t, s.FlaggedAccounts, flagged)
	for _, e := range ds.Entities {
		owns := false
		for _, a := range e.Accounts {
			owns = owns || a.Launderer
		}
		assert.Equal(t, owns, e.Launderer, e.ID)
	}

	// Labels are already at the fixed point.
	assert.Equal(t, labels(ds.Entries), labels(usecase.PropagateLaundering(ds.Entries)))
}

func TestDatasetUseCase_GenerateIsDeterministic(t *testing.T) {
	run := func() *domain.Dataset {
		uc := usecase.NewDatasetUseCase(sequentialIDs, nil, zerolog.Nop())
		ds, err := uc.Generate(context.Background(), generateOptions())
		require.NoError(t, err)
		return ds
	}

	a, b := run(), run()

	assert.Equal(t, a.Entries, b.Entries)
	assert.Equal(t, a.Accounts, b.Accounts)
	assert.Equal(t, a.Summary, b.Summary)
}

func TestDatasetUseCase_SkipsLaunderingWithoutHistory(t *testing.T) {
	metrics := mocks.NewRecordingMetrics()
	uc := usecase.NewDatasetUseCase(sequentialIDs, metrics, zerolog.Nop())

	opts := generateOptions()
	opts.LegitTxns = 0

	ds, err := uc.Generate(context.Background(), opts)
	require.NoError(t, err)

	assert.Empty(t, ds.Entries)
	assert.Zero(t, ds.Summary.AccountsEligible)
	assert.Zero(t, ds.Summary.LaunderingEntries)
	assert.Equal(t, 1, metrics.Skipped[usecase.SkipNoHistory])
	for _, a := range ds.Accounts {
		assert.False(t, a.Launderer)
	}
}

func TestDatasetUseCase_LegitOnly(t *testing.T) {
	uc := usecase.NewDatasetUseCase(sequentialIDs, nil, zerolog.Nop())

	opts := generateOptions()
	opts.Patterns = nil
	opts.LaunderingChains = 0

	ds, err := uc.Generate(context.Background(), opts)
	require.NoError(t, err)

	assert.NotEmpty(t, ds.Entries)
	assert.Zero(t, domain.LaunderingCount(ds.Entries))
	assert.Zero(t, ds.Summary.FlaggedAccounts)
}

func TestDatasetUseCase_GenerateErrors(t *testing.T) {
	uc := usecase.NewDatasetUseCase(sequentialIDs, nil, zerolog.Nop())

	tests := []struct {
		name   string
		modify func(*usecase.GenerateOptions)
		err    error
	}{
		{"bad start", func(o *usecase.GenerateOptions) { o.StartDate = "yesterday" }, domain.ErrInvalidTimestamp},
		{"inverted window", func(o *usecase.GenerateOptions) { o.EndDate = "2024-12-01" }, domain.ErrInvalidWindow},
		{"no banks", func(o *usecase.GenerateOptions) { o.Banks = 0 }, domain.ErrNoPopulation},
		{"no entities", func(o *usecase.GenerateOptions) { o.Individuals, o.Companies = 0, 0 }, domain.ErrNoPopulation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := generateOptions()
			tt.modify(&opts)

			ds, err := uc.Generate(context.Background(), opts)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, ds)
		})
	}
}

func TestDatasetUseCase_GenerateHonorsCancellation(t *testing.T) {
	uc := usecase.NewDatasetUseCase(sequentialIDs, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ds, err := uc.Generate(ctx, generateOptions())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, ds)
}
