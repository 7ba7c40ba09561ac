package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/amlsynth/internal/domain"
	"github.com/iho/amlsynth/internal/usecase"
	"github.com/iho/amlsynth/internal/usecase/mocks"
)

func storedRun(t *testing.T) *domain.Dataset {
	t.Helper()
	ds := &domain.Dataset{RunID: "run-1", Accounts: accountsNamed("A", "B")}
	for i := range 30 {
		acct := "A"
		if i%3 == 0 {
			acct = "B"
		}
		e := entry(t, fmt.Sprintf("2025-01-%02d 10:00:00", i+1), acct, "X", domain.DirectionDebit, i%2 == 0)
		e.EntryID = fmt.Sprintf("e%02d", i)
		ds.Entries = append(ds.Entries, e)
	}
	return ds
}

func entryIDs(entries []domain.LedgerEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}
	return ids
}

func TestRunUseCase_CreateRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRunStore(ctrl)

	var saved *domain.Dataset
	store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ds *domain.Dataset) error {
		saved = ds
		return nil
	})

	uc := usecase.NewRunUseCase(usecase.NewDatasetUseCase(sequentialIDs, nil, zerolog.Nop()), store)

	opts := generateOptions()
	opts.LegitTxns = 100
	ds, err := uc.CreateRun(context.Background(), opts)

	require.NoError(t, err)
	assert.Same(t, saved, ds)
}

func TestRunUseCase_CreateRunDoesNotSaveFailedRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRunStore(ctrl)

	uc := usecase.NewRunUseCase(usecase.NewDatasetUseCase(sequentialIDs, nil, zerolog.Nop()), store)

	opts := generateOptions()
	opts.Banks = 0
	_, err := uc.CreateRun(context.Background(), opts)

	assert.ErrorIs(t, err, domain.ErrNoPopulation)
}

func TestRunUseCase_ListEntries(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name   string
		filter usecase.EntryFilter
		want   []string
	}{
		{"limit", usecase.EntryFilter{Limit: 3}, []string{"e00", "e01", "e02"}},
		{"offset", usecase.EntryFilter{Limit: 2, Offset: 28}, []string{"e28", "e29"}},
		{"laundering only", usecase.EntryFilter{Laundering: &yes, Limit: 3}, []string{"e00", "e02", "e04"}},
		{"clean only", usecase.EntryFilter{Laundering: &no, Limit: 2, Offset: 1}, []string{"e03", "e05"}},
		{"account", usecase.EntryFilter{AccountID: "B", Limit: 4}, []string{"e00", "e03", "e06", "e09"}},
		{"account and label", usecase.EntryFilter{AccountID: "B", Laundering: &no}, []string{"e03", "e09", "e15", "e21", "e27"}},
		{"past the end", usecase.EntryFilter{Offset: 100}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := mocks.NewMockRunStore(ctrl)
			store.EXPECT().Get(gomock.Any(), "run-1").Return(storedRun(t), nil)

			uc := usecase.NewRunUseCase(nil, store)
			got, err := uc.ListEntries(context.Background(), "run-1", tt.filter)

			require.NoError(t, err)
			assert.Equal(t, tt.want, entryIDs(got))
		})
	}
}

func TestRunUseCase_DefaultLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRunStore(ctrl)

	ds := &domain.Dataset{RunID: "big"}
	for i := range 150 {
		ds.Entries = append(ds.Entries, domain.LedgerEntry{EntryID: fmt.Sprint(i), AccountID: "A"})
	}
	store.EXPECT().Get(gomock.Any(), "big").Return(ds, nil).Times(2)

	uc := usecase.NewRunUseCase(nil, store)

	got, err := uc.ListEntries(context.Background(), "big", usecase.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 100)

	got, err = uc.ListEntries(context.Background(), "big", usecase.EntryFilter{Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, got, 150)
}

func TestRunUseCase_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRunStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "missing").Return(nil, domain.ErrRunNotFound).Times(3)

	uc := usecase.NewRunUseCase(nil, store)

	_, err := uc.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	_, err = uc.ListEntries(context.Background(), "missing", usecase.EntryFilter{})
	assert.ErrorIs(t, err, domain.ErrRunNotFound)

	_, err = uc.ListAccounts(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestRunUseCase_ListAccounts(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockRunStore(ctrl)
	store.EXPECT().Get(gomock.Any(), "run-1").Return(storedRun(t), nil)

	uc := usecase.NewRunUseCase(nil, store)
	accounts, err := uc.ListAccounts(context.Background(), "run-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, knownIDs(accounts))
}
