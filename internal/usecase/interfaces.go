package usecase

import (
	"context"
	"time"

	"github.com/iho/amlsynth/internal/domain"
)

// IDGenerator generates unique IDs.
type IDGenerator interface {
	// Generate returns a transaction id sortable by the event time it is stamped with.
	Generate(at time.Time) string
	// NewUUID returns an opaque id for entities, accounts and banks.
	NewUUID() string
}

// Describer fills the narrative fields of a transfer: source description,
// wire routing details and, for cash legs, the ATM identity.
type Describer interface {
	Describe(t *Transfer, purpose string)
}

// DatasetSink persists a generated dataset.
type DatasetSink interface {
	Name() string
	Write(ctx context.Context, ds *domain.Dataset) error
}

// RunStore keeps generated datasets for later browsing.
type RunStore interface {
	Save(ctx context.Context, ds *domain.Dataset) error
	Get(ctx context.Context, runID string) (*domain.Dataset, error)
}

// MetricsRecorder receives counters from the generation pipeline.
type MetricsRecorder interface {
	EntriesGenerated(source string, n int)
	PatternInstance(pattern, outcome string)
	TransactionSkipped(reason string)
	Propagated(passes, tainted int)
	AccountsFlagged(n int)
	ExportDuration(sink string, d time.Duration)
}

// NopRecorder discards all metrics.
type NopRecorder struct{}

func (NopRecorder) EntriesGenerated(string, int) {}
func (NopRecorder) PatternInstance(string, string) {}
func (NopRecorder) TransactionSkipped(string) {}
func (NopRecorder) Propagated(int, int) {}
func (NopRecorder) AccountsFlagged(int) {}
func (NopRecorder) ExportDuration(string, time.Duration) {}

// IdempotencyStore remembers responses to requests carrying an idempotency key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (reserved bool, response []byte, err error)
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
