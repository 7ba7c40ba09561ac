package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/iho/amlsynth/internal/usecase"
)

// SequentialIDGenerator is a deterministic IDGenerator for tests.
type SequentialIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewSequentialIDGenerator() *SequentialIDGenerator {
	return &SequentialIDGenerator{}
}

func (g *SequentialIDGenerator) Generate(at time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("txn-%04d", g.counter)
}

func (g *SequentialIDGenerator) NewUUID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%04d", g.counter)
}

// StubDescriber is a Describer that records purposes and writes them as the
// description.
type StubDescriber struct {
	DescribeFunc func(t *usecase.Transfer, purpose string)
	Purposes     []string
}

func (d *StubDescriber) Describe(t *usecase.Transfer, purpose string) {
	d.Purposes = append(d.Purposes, purpose)
	if d.DescribeFunc != nil {
		d.DescribeFunc(t, purpose)
		return
	}
	t.Description = purpose
}

// RecordingMetrics counts calls to the MetricsRecorder methods.
type RecordingMetrics struct {
	mu       sync.Mutex
	Entries  map[string]int
	Patterns map[string]int
	Skipped  map[string]int
	Passes   int
	Tainted  int
	Flagged  int
	Exports  map[string]int
}

func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Entries:  make(map[string]int),
		Patterns: make(map[string]int),
		Skipped:  make(map[string]int),
		Exports:  make(map[string]int),
	}
}

func (m *RecordingMetrics) EntriesGenerated(source string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries[source] += n
}

func (m *RecordingMetrics) PatternInstance(pattern, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Patterns[pattern+"/"+outcome]++
}

func (m *RecordingMetrics) TransactionSkipped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped[reason]++
}

func (m *RecordingMetrics) Propagated(passes, tainted int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Passes = passes
	m.Tainted = tainted
}

func (m *RecordingMetrics) AccountsFlagged(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flagged = n
}

func (m *RecordingMetrics) ExportDuration(sink string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Exports[sink]++
}
