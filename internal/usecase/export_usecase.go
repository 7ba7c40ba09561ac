package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/amlsynth/internal/domain"
)

// ExportUseCase writes datasets to the configured sinks.
type ExportUseCase struct {
	sinks   map[string]DatasetSink
	metrics MetricsRecorder
	logger  zerolog.Logger
}

// NewExportUseCase creates a new ExportUseCase over the given sinks.
func NewExportUseCase(metrics MetricsRecorder, logger zerolog.Logger, sinks ...DatasetSink) *ExportUseCase {
	if metrics == nil {
		metrics = NopRecorder{}
	}

	byName := make(map[string]DatasetSink, len(sinks))
	for _, s := range sinks {
		byName[s.Name()] = s
	}

	return &ExportUseCase{sinks: byName, metrics: metrics, logger: logger}
}

// Sinks lists the registered sink names.
func (uc *ExportUseCase) Sinks() []string {
	names := make([]string, 0, len(uc.sinks))
	for name := range uc.sinks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export writes ds to the named sink.
func (uc *ExportUseCase) Export(ctx context.Context, sink string, ds *domain.Dataset) error {
	s, ok := uc.sinks[sink]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownSink, sink)
	}

	start := time.Now()
	if err := s.Write(ctx, ds); err != nil {
		return fmt.Errorf("export to %s: %w", sink, err)
	}
	elapsed := time.Since(start)
	uc.metrics.ExportDuration(sink, elapsed)

	uc.logger.Info().
		Str("sink", sink).
		Str("run_id", ds.RunID).
		Int("entries", len(ds.Entries)).
		Dur("duration", elapsed).
		Msg("dataset exported")

	return nil
}
