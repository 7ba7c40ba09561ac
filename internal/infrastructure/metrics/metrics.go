package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the generation pipeline.
type Metrics struct {
	// Generation metrics
	GeneratedEntries  *prometheus.CounterVec
	PatternOutcomes   *prometheus.CounterVec
	SkippedTransfers  *prometheus.CounterVec
	PropagationPasses prometheus.Gauge
	TaintedEntries    prometheus.Counter
	FlaggedAccounts   prometheus.Gauge

	// Export metrics
	ExportSeconds *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		GeneratedEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amlsynth_entries_generated_total",
				Help: "Ledger entries generated by source",
			},
			[]string{"source"},
		),
		PatternOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amlsynth_pattern_instances_total",
				Help: "Laundering pattern and chain instances by outcome",
			},
			[]string{"pattern", "outcome"},
		),
		SkippedTransfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "amlsynth_transactions_skipped_total",
				Help: "Laundering transactions skipped by reason",
			},
			[]string{"reason"},
		),
		PropagationPasses: factory.NewGauge(prometheus.GaugeOpts{
			Name: "amlsynth_propagation_passes",
			Help: "Passes the last propagation needed to reach a fixed point",
		}),
		TaintedEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "amlsynth_entries_tainted_total",
			Help: "Entries labeled laundering after propagation",
		}),
		FlaggedAccounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "amlsynth_accounts_flagged",
			Help: "Accounts flagged as launderers in the last run",
		}),
		ExportSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "amlsynth_export_duration_seconds",
				Help:    "Duration of dataset exports by sink",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"sink"},
		),
	}
}

// EntriesGenerated implements usecase.MetricsRecorder.
func (m *Metrics) EntriesGenerated(source string, n int) {
	m.GeneratedEntries.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) PatternInstance(pattern, outcome string) {
	m.PatternOutcomes.WithLabelValues(pattern, outcome).Inc()
}

func (m *Metrics) TransactionSkipped(reason string) {
	m.SkippedTransfers.WithLabelValues(reason).Inc()
}

func (m *Metrics) Propagated(passes, tainted int) {
	m.PropagationPasses.Set(float64(passes))
	m.TaintedEntries.Add(float64(tainted))
}

func (m *Metrics) AccountsFlagged(n int) {
	m.FlaggedAccounts.Set(float64(n))
}

func (m *Metrics) ExportDuration(sink string, d time.Duration) {
	m.ExportSeconds.WithLabelValues(sink).Observe(d.Seconds())
}
