package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the reconciler's Prometheus instruments.
type Metrics struct {
	SignalsTotal        *prometheus.CounterVec
	SignalDuration      *prometheus.HistogramVec
	CorrelationFailures *prometheus.CounterVec
	WriteConflicts      prometheus.Counter
	AmbiguousMatches    prometheus.Counter
}

// New creates the metrics and registers them on the provided registerer. Passing
// prometheus.DefaultRegisterer wires them to the default /metrics handler.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SignalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accountflow_signals_total",
				Help: "Lifecycle signals processed, by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		SignalDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "accountflow_signal_duration_seconds",
				Help:    "Duration of signal processing, correlation and write included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		CorrelationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "accountflow_correlation_failures_total",
				Help: "Signals that could not be correlated to a record, by reason",
			},
			[]string{"reason"},
		),
		WriteConflicts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "accountflow_write_conflicts_total",
				Help: "Conditional updates lost to a concurrent writer",
			},
		),
		AmbiguousMatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "accountflow_ambiguous_correlations_total",
				Help: "Account-name scans matching more than one record (integrity violation)",
			},
		),
	}

	reg.MustRegister(
		m.SignalsTotal,
		m.SignalDuration,
		m.CorrelationFailures,
		m.WriteConflicts,
		m.AmbiguousMatches,
	)
	return m
}
