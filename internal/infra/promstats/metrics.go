// Package promstats exports ledger submission metrics to Prometheus.
package promstats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/osvaldoandrade/memostamp/internal/domain"
)

const namespace = "memostamp"

type Metrics struct {
	registry  *prometheus.Registry
	submits   *prometheus.CounterVec
	stamps    *prometheus.CounterVec
	duration  prometheus.Summary
	conflicts prometheus.Counter
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	submits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "ledger", Name: "submissions_total",
		Help: "transactions applied, by hook outcome",
	}, []string{"outcome"})
	stamps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "hook", Name: "stamps_total",
		Help: "accepted hook runs, split into new timestamps and existing ones",
	}, []string{"result"})
	duration := prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace, Subsystem: "ledger", Name: "submit_duration_seconds",
		Help:       "time to close one ledger, sliding window = 10m",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "ledger", Name: "conflicts_total",
		Help: "ledger closes retried because another writer closed first",
	})

	registry.MustRegister(
		submits,
		stamps,
		duration,
		conflicts,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:  registry,
		submits:   submits,
		stamps:    stamps,
		duration:  duration,
		conflicts: conflicts,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveSubmit(outcome domain.Outcome, elapsed time.Duration) {
	m.submits.WithLabelValues(outcome.Status.String()).Inc()
	m.duration.Observe(elapsed.Seconds())
	if !outcome.Accepted() {
		return
	}
	if outcome.Code > 0 {
		m.stamps.WithLabelValues("found").Inc()
	} else {
		m.stamps.WithLabelValues("created").Inc()
	}
}

func (m *Metrics) ObserveConflict() {
	m.conflicts.Inc()
}
