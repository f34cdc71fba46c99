package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the workflow core. All helper
// methods tolerate a nil receiver so tests can pass nil instead of wiring a
// registry.
type Metrics struct {
	RegistrationsSubmitted prometheus.Counter
	RegistrationDecisions  *prometheus.CounterVec
	ApplicationsSubmitted  prometheus.Counter
	ApplicationDecisions   *prometheus.CounterVec
	StaleConflicts         *prometheus.CounterVec
	SummaryRebuildSeconds  prometheus.Histogram
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		RegistrationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hearth_registrations_submitted_total",
			Help: "Bank-agent registrations submitted.",
		}),
		RegistrationDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hearth_registration_decisions_total",
			Help: "Registration decisions by outcome.",
		}, []string{"outcome"}),
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hearth_applications_submitted_total",
			Help: "Loan applications submitted.",
		}),
		ApplicationDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hearth_application_decisions_total",
			Help: "Loan application decisions by outcome.",
		}, []string{"outcome"}),
		StaleConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hearth_stale_state_conflicts_total",
			Help: "Conditional updates that lost a concurrent race, by entity.",
		}, []string{"entity"}),
		SummaryRebuildSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hearth_summary_rebuild_seconds",
			Help:    "Time spent recomputing the reporting summary.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncRegistrationSubmitted() {
	if m == nil {
		return
	}
	m.RegistrationsSubmitted.Inc()
}

func (m *Metrics) IncRegistrationDecision(outcome string) {
	if m == nil {
		return
	}
	m.RegistrationDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncApplicationSubmitted() {
	if m == nil {
		return
	}
	m.ApplicationsSubmitted.Inc()
}

func (m *Metrics) IncApplicationDecision(outcome string) {
	if m == nil {
		return
	}
	m.ApplicationDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncStaleConflict(entity string) {
	if m == nil {
		return
	}
	m.StaleConflicts.WithLabelValues(entity).Inc()
}

func (m *Metrics) ObserveSummaryRebuild(seconds float64) {
	if m == nil {
		return
	}
	m.SummaryRebuildSeconds.Observe(seconds)
}
