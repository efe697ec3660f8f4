package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the profile engine.
type Metrics struct {
	// Refinement attempts by source and final action
	Refinements *prometheus.CounterVec

	// Skipped trait mappings by source
	Warnings *prometheus.CounterVec

	// Team climate requests by outcome ("computed", "withheld")
	ClimateRequests *prometheus.CounterVec

	// Answer/event processing latency including persistence
	RefineLatency *prometheus.HistogramVec
}

// New registers every metric with reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Refinements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_refinements_total",
			Help: "Total trait refinement attempts by source and action",
		}, []string{"source", "action"}), // action: "commit", "gate_reject", "no_op", "error"

		Warnings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_refinement_warnings_total",
			Help: "Trait mappings skipped because the trait was missing from the vector",
		}, []string{"source"}),

		ClimateRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "profile_climate_requests_total",
			Help: "Team climate requests by outcome",
		}, []string{"outcome"}),

		RefineLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "profile_refine_duration_seconds",
			Help:    "Duration of answer and event processing including persistence",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"source"}),
	}
}

// IncrementRefinement records one refinement outcome.
func (m *Metrics) IncrementRefinement(source, action string) {
	if m != nil {
		m.Refinements.WithLabelValues(source, action).Inc()
	}
}

// AddWarnings records skipped mappings.
func (m *Metrics) AddWarnings(source string, n int) {
	if m != nil && n > 0 {
		m.Warnings.WithLabelValues(source).Add(float64(n))
	}
}

// IncrementClimate records a climate request outcome.
func (m *Metrics) IncrementClimate(withheld bool) {
	if m == nil {
		return
	}
	outcome := "computed"
	if withheld {
		outcome = "withheld"
	}
	m.ClimateRequests.WithLabelValues(outcome).Inc()
}

// ObserveRefineLatency records how long one refinement took.
func (m *Metrics) ObserveRefineLatency(source string, d time.Duration) {
	if m != nil {
		m.RefineLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}
