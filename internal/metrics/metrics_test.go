package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementRefinement("answer", "commit")
	m.IncrementRefinement("answer", "commit")
	m.IncrementRefinement("event", "no_op")
	m.AddWarnings("event", 3)
	m.AddWarnings("event", 0)
	m.IncrementClimate(true)
	m.IncrementClimate(false)
	m.IncrementClimate(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Refinements.WithLabelValues("answer", "commit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Refinements.WithLabelValues("event", "no_op")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Warnings.WithLabelValues("event")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ClimateRequests.WithLabelValues("withheld")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClimateRequests.WithLabelValues("computed")))
}

func TestMetrics_Latency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRefineLatency("answer", 3*time.Millisecond)

	n, err := testutil.GatherAndCount(reg, "profile_refine_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementRefinement("answer", "commit")
		m.AddWarnings("answer", 1)
		m.IncrementClimate(true)
		m.ObserveRefineLatency("event", time.Second)
	})
}
