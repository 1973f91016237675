package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/knapsack/algorithm/evolution"
)

func TestReporter_RecordsSnapshots(t *testing.T) {
	m := NewMetrics("knapsack-test")
	r := m.Reporter("steady", 10)

	r.Report(context.Background(), evolution.Snapshot{Generation: 10, Best: 120, Mean: 80.5, Accepted: 3})
	r.Report(context.Background(), evolution.Snapshot{Generation: 20, Best: 150, Mean: 90, Accepted: 1})

	assert.InDelta(t, 20, testutil.ToFloat64(m.Generations.WithLabelValues("steady")), 1e-9)
	assert.InDelta(t, 4, testutil.ToFloat64(m.Offspring.WithLabelValues("steady")), 1e-9)
	assert.InDelta(t, 150, testutil.ToFloat64(m.BestQuality.WithLabelValues("steady")), 1e-9)
	assert.InDelta(t, 90, testutil.ToFloat64(m.MeanQuality.WithLabelValues("steady")), 1e-9)
}

func TestNilMetrics_AreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Reporter("steady", 10).Report(context.Background(), evolution.Snapshot{Best: 1})
		m.ObserveSolve("steady", 0.1, nil)
		m.ObserveGap("steady", 0.01)
		m.RegisterBuildInfo("knapsack", "dev", evolution.DefaultConfig())
	})
}

func TestObserveSolve(t *testing.T) {
	m := NewMetrics("knapsack-test")
	m.ObserveSolve("generational", 0.25, nil)
	m.ObserveSolve("generational", 0, errors.New("boom"))
	m.ObserveGap("generational", 0.02)

	assert.InDelta(t, 1, testutil.ToFloat64(m.SolvesTotal.WithLabelValues("generational", "ok")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SolvesTotal.WithLabelValues("generational", "error")), 1e-9)
	assert.InDelta(t, 0.02, testutil.ToFloat64(m.OptimalityGap.WithLabelValues("generational")), 1e-9)
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := NewMetrics("knapsack-test")
	m.RegisterBuildInfo("knapsack", "1.0.0", evolution.Config{Selection: "elitist", Replacement: "generational"})
	m.RegisterBuildInfo("knapsack", "2.0.0", evolution.DefaultConfig())
	m.BestQuality.WithLabelValues("steady").Set(42)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `knapsack_best_quality{replacement="steady"} 42`)
	assert.Contains(t, string(body), `knapsack_build_info{crossover="segment",mutation="rollback",replacement="generational",selection="elitist",service="knapsack",version="1.0.0"} 1`)
	assert.NotContains(t, string(body), `version="2.0.0"`)
}
