package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("/api/panels", "200", 10*time.Millisecond)
	m.ObserveRequest("/api/panels", "200", 20*time.Millisecond)
	m.IncrementPanelBuild("top-games", OutcomeOK)
	m.IncrementPanelBuild("top-games", OutcomeEmpty)
	m.SetDatasetRecords(16291)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/api/panels", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PanelBuilds.WithLabelValues("top-games", OutcomeEmpty)))
	assert.Equal(t, 16291.0, testutil.ToFloat64(m.DatasetRecords))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", "200", time.Second)
		m.IncrementPanelBuild("x", OutcomeError)
		m.ObserveEvaluateLatency(time.Second)
		m.SetDatasetRecords(1)
	})
}
