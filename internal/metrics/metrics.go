package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Panel build outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics provides observability for the dashboard.
type Metrics struct {
	// HTTP requests by route pattern and status code
	Requests *prometheus.CounterVec

	// Request latency by route pattern
	RequestLatency *prometheus.HistogramVec

	// Panel evaluations by panel id and outcome
	PanelBuilds *prometheus.CounterVec

	// Duration of a full page evaluation
	EvaluateLatency prometheus.Histogram

	// Records held by the loaded dataset
	DatasetRecords prometheus.Gauge
}

// New creates the dashboard metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vgdash_http_requests_total",
			Help: "Total HTTP requests by route and status",
		}, []string{"route", "status"}),

		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vgdash_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),

		PanelBuilds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vgdash_panel_builds_total",
			Help: "Total panel evaluations by panel and outcome",
		}, []string{"panel", "outcome"}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "vgdash_evaluate_duration_seconds",
			Help:    "Duration of filtering and building every panel for one selection",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		DatasetRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "vgdash_dataset_records",
			Help: "Number of cleaned records in the loaded dataset",
		}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	if m != nil {
		m.Requests.WithLabelValues(route, status).Inc()
		m.RequestLatency.WithLabelValues(route).Observe(d.Seconds())
	}
}

// IncrementPanelBuild records a panel evaluation outcome.
func (m *Metrics) IncrementPanelBuild(panel, outcome string) {
	if m != nil {
		m.PanelBuilds.WithLabelValues(panel, outcome).Inc()
	}
}

// ObserveEvaluateLatency records the duration of one page evaluation.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// SetDatasetRecords records the dataset size.
func (m *Metrics) SetDatasetRecords(n int) {
	if m != nil {
		m.DatasetRecords.Set(float64(n))
	}
}
