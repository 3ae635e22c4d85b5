package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the risk engine.
type Metrics struct {
	Assessments        *prometheus.CounterVec   // labels: type
	UpstreamFailures   *prometheus.CounterVec   // labels: signal
	AssessmentDuration *prometheus.HistogramVec // labels: type
	GridPoints         prometheus.Counter
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
}

// NewMetrics creates and registers all instruments with the given registerer.
// Tests pass a fresh prometheus.NewRegistry() to avoid cross-test collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "highland_risk",
			Name:      "assessments_total",
			Help:      "Total composite risk assessments computed, by risk type.",
		}, []string{"type"}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "highland_risk",
			Name:      "upstream_failures_total",
			Help:      "Collaborator fetches that resolved to an absent signal.",
		}, []string{"signal"}),
		AssessmentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "highland_risk",
			Name:      "assessment_duration_seconds",
			Help:      "Wall time of one gather-and-compose cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"type"}),
		GridPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "highland_risk",
			Name:      "grid_points_total",
			Help:      "Total lattice points evaluated by the grid evaluator.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "highland_risk",
			Name:      "result_cache_hits_total",
			Help:      "Risk results served from the service-layer cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "highland_risk",
			Name:      "result_cache_misses_total",
			Help:      "Risk requests that required a fresh computation.",
		}),
	}

	reg.MustRegister(
		m.Assessments,
		m.UpstreamFailures,
		m.AssessmentDuration,
		m.GridPoints,
		m.CacheHits,
		m.CacheMisses,
	)
	return m
}
