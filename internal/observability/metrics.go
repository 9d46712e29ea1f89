package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ranking pipeline.
type Metrics struct {
	SchoolsProcessed prometheus.Counter
	RunDuration      prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,not_found,error}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	Resolutions     *prometheus.CounterVec // labels: tier={full_address,mandal_only,unresolved}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SchoolsProcessed,
		m.RunDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.Resolutions,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SchoolsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "transfer_ranker",
			Name:      "schools_processed_total",
			Help:      "Total school rows run through the resolution pipeline.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "transfer_ranker",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete resolve-rank-assemble run.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transfer_ranker",
			Name:      "geocode_requests_total",
			Help:      "External geocoding requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transfer_ranker",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transfer_ranker",
			Name:      "resolutions_total",
			Help:      "School resolutions by final tier.",
		}, []string{"tier"}),
	}
}
