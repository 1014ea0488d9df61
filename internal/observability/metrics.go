package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Cache-aside aggregation metrics.
	CacheLookups  *prometheus.CounterVec   // labels: resource, result={hit,miss}
	Fetches       *prometheus.CounterVec   // labels: resource, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: resource

	// Entity mutation metrics.
	DisasterMutations *prometheus.CounterVec // labels: action={create,update,delete}

	// Broadcast metrics.
	EventsPublished *prometheus.CounterVec // labels: topic
	SSESubscribers  prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.CacheLookups,
		m.Fetches,
		m.FetchDuration,
		m.DisasterMutations,
		m.EventsPublished,
		m.SSESubscribers,
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
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "cache_lookups_total",
			Help:      "Enrichment cache lookups by resource and result.",
		}, []string{"resource", "result"}),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "fetches_total",
			Help:      "External source fetches by resource and outcome.",
		}, []string{"resource", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "disaster_response",
			Name:      "fetch_duration_seconds",
			Help:      "External source fetch duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"resource"}),
		DisasterMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "disaster_mutations_total",
			Help:      "Successful disaster mutations by action.",
		}, []string{"action"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "disaster_response",
			Name:      "events_published_total",
			Help:      "Broadcast events published by topic.",
		}, []string{"topic"}),
		SSESubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "disaster_response",
			Name:      "sse_subscribers",
			Help:      "Currently connected event-stream subscribers.",
		}),
	}
}
