package probe

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for the outbound probe client.
type Metrics struct {
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	cacheEvicts   prometheus.Counter
	cachedEntries prometheus.Gauge

	probeReqs     *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	breakerTrips  *prometheus.CounterVec
}

func NewMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Probe response cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Probe response cache misses.",
		}),
		cacheEvicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_evictions_total",
			Help:      "Probe response cache evictions.",
		}),
		cachedEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cached_entries",
			Help:      "Current number of cached probe responses.",
		}),

		probeReqs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Outbound probe requests count.",
		}, []string{"kind", "result"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Outbound probe request latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 12},
		}, []string{"kind", "result"}),
		breakerTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "breaker_transitions_total",
			Help:      "Per-host circuit breaker state transitions.",
		}, []string{"to"}),
	}

	prometheus.MustRegister(
		m.cacheHits, m.cacheMisses, m.cacheEvicts, m.cachedEntries,
		m.probeReqs, m.probeDuration, m.breakerTrips,
	)

	return m
}
