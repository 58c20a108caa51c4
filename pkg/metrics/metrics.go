package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal       *prometheus.CounterVec
	HTTPRequestDuration     *prometheus.HistogramVec
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	CacheLookupsTotal       *prometheus.CounterVec
	PrerenderedPagesTotal   *prometheus.CounterVec

	initOnce sync.Once
)

// Init registers every collector with the default registry. It is safe to
// call more than once.
func Init() {
	initOnce.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		UpstreamRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_requests_total",
				Help: "Total number of requests sent to the character catalog.",
			},
			[]string{"endpoint", "outcome"}, // outcome: ok, not_found, upstream_error, network_error
		)

		UpstreamRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Duration of requests sent to the character catalog.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint"},
		)

		CacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Cache lookups by layer and result.",
			},
			[]string{"layer", "result"}, // layer: data, page; result: hit, stale, miss, bypass, error
		)

		PrerenderedPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prerendered_pages_total",
				Help: "Pages produced by static generation.",
			},
			[]string{"outcome"},
		)
	})
}

// ObserveUpstream records one catalog request.
func ObserveUpstream(endpoint, outcome string, seconds float64) {
	if UpstreamRequestsTotal == nil {
		return
	}
	UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// ObserveCache records one cache lookup.
func ObserveCache(layer, result string) {
	if CacheLookupsTotal == nil {
		return
	}
	CacheLookupsTotal.WithLabelValues(layer, result).Inc()
}

// ObservePrerender records one statically generated page.
func ObservePrerender(outcome string) {
	if PrerenderedPagesTotal == nil {
		return
	}
	PrerenderedPagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records one served request.
func ObserveHTTP(method, path, status string, seconds float64) {
	if HTTPRequestsTotal == nil {
		return
	}
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}
