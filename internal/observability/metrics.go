// Package observability provides the Prometheus metrics exported by qt serve.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LatencyBuckets covers provider round trips from 100ms to 30s
var LatencyBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

var (
	// TranslationsTotal counts translate calls by provider and outcome
	// ("ok", "cache_hit" or an error kind).
	TranslationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quicktranslate_translations_total",
			Help: "Translation requests",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderLatency records provider round-trip latency in seconds
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quicktranslate_provider_latency_seconds",
			Help:    "Provider latency",
			Buckets: LatencyBuckets,
		},
		[]string{"provider"},
	)

	// CacheLookupsTotal counts translation cache lookups by result (hit, miss, error)
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quicktranslate_cache_lookups_total",
			Help: "Translation cache lookups",
		},
		[]string{"result"},
	)

	// ConnectionTestsTotal counts connectivity probes by provider and result
	ConnectionTestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quicktranslate_connection_tests_total",
			Help: "Connection tests",
		},
		[]string{"provider", "success"},
	)

	// CatalogFetchesTotal counts remote catalog fetches by source served
	// ("remote", "stale_cache", "defaults").
	CatalogFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quicktranslate_catalog_fetches_total",
			Help: "Remote model catalog fetches",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(
		TranslationsTotal,
		ProviderLatency,
		CacheLookupsTotal,
		ConnectionTestsTotal,
		CatalogFetchesTotal,
	)
}
