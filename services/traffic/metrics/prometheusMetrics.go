package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "traffic"

// Collection outcomes
const (
	OutcomeSuccess            = "success"
	OutcomeUpstreamFailure    = "upstream_failure"
	OutcomePersistenceFailure = "persistence_failure"
)

type prometheusMetrics struct {
	registry        *prometheus.Registry
	collections     *prometheus.CounterVec
	batchDuration   prometheus.Histogram
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewPrometheusMetrics creates the service metrics on a dedicated registry
func NewPrometheusMetrics() *prometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &prometheusMetrics{
		registry: registry,
		collections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_total",
			Help:      "Total number of repository collections by outcome",
		}, []string{"outcome"}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_batch_duration_seconds",
			Help:      "Duration of a full collection batch in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_hits_total",
			Help:      "Total number of query cache hits",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_misses_total",
			Help:      "Total number of query cache misses",
		}),
	}
}

// IncCollection counts one repository collection with the provided outcome
func (m *prometheusMetrics) IncCollection(outcome string) {
	m.collections.WithLabelValues(outcome).Inc()
}

// ObserveBatchDuration records how long a collection batch took
func (m *prometheusMetrics) ObserveBatchDuration(duration time.Duration) {
	m.batchDuration.Observe(duration.Seconds())
}

// IncRequestsTotal counts one served HTTP request
func (m *prometheusMetrics) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, httpStatusBucket(status)).Inc()
}

// ObserveRequestDuration records how long serving an HTTP request took
func (m *prometheusMetrics) ObserveRequestDuration(route string, duration time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// IncCacheHits -
func (m *prometheusMetrics) IncCacheHits() {
	m.cacheHits.Inc()
}

// IncCacheMisses -
func (m *prometheusMetrics) IncCacheMisses() {
	m.cacheMisses.Inc()
}

// Handler returns the exposition handler of the registry
func (m *prometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IsInterfaceNil returns true if the value under the interface is nil
func (m *prometheusMetrics) IsInterfaceNil() bool {
	return m == nil
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
