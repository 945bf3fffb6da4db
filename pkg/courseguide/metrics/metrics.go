// Package metrics holds the Prometheus collectors for the reasoning engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/safaabouhnine/CourseGuideAI/pkg/courseguide/internalerr"
)

// Metrics groups the engine's collectors.
type Metrics struct {
	queries         *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	operations      *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	recommendations prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "courseguide_store_queries_total",
			Help: "Graph store requests by query shape and outcome",
		}, []string{"query", "outcome"}),
		queryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "courseguide_store_query_duration_seconds",
			Help:    "Graph store request latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}, []string{"query"}),
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "courseguide_operations_total",
			Help: "Caller-facing operations by name and outcome",
		}, []string{"operation", "outcome"}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "courseguide_domain_cache_hits_total",
			Help: "Domain lookups served from the reasoner cache",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "courseguide_domain_cache_misses_total",
			Help: "Domain lookups that queried the store",
		}),
		recommendations: f.NewCounter(prometheus.CounterOpts{
			Name: "courseguide_recommendations_total",
			Help: "Recommendations returned to callers",
		}),
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, internalerr.ErrNotFound):
		return "not_found"
	case errors.Is(err, internalerr.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

// ObserveQuery records one store request.
func (m *Metrics) ObserveQuery(name string, d time.Duration, err error) {
	if m == nil {
		return
	}
	if name == "" {
		name = "unnamed"
	}
	m.queries.WithLabelValues(name, outcome(err)).Inc()
	m.queryDuration.WithLabelValues(name).Observe(d.Seconds())
}

// Operation records one caller-facing operation.
func (m *Metrics) Operation(name string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(name, outcome(err)).Inc()
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

// Recommended records n recommendations handed out.
func (m *Metrics) Recommended(n int) {
	if m != nil && n > 0 {
		m.recommendations.Add(float64(n))
	}
}
