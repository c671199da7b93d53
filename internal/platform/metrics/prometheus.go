// Package metrics provides Prometheus metrics for the results sync engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"results_sync/internal/domain"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// Manager owns every collector the sync engine reports to.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	syncPasses      *prometheus.CounterVec
	syncDuration    *prometheus.HistogramVec
	cachedResults   *prometheus.GaugeVec
	bracketFailures prometheus.Counter

	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "results_sync",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.syncPasses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Sync passes by result source and outcome",
		},
		[]string{"source", "outcome"},
	)

	m.syncDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Sync pass duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"source"},
	)

	m.cachedResults = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: "sync",
			Name:      "cached_results",
			Help:      "Results currently held as last known good per event",
		},
		[]string{"event_id"},
	)

	m.bracketFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "sync",
		Name:      "bracket_failures_total",
		Help:      "Brackets skipped because their results could not be fetched",
	})

	m.apiRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "timing_api",
			Name:      "requests_total",
			Help:      "Timing API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	m.apiRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: "timing_api",
			Name:      "request_duration_seconds",
			Help:      "Timing API request latency in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint"},
	)
}

func (m *Manager) ObserveSync(source domain.ResultSource, outcome string, elapsed time.Duration) {
	m.syncPasses.WithLabelValues(string(source), outcome).Inc()
	m.syncDuration.WithLabelValues(string(source)).Observe(elapsed.Seconds())
}

func (m *Manager) SetCachedResults(eventID int64, n int) {
	m.cachedResults.WithLabelValues(strconv.FormatInt(eventID, 10)).Set(float64(n))
}

func (m *Manager) AddBracketFailures(n int) {
	if n > 0 {
		m.bracketFailures.Add(float64(n))
	}
}

func (m *Manager) ObserveAPIRequest(endpoint, outcome string, elapsed time.Duration) {
	m.apiRequests.WithLabelValues(endpoint, outcome).Inc()
	m.apiRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
