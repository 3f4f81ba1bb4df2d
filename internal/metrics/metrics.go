// Package metrics records batch ranking metrics on a dedicated Prometheus
// registry and writes them in the text exposition format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source kinds used as the kind label.
const (
	KindJob     = "job"
	KindFile    = "file"
	KindDataset = "dataset"
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

// WithDurationBuckets sets custom histogram buckets for extraction durations.
func WithDurationBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.durationBuckets = buckets
		}
	}
}

// Manager owns the registry and every metric. A nil *Manager records nothing.
type Manager struct {
	namespace       string
	durationBuckets []float64
	registry        *prometheus.Registry

	sourcesProcessed   *prometheus.CounterVec
	sourcesFailed      *prometheus.CounterVec
	candidatesRanked   prometheus.Counter
	fitScore           prometheus.Histogram
	extractionDuration *prometheus.HistogramVec
}

// NewManager creates a Manager with its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "resume_matcher",
		durationBuckets: prometheus.DefBuckets,
		registry:        prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.sourcesProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sources_processed_total",
		Help:      "Number of job and resume sources turned into profiles.",
	}, []string{"kind"})
	m.sourcesFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "sources_failed_total",
		Help:      "Number of sources that could not be turned into profiles.",
	}, []string{"kind", "error"})
	m.candidatesRanked = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "candidates_ranked_total",
		Help:      "Number of candidates returned in rankings.",
	})
	m.fitScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "fit_score",
		Help:      "Distribution of fit scores (0-100) of ranked candidates.",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})
	m.extractionDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "extraction_duration_seconds",
		Help:      "Time spent turning one source into a profile.",
		Buckets:   m.durationBuckets,
	}, []string{"kind"})

	return m
}

// Registry returns the registry holding every metric.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// SourceProcessed records a successful source of the given kind.
func (m *Manager) SourceProcessed(kind string, took time.Duration) {
	if m == nil {
		return
	}
	m.sourcesProcessed.WithLabelValues(kind).Inc()
	m.extractionDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// SourceFailed records a failed source. errKind is a short error class such
// as "extraction" or "configuration".
func (m *Manager) SourceFailed(kind, errKind string) {
	if m == nil {
		return
	}
	if errKind == "" {
		errKind = "other"
	}
	m.sourcesFailed.WithLabelValues(kind, errKind).Inc()
}

// Ranked records the fit scores of a returned ranking.
func (m *Manager) Ranked(scores ...float64) {
	if m == nil {
		return
	}
	m.candidatesRanked.Add(float64(len(scores)))
	for _, s := range scores {
		m.fitScore.Observe(s)
	}
}

// WriteTextfile writes every metric to path in the Prometheus text format, in
// the layout expected by the node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", path, err)
	}
	return nil
}
