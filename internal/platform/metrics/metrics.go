package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SubmissionsProcessed prometheus.Counter
	ExtractionFailures   *prometheus.CounterVec
	FallbackRecords      prometheus.Counter
	ReportsRendered      prometheus.Counter
	CommentsCreated      prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers all metrics on the given registerer. Tests pass a fresh
// registry so suites can construct metrics independently.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SubmissionsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "zoowatch_submissions_processed_total",
			Help: "Total number of submissions that completed intake processing",
		}),
		ExtractionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zoowatch_extraction_failures_total",
			Help: "Total number of extractor failures by category",
		}, []string{"category"}),
		FallbackRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "zoowatch_fallback_records_total",
			Help: "Total number of submissions persisted with fallback observation data",
		}),
		ReportsRendered: factory.NewCounter(prometheus.CounterOpts{
			Name: "zoowatch_reports_rendered_total",
			Help: "Total number of report artifacts rendered, including re-renders",
		}),
		CommentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "zoowatch_comments_created_total",
			Help: "Total number of reviewer comments created",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zoowatch_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// IncrementExtractionFailure records an extractor failure for a category.
func (m *Metrics) IncrementExtractionFailure(category string) {
	m.ExtractionFailures.WithLabelValues(category).Inc()
}
