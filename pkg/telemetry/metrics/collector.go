package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled controls whether metrics are recorded.
	Enabled bool

	// Namespace is the metric name prefix.
	// Default: "emotion"
	Namespace string

	// Subsystem is the second metric name component.
	// Default: "api"
	Subsystem string
}

// Collector owns the Prometheus registry and all service metrics.
//
// Metrics:
//   - emotion_api_requests_total{path, status}
//   - emotion_api_request_duration_seconds{path}
//   - emotion_api_sessions_started_total
//   - emotion_api_analyses_total{outcome, emotion}
//   - emotion_api_classifier_latency_seconds
//   - emotion_api_purge_runs_total{status}
//   - emotion_api_purged_records_total
//   - emotion_api_purge_duration_seconds
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	sessionsStarted   prometheus.Counter
	analysesTotal     *prometheus.CounterVec
	classifierLatency prometheus.Histogram
	purgeRuns         *prometheus.CounterVec
	purgedRecords     prometheus.Counter
	purgeDuration     prometheus.Histogram
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is used.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = &Config{Enabled: true}
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "emotion"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "api"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"path", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"path"},
		),

		sessionsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "sessions_started_total",
				Help:      "Total number of sessions started",
			},
		),

		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "analyses_total",
				Help:      "Total number of frame analyses by outcome and dominant emotion",
			},
			[]string{"outcome", "emotion"},
		),

		classifierLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "classifier_latency_seconds",
				Help:      "Latency of external classifier calls in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
		),

		purgeRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "purge_runs_total",
				Help:      "Total number of retention purge runs by status",
			},
			[]string{"status"},
		),

		purgedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "purged_records_total",
				Help:      "Total number of emotion records deleted by the retention purge",
			},
		),

		purgeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "purge_duration_seconds",
				Help:      "Duration of retention purge runs in seconds",
				Buckets:   []float64{0.01, 0.1, 0.5, 1.0, 5.0, 30.0, 60.0},
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.sessionsStarted,
		c.analysesTotal,
		c.classifierLatency,
		c.purgeRuns,
		c.purgedRecords,
		c.purgeDuration,
	)

	return c
}

// RecordHTTPRequest records one completed HTTP request.
func (c *Collector) RecordHTTPRequest(path, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestsTotal.WithLabelValues(path, status).Inc()
	c.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordSessionStarted records one successfully started session.
func (c *Collector) RecordSessionStarted() {
	if !c.config.Enabled {
		return
	}
	c.sessionsStarted.Inc()
}

// RecordAnalysis records the outcome of one frame analysis. For failed
// analyses emotion should be "none".
func (c *Collector) RecordAnalysis(outcome, emotion string) {
	if !c.config.Enabled {
		return
	}
	if emotion == "" {
		emotion = "none"
	}
	c.analysesTotal.WithLabelValues(outcome, emotion).Inc()
}

// ObserveClassifierLatency records the duration of one external classifier
// call. It implements the gateway package's ClassifierObserver interface.
func (c *Collector) ObserveClassifierLatency(d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.classifierLatency.Observe(d.Seconds())
}

// ObservePurge records the outcome of one retention purge run. It
// implements the retention package's PurgeObserver interface.
func (c *Collector) ObservePurge(status string, deleted int64, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.purgeRuns.WithLabelValues(status).Inc()
	c.purgedRecords.Add(float64(deleted))
	c.purgeDuration.Observe(duration.Seconds())
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
