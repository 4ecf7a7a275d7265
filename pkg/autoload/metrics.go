package autoload

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the autoloader metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "autovhost").
	Namespace string

	// Subsystem is the metrics subsystem (default: "autoload").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for bind and scan durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the autoloader metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "autovhost",
		Subsystem: "autoload",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the autoloader's Prometheus collectors.
//
//   - autovhost_autoload_binds_total{status,source}
//   - autovhost_autoload_bind_duration_seconds{status}
//   - autovhost_autoload_scans_total{result}
//   - autovhost_autoload_scan_entries_total{status}
//   - autovhost_autoload_scan_duration_seconds
type Metrics struct {
	bindsTotal   *prometheus.CounterVec
	bindDuration *prometheus.HistogramVec
	scansTotal   *prometheus.CounterVec
	scanEntries  *prometheus.CounterVec
	scanDuration prometheus.Histogram
}

// NewMetrics registers the autoloader collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		bindsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "binds_total",
			Help:        "Total number of domain bind attempts by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status", "source"}),

		bindDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bind_duration_seconds",
			Help:        "Time spent resolving, loading and mounting a domain",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"status"}),

		scansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scans_total",
			Help:        "Total number of directory scans by result",
			ConstLabels: config.ConstLabels,
		}, []string{"result"}),

		scanEntries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scan_entries_total",
			Help:        "Directory entries seen by scans, by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scan_duration_seconds",
			Help:        "Time spent scanning a root folder, all binds included",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func (m *Metrics) observeBind(status, source string, d time.Duration) {
	if m == nil {
		return
	}
	m.bindsTotal.WithLabelValues(status, source).Inc()
	m.bindDuration.WithLabelValues(status).Observe(d.Seconds())
}

func (m *Metrics) observeScan(report *Report, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.scansTotal.WithLabelValues("error").Inc()
		return
	}
	m.scansTotal.WithLabelValues("ok").Inc()
	m.scanDuration.Observe(report.Duration.Seconds())
	for _, o := range report.Outcomes {
		m.scanEntries.WithLabelValues(o.Status.String()).Inc()
	}
}
