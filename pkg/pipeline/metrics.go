package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures pipeline metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "filerouter").
	Namespace string

	Subsystem   string
	ConstLabels prometheus.Labels

	// Buckets are the stage duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the collectors.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) { c.Namespace = namespace }
}

func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) { c.Subsystem = subsystem }
}

func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) { c.ConstLabels = labels }
}

func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) { c.Buckets = buckets }
}

// WithRegistry registers the collectors on registry instead of the default.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) { c.Registry = registry }
}

// Metrics holds the collectors updated by Compile.
type Metrics struct {
	compiles      *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	routes        prometheus.Gauge
	views         prometheus.Gauge
	menuItems     prometheus.Gauge
	conflicts     prometheus.Counter
	loadErrors    prometheus.Counter
	droppedViews  prometheus.Counter
	duplicates    prometheus.Counter
}

// NewMetrics creates and registers the pipeline collectors. Registering
// twice on the same registry panics, as with promauto.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "filerouter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		compiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "compiles_total",
			Help:        "Route compilations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stage_duration_seconds",
			Help:        "Duration of each compilation stage in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"stage"}),

		routes:       gauge("routes", "Routes in the last merged tree"),
		views:        gauge("views", "Navigable views in the last merged tree"),
		menuItems:    gauge("menu_items", "Entries in the last projected menu"),
		conflicts:    counter("naming_conflicts_total", "Route naming conflicts found while scanning"),
		loadErrors:   counter("load_errors_total", "Route files whose module could not be loaded"),
		droppedViews: counter("dropped_views_total", "Server views dropped for a malformed path"),
		duplicates:   counter("duplicate_routes_total", "Routes claimed more than once during merge"),
	}
}
