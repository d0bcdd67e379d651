// Package metrics exposes Prometheus collectors for position resolution and
// floating element activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/floatkit/pkg/geom"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "floatkit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for compute duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "floatkit",
		// Positioning is sub-millisecond; DefBuckets starts at 5ms.
		Buckets:  prometheus.ExponentialBuckets(0.00001, 4, 10),
		Registry: prometheus.DefaultRegisterer,
	}
}

// Collector records resolver and controller activity. It implements
// position.Observer. A nil *Collector is valid and records nothing.
type Collector struct {
	computes        *prometheus.CounterVec
	computeDuration prometheus.Histogram
	resets          prometheus.Counter
	flips           prometheus.Counter
	transitions     *prometheus.CounterVec
	openFloating    prometheus.Gauge
	watchers        prometheus.Gauge
	sessions        prometheus.Gauge
	messages        *prometheus.CounterVec
}

// New registers the collectors. Registering twice on the same registry
// panics, as with promauto.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		computes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "position_computes_total",
			Help:        "Total number of position computations by resolved placement",
			ConstLabels: config.ConstLabels,
		}, []string{"placement"}),

		computeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "position_compute_duration_seconds",
			Help:        "Time spent in one position computation",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		resets: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "position_resets_total",
			Help:        "Total number of middleware pipeline restarts",
			ConstLabels: config.ConstLabels,
		}),

		flips: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "position_placement_changes_total",
			Help:        "Computations whose resolved placement differs from the requested one",
			ConstLabels: config.ConstLabels,
		}),

		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "open_transitions_total",
			Help:        "Open state transitions by direction and reason",
			ConstLabels: config.ConstLabels,
		}, []string{"open", "reason"}),

		openFloating: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "floating_open",
			Help:        "Number of floating elements currently open",
			ConstLabels: config.ConstLabels,
		}),

		watchers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "autoupdate_watchers",
			Help:        "Number of active scroll/resize watchers",
			ConstLabels: config.ConstLabels,
		}),

		sessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "layout_sessions",
			Help:        "Number of connected layout-sync sessions",
			ConstLabels: config.ConstLabels,
		}),

		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "layout_messages_total",
			Help:        "Layout-sync messages by direction and type",
			ConstLabels: config.ConstLabels,
		}, []string{"direction", "type"}),
	}
}

// ObserveCompute implements position.Observer.
func (c *Collector) ObserveCompute(requested, resolved geom.Placement, resets int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.computes.WithLabelValues(resolved.String()).Inc()
	c.computeDuration.Observe(elapsed.Seconds())
	c.resets.Add(float64(resets))
	if requested != resolved {
		c.flips.Inc()
	}
}

// OpenChanged records an open state transition.
func (c *Collector) OpenChanged(open bool, reason string) {
	if c == nil {
		return
	}
	label := "false"
	if open {
		label = "true"
		c.openFloating.Inc()
	} else {
		c.openFloating.Dec()
	}
	c.transitions.WithLabelValues(label, reason).Inc()
}

// WatcherStarted records an autoupdate watcher being installed.
func (c *Collector) WatcherStarted() {
	if c != nil {
		c.watchers.Inc()
	}
}

// WatcherStopped records an autoupdate watcher being removed.
func (c *Collector) WatcherStopped() {
	if c != nil {
		c.watchers.Dec()
	}
}

// SessionOpened records a layout-sync connection.
func (c *Collector) SessionOpened() {
	if c != nil {
		c.sessions.Inc()
	}
}

// SessionClosed records a layout-sync disconnection.
func (c *Collector) SessionClosed() {
	if c != nil {
		c.sessions.Dec()
	}
}

// Message counts one protocol message. direction is "in" or "out".
func (c *Collector) Message(direction, typ string) {
	if c != nil {
		c.messages.WithLabelValues(direction, typ).Inc()
	}
}
