package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/statebind/pkg/async"
	"github.com/vango-dev/statebind/pkg/bind"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "statebind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for action duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
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
		Namespace: "statebind",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a bind.Observer that records Prometheus metrics.
type Metrics struct {
	actionsTotal     *prometheus.CounterVec
	actionDuration   *prometheus.HistogramVec
	actionErrors     *prometheus.CounterVec
	rendersTotal     *prometheus.CounterVec
	coalescedChanges *prometheus.CounterVec
	loadableSettled  *prometheus.CounterVec
}

var _ bind.Observer = (*Metrics)(nil)

// Prometheus creates an observer that registers its collectors with the
// configured registry. Registering twice with the same registry panics, so
// create one observer per registry and share it between definitions.
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "actions_total",
			Help:        "Total number of bound actions completed",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "action", "status"}),

		actionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_duration_seconds",
			Help:        "Action duration in seconds, until its changes were flushed",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component", "action"}),

		actionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "action_errors_total",
			Help:        "Total number of failed actions by error type",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "action", "error_type"}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of forced renders by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "reason"}),

		coalescedChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "coalesced_changes_total",
			Help:        "Total number of props written by action flushes",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		loadableSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "loadable_settled_total",
			Help:        "Total number of watched loadables that settled",
			ConstLabels: config.ConstLabels,
		}, []string{"component", "binding", "state"}),
	}
}

// ActionStarted implements bind.Observer.
func (m *Metrics) ActionStarted(ctx context.Context, _, _ string) context.Context {
	return ctx
}

// ActionFinished implements bind.Observer.
func (m *Metrics) ActionFinished(_ context.Context, component, action string, elapsed time.Duration, err error) {
	m.actionDuration.WithLabelValues(component, action).Observe(elapsed.Seconds())

	status := "success"
	if err != nil {
		status = "error"
		m.actionErrors.WithLabelValues(component, action, categorizeError(err)).Inc()
	}
	m.actionsTotal.WithLabelValues(component, action, status).Inc()
}

// Rendered implements bind.Observer.
func (m *Metrics) Rendered(_ context.Context, component, reason string, changes int) {
	m.rendersTotal.WithLabelValues(component, reason).Inc()
	if reason == bind.ReasonFlush {
		m.coalescedChanges.WithLabelValues(component).Add(float64(changes))
	}
}

// LoadableSettled implements bind.Observer.
func (m *Metrics) LoadableSettled(_ context.Context, component, binding string, phase async.Phase) {
	m.loadableSettled.WithLabelValues(component, binding, phase.String()).Inc()
}

// categorizeError returns a category for the error type.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, bind.ErrInvalidState):
		return "invalid_state"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "panicked"):
		return "panic"
	case strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "not found"):
		return "not_found"
	case strings.Contains(msg, "validation"):
		return "validation"
	default:
		return "internal"
	}
}
