// Package metrics exports locator registry activity as Prometheus metrics.
package metrics

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/GoCodeAlone/locator"
)

// ObserverID is the ObserverID of observers built by NewObserver.
const ObserverID = "locator.metrics"

// Config configures the metrics observer.
type Config struct {
	// Namespace is the metrics namespace (default: "locator").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the metrics observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
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
		Namespace: "locator",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer counts registry events and tracks the number of live services.
type Observer struct {
	events   *prometheus.CounterVec
	services prometheus.Gauge
}

// NewObserver creates the metrics and registers them with the configured
// registry.
func NewObserver(opts ...Option) (*Observer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	o := &Observer{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "events_total",
			Help:        "Registry events by CloudEvents type.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type"}),
		services: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "services",
			Help:        "Number of services currently registered.",
			ConstLabels: cfg.ConstLabels,
		}),
	}

	for _, c := range []prometheus.Collector{o.events, o.services} {
		if err := cfg.Registry.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Sync sets the services gauge from the current content of l. Use it when
// the observer is attached to a Locator that already holds services.
func (o *Observer) Sync(l *locator.Locator) {
	o.services.Set(float64(l.Len()))
}

func (o *Observer) ObserverID() string {
	return ObserverID
}

func (o *Observer) OnEvent(_ context.Context, event cloudevents.Event) error {
	o.events.WithLabelValues(event.Type()).Inc()

	switch event.Type() {
	case locator.EventTypeServiceRegistered:
		o.services.Inc()
	case locator.EventTypeServiceUnregistered:
		o.services.Dec()
	case locator.EventTypeServiceCleared:
		var data locator.ClearedEventData
		if err := event.DataAs(&data); err != nil {
			return err
		}
		o.services.Sub(float64(data.Count))
	}
	return nil
}
