// Package metrics provides Prometheus metrics collection for Subwave.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the subscription engine.
type Collector struct {
	// Lifecycle metrics
	Subscribes    *prometheus.CounterVec
	Renewals      *prometheus.CounterVec
	Upgrades      *prometheus.CounterVec
	Cancellations *prometheus.CounterVec
	Expirations   *prometheus.CounterVec

	// Usage metrics
	UsageSamples *prometheus.CounterVec
	UsageGB      *prometheus.CounterVec

	// Catalog metrics
	CatalogPlans prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a new metrics collector registered on the default registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Subscribes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "subscribes_total",
				Help:      "Total number of new subscriptions",
			},
			[]string{"plan"},
		),
		Renewals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "renewals_total",
				Help:      "Total number of subscription renewals",
			},
			[]string{"plan"},
		),
		Upgrades: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "upgrades_total",
				Help:      "Total number of plan upgrades",
			},
			[]string{"from_plan", "to_plan"},
		),
		Cancellations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "cancellations_total",
				Help:      "Total number of subscription cancellations",
			},
			[]string{"plan"},
		),
		Expirations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "expirations_total",
				Help:      "Total number of subscriptions flipped to expired by sweeps",
			},
			[]string{"plan"},
		),

		UsageSamples: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "usage_samples_total",
				Help:      "Total number of daily usage samples recorded",
			},
			[]string{"account"},
		),
		UsageGB: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "usage_gb_total",
				Help:      "Total gigabytes of recorded usage",
			},
			[]string{"account"},
		),

		CatalogPlans: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "subwave",
				Name:      "catalog_plans",
				Help:      "Number of plans currently in the catalog",
			},
		),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "subwave",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path", "status"},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "config_reloads_total",
				Help:      "Total number of config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "subwave",
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
	}
}
