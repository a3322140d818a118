package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the hub's Prometheus metrics.
type Metrics struct {
	deliveredTotal    *prometheus.CounterVec
	droppedTotal      *prometheus.CounterVec
	connectionsActive prometheus.Gauge
}

// NewMetrics creates and registers the hub metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		deliveredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetops_hub_events_delivered_total",
				Help: "Events delivered to live connections",
			},
			[]string{"type"},
		),
		droppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetops_hub_events_dropped_total",
				Help: "Events dropped instead of delivered",
			},
			[]string{"reason"},
		),
		connectionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "fleetops_hub_connections_active",
				Help: "Currently registered live connections",
			},
		),
	}
}
