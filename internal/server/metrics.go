package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	chatRequests    *prometheus.CounterVec
	logEntries      prometheus.Counter
	relayBroadcasts prometheus.Counter
	relayClients    prometheus.Gauge
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.chatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pulsechat",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Chat completion requests by outcome",
		},
		[]string{"outcome"},
	)
	m.logEntries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsechat",
		Subsystem: "log",
		Name:      "entries_total",
		Help:      "Event log entries accepted",
	})
	m.relayBroadcasts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsechat",
		Subsystem: "relay",
		Name:      "broadcasts_total",
		Help:      "Messages broadcast to relay clients",
	})
	m.relayClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "pulsechat",
		Subsystem: "relay",
		Name:      "clients",
		Help:      "Connected relay clients",
	})

	m.registry.MustRegister(m.chatRequests, m.logEntries, m.relayBroadcasts, m.relayClients)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
