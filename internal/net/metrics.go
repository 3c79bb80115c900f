package net

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace   = "collabboard"
	subsystem   = "hub"
	actionLabel = "action"
	reasonLabel = "reason"
)

// Metrics measures the relay.
type Metrics struct {
	registry *prometheus.Registry

	peers    prometheus.Gauge
	relayed  *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	fanedOut prometheus.Counter
}

// NewMetrics creates the relay metrics on their own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	return &Metrics{
		registry: reg,
		peers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "peers",
			Help:      "The number of connected participants.",
		}),
		relayed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "relayed_total",
			Help:      "The total number of relayed transports.",
		}, []string{actionLabel}),
		dropped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dropped_total",
			Help:      "The total number of dropped frames.",
		}, []string{reasonLabel}),
		fanedOut: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fanout_received_total",
			Help:      "The total number of frames received from other hosts.",
		}),
	}
}

// Handler serves the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the registry of the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) setPeers(n int) {
	if m != nil {
		m.peers.Set(float64(n))
	}
}

func (m *Metrics) addRelayed(action string) {
	if m != nil {
		m.relayed.WithLabelValues(action).Inc()
	}
}

func (m *Metrics) addDropped(reason string) {
	if m != nil {
		m.dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) addFanout() {
	if m != nil {
		m.fanedOut.Inc()
	}
}
