// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "human_connection"

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	notificationsWritten *prometheus.CounterVec // by reason
	pins                 *prometheus.CounterVec // by outcome
	eventsPublished      *prometheus.CounterVec // by topic and result
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		notificationsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_written_total",
			Help:      "Notification relations created or refreshed",
		}, []string{"reason"}),

		pins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_pins_total",
			Help:      "Pin attempts by outcome (pinned, ignored)",
		}, []string{"outcome"}),

		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Events published on the bus",
		}, []string{"topic", "result"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.notificationsWritten,
		m.pins,
		m.eventsPublished,
	)
	return m
}

func (m *Metrics) NotificationsWritten(reason string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.notificationsWritten.WithLabelValues(reason).Add(float64(n))
}

func (m *Metrics) Pin(pinned bool) {
	if m == nil {
		return
	}
	outcome := "ignored"
	if pinned {
		outcome = "pinned"
	}
	m.pins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) EventPublished(topic string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(topic, result).Inc()
}
