package eventbusmetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements EventBusMetrics on a prometheus registry.
type PrometheusMetrics struct {
	published     *prometheus.CounterVec
	received      *prometheus.CounterVec
	publishErrors *prometheus.CounterVec
}

var _ EventBusMetrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the event bus collectors on the given
// registry.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	m := &PrometheusMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventbus_messages_published_total",
			Help: "Messages published, by topic.",
		}, []string{"topic"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventbus_messages_received_total",
			Help: "Messages received, by topic.",
		}, []string{"topic"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventbus_publish_errors_total",
			Help: "Publish failures, by topic.",
		}, []string{"topic"}),
	}
	registry.MustRegister(m.published, m.received, m.publishErrors)
	return m
}

func (m *PrometheusMetrics) RecordMessagePublished(_ context.Context, topic string) {
	m.published.WithLabelValues(topic).Inc()
}

func (m *PrometheusMetrics) RecordMessageReceived(_ context.Context, topic string) {
	m.received.WithLabelValues(topic).Inc()
}

func (m *PrometheusMetrics) RecordPublishError(_ context.Context, topic string) {
	m.publishErrors.WithLabelValues(topic).Inc()
}
