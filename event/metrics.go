package event

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	published   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	subscribers prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "artsync",
			Subsystem: "event",
			Name:      "published_total",
			Help:      "Events published on the bus.",
		}, []string{"type"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "artsync",
			Subsystem: "event",
			Name:      "dropped_total",
			Help:      "Events dropped because a subscriber queue was full.",
		}, []string{"type"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "artsync",
			Subsystem: "event",
			Name:      "subscribers",
			Help:      "Active event subscriptions.",
		}),
	}
	reg.MustRegister(m.published, m.dropped, m.subscribers)
	return m
}
