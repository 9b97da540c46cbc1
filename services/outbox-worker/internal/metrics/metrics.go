package metrics

import "github.com/prometheus/client_golang/prometheus"

type Outbox struct {
	Sent          prometheus.Counter
	PublishErrors prometheus.Counter
	Dropped       prometheus.Counter
	Pending       prometheus.Gauge
}

func New(reg prometheus.Registerer) *Outbox {
	m := &Outbox{
		Sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbox_sent_total",
			Help: "Total outbox events successfully published",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbox_publish_errors_total",
			Help: "Total outbox publish errors",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "outbox_dropped_total",
			Help: "Outbox events given up on after max attempts",
		}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outbox_pending",
			Help: "Number of pending outbox events",
		}),
	}
	reg.MustRegister(m.Sent, m.PublishErrors, m.Dropped, m.Pending)
	return m
}
