package saga

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics instruments a runtime. All methods are nil-receiver safe so the
// runtime can call them unconditionally; a runtime built without
// WithMetrics simply carries a nil *metrics.
type metrics struct {
	sagasStarted    prometheus.Counter
	sagasCompleted  prometheus.Counter
	sagasFailed     prometheus.Counter
	actionsEnqueued prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, queueDepth func() float64) *metrics {
	m := &metrics{
		sagasStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saga_instances_started_total",
			Help: "Saga instances started, root and forked alike.",
		}),
		sagasCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saga_instances_completed_total",
			Help: "Saga instances that terminated normally.",
		}),
		sagasFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saga_instances_failed_total",
			Help: "Saga instances that terminated with an unrecovered error.",
		}),
		actionsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "saga_actions_enqueued_total",
			Help: "Actions enqueued onto the action channel.",
		}),
	}
	depth := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "saga_action_channel_depth",
		Help: "Actions currently waiting on the action channel.",
	}, queueDepth)
	reg.MustRegister(
		m.sagasStarted, m.sagasCompleted, m.sagasFailed, m.actionsEnqueued, depth,
	)
	return m
}

func (m *metrics) sagaStarted() {
	if m != nil {
		m.sagasStarted.Inc()
	}
}

func (m *metrics) sagaFinished(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.sagasFailed.Inc()
	} else {
		m.sagasCompleted.Inc()
	}
}

func (m *metrics) actionEnqueued() {
	if m != nil {
		m.actionsEnqueued.Inc()
	}
}
