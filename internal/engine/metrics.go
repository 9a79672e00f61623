package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/nucleus/internal/action"
)

// Metrics holds the engine's Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	dispatched     *prometheus.CounterVec
	applied        *prometheus.CounterVec
	queueDepth     prometheus.Gauge
	reduceDuration prometheus.Histogram
	poolRejected   prometheus.Counter
	poolInFlight   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// Panics if a collector with the same name is already registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		dispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nucleus_actions_dispatched_total",
				Help: "Total number of actions dispatched, by kind",
			},
			[]string{"kind"},
		),
		applied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nucleus_actions_applied_total",
				Help: "Total number of actions reduced into state, by kind",
			},
			[]string{"kind"},
		),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nucleus_action_queue_depth",
			Help: "Number of dispatched actions not yet reduced",
		}),
		reduceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nucleus_reduce_duration_seconds",
			Help:    "Time spent reducing a single action",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
		}),
		poolRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nucleus_worker_pool_rejected_total",
			Help: "Jobs refused because the worker pool was at capacity",
		}),
		poolInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nucleus_worker_pool_in_flight",
			Help: "Jobs currently running on the worker pool",
		}),
	}
	reg.MustRegister(m.dispatched, m.applied, m.queueDepth, m.reduceDuration, m.poolRejected, m.poolInFlight)
	return m
}

func (m *Metrics) observeDispatch(kind action.Kind, depth int) {
	if m == nil {
		return
	}
	m.dispatched.WithLabelValues(string(kind)).Inc()
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) observeApply(kind action.Kind, took time.Duration, depth int) {
	if m == nil {
		return
	}
	m.applied.WithLabelValues(string(kind)).Inc()
	m.reduceDuration.Observe(took.Seconds())
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) poolStarted() {
	if m == nil {
		return
	}
	m.poolInFlight.Inc()
}

func (m *Metrics) poolFinished() {
	if m == nil {
		return
	}
	m.poolInFlight.Dec()
}

func (m *Metrics) poolRejectedJob() {
	if m == nil {
		return
	}
	m.poolRejected.Inc()
}
