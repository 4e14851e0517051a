package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics covers the async side-effect pool and its admission gate.
type DispatchMetrics struct {
	tasks      *prometheus.CounterVec
	queueDepth prometheus.Gauge
	gateWait   *prometheus.HistogramVec
	gateBypass *prometheus.CounterVec
}

// Task outcomes recorded by IncTask.
const (
	TaskSubmitted = "submitted"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskDropped   = "dropped"
)

func NewDispatchMetrics(reg prometheus.Registerer) *DispatchMetrics {
	if reg == nil {
		return &DispatchMetrics{}
	}
	tasks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "tasks_total",
		Help:      "Async tasks by name and outcome.",
	}, []string{"task", "outcome"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "queue_depth",
		Help:      "Tasks waiting for a worker.",
	})
	gateWait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "gate_wait_seconds",
		Help:      "Time spent waiting for an admission permit.",
		Buckets:   []float64{.001, .01, .05, .1, .5, 1, 2, 5},
	}, []string{"category"})
	gateBypass := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dispatch",
		Name:      "gate_bypass_total",
		Help:      "Operations run without a permit after the acquire timeout.",
	}, []string{"category"})
	reg.MustRegister(tasks, queueDepth, gateWait, gateBypass)
	return &DispatchMetrics{tasks: tasks, queueDepth: queueDepth, gateWait: gateWait, gateBypass: gateBypass}
}

func (d *DispatchMetrics) IncTask(task, outcome string) {
	if d == nil || d.tasks == nil {
		return
	}
	d.tasks.WithLabelValues(normalizeLabel(task), outcome).Inc()
}

func (d *DispatchMetrics) SetQueueDepth(n int) {
	if d == nil || d.queueDepth == nil {
		return
	}
	d.queueDepth.Set(float64(n))
}

func (d *DispatchMetrics) ObserveGateWait(category string, wait time.Duration) {
	if d == nil || d.gateWait == nil {
		return
	}
	d.gateWait.WithLabelValues(normalizeLabel(category)).Observe(wait.Seconds())
}

func (d *DispatchMetrics) IncGateBypass(category string) {
	if d == nil || d.gateBypass == nil {
		return
	}
	d.gateBypass.WithLabelValues(normalizeLabel(category)).Inc()
}
