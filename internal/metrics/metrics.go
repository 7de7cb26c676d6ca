// Package metrics exposes the overlay's prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	GateAcquisitions prometheus.Counter
	GateWait         prometheus.Histogram

	Transitions      *prometheus.CounterVec
	WorkerIterations prometheus.Counter
	RepaintEvents    prometheus.Counter

	SessionsActive prometheus.Gauge

	registry *prometheus.Registry
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,

		GateAcquisitions: f.NewCounter(prometheus.CounterOpts{
			Name: "hud_gate_acquisitions_total",
			Help: "Total number of gate acquisitions by callers",
		}),
		GateWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hud_gate_wait_seconds",
			Help:    "Time callers waited for the worker to hand over the gate",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hud_transitions_total",
			Help: "Visibility transitions performed by the worker",
		}, []string{"direction"}),
		WorkerIterations: f.NewCounter(prometheus.CounterOpts{
			Name: "hud_worker_iterations_total",
			Help: "Worker loop iterations",
		}),
		RepaintEvents: f.NewCounter(prometheus.CounterOpts{
			Name: "hud_repaint_events_total",
			Help: "Repaint events copied to the surface",
		}),
		SessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "hud_sessions_active",
			Help: "Number of live overlay sessions",
		}),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveGateWait(d time.Duration) {
	if m == nil {
		return
	}
	m.GateAcquisitions.Inc()
	m.GateWait.Observe(d.Seconds())
}

// RecordTransition counts a show (shown == true) or hide.
func (m *Metrics) RecordTransition(shown bool) {
	if m == nil {
		return
	}
	dir := "hide"
	if shown {
		dir = "show"
	}
	m.Transitions.WithLabelValues(dir).Inc()
}

func (m *Metrics) RecordIteration() {
	if m == nil {
		return
	}
	m.WorkerIterations.Inc()
}

func (m *Metrics) RecordRepaint() {
	if m == nil {
		return
	}
	m.RepaintEvents.Inc()
}

// SessionOpened and SessionClosed track live sessions.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SessionsActive.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SessionsActive.Dec()
}
