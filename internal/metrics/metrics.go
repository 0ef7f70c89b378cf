// Package metrics exposes Prometheus collectors for the compute manager.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cwbudde/sodecl/internal/cl"
)

// Metrics groups the collectors recorded by a compute manager. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	runtimeCalls      *prometheus.CounterVec
	selectionFailures *prometheus.CounterVec
	selections        prometheus.Counter
	liveHandles       *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg when it is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runtimeCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sodecl",
				Subsystem: "runtime",
				Name:      "calls_total",
				Help:      "OpenCL runtime calls by operation and status",
			},
			[]string{"op", "status"},
		),
		selectionFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sodecl",
				Subsystem: "selection",
				Name:      "failures_total",
				Help:      "Rejected device selections by failed check",
			},
			[]string{"check"},
		),
		selections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sodecl",
				Subsystem: "selection",
				Name:      "accepted_total",
				Help:      "Accepted device selections",
			},
		),
		liveHandles: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "sodecl",
				Subsystem: "runtime",
				Name:      "live_handles",
				Help:      "Runtime handles currently held, by kind",
			},
			[]string{"kind"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.runtimeCalls, m.selectionFailures, m.selections, m.liveHandles)
	}
	return m
}

// ObserveCall counts one runtime call.
func (m *Metrics) ObserveCall(op string, status cl.Status) {
	if m == nil {
		return
	}
	m.runtimeCalls.WithLabelValues(op, status.String()).Inc()
}

// SelectionRejected counts a selection that failed check.
func (m *Metrics) SelectionRejected(check string) {
	if m == nil {
		return
	}
	m.selectionFailures.WithLabelValues(check).Inc()
}

// SelectionAccepted counts a successful selection.
func (m *Metrics) SelectionAccepted() {
	if m == nil {
		return
	}
	m.selections.Inc()
}

// Acquired records a new live handle of kind.
func (m *Metrics) Acquired(kind string) {
	if m == nil {
		return
	}
	m.liveHandles.WithLabelValues(kind).Inc()
}

// Released records the release of a handle of kind.
func (m *Metrics) Released(kind string) {
	if m == nil {
		return
	}
	m.liveHandles.WithLabelValues(kind).Dec()
}

// RuntimeCalls exposes the call counter for tests and handlers.
func (m *Metrics) RuntimeCalls() *prometheus.CounterVec { return m.runtimeCalls }

// SelectionFailures exposes the rejection counter.
func (m *Metrics) SelectionFailures() *prometheus.CounterVec { return m.selectionFailures }

// Selections exposes the acceptance counter.
func (m *Metrics) Selections() prometheus.Counter { return m.selections }

// LiveHandles exposes the live handle gauge.
func (m *Metrics) LiveHandles() *prometheus.GaugeVec { return m.liveHandles }
