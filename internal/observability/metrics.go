// Package observability implements the engine's Observer port twice over: a
// Prometheus metrics collector and an in-memory resolution tracer, plus a
// fanout to run both at once.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/espalier/pkg/ports"
)

// Metrics counts dispatch outcomes and layout resolution steps.
type Metrics struct {
	dispatches  *prometheus.CounterVec
	resolutions *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors. Pass nil to register on
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "dispatches_total",
			Help:      "Intents dispatched, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "espalier",
			Name:      "layout_resolution_steps_total",
			Help:      "Layout resolution steps, by stage and rule.",
		}, []string{"stage", "rule"}),
	}
	reg.MustRegister(m.dispatches, m.resolutions)
	return m
}

// OnDispatch implements ports.Observer.
func (m *Metrics) OnDispatch(kind, outcome string) {
	m.dispatches.WithLabelValues(kind, outcome).Inc()
}

// OnResolution implements ports.Observer.
func (m *Metrics) OnResolution(step ports.ResolutionStep) {
	m.resolutions.WithLabelValues(step.Stage, step.Rule).Inc()
}
