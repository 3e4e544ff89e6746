// Package observability provides Prometheus instrumentation for tool
// invocations.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/forno/pkg/domain"
)

// Metrics records invocation counts and durations. It implements the
// registry Observer hook.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors on the given registerer.
// Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forno_tool_invocations_total",
				Help: "Total number of tool invocations",
			},
			[]string{"tool", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "forno_tool_duration_seconds",
				Help: "Duration of tool invocations",
			},
			[]string{"tool"},
		),
	}
	reg.MustRegister(m.invocations, m.duration)
	return m
}

// ObserveInvocation records one completed call.
func (m *Metrics) ObserveInvocation(tool string, result domain.InvocationResult, elapsed time.Duration) {
	outcome := "ok"
	if !result.Ok {
		outcome = string(result.Kind)
	}
	m.invocations.WithLabelValues(tool, outcome).Inc()
	m.duration.WithLabelValues(tool).Observe(elapsed.Seconds())
}
