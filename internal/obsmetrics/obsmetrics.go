// Package obsmetrics registers the Prometheus gauges and counters the
// orchestrator updates as it drives the stack and pipeline.
package obsmetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every gauge/counter the runtime touches during a handle
// call. Callers register it against their own prometheus.Registerer (or
// the default one) at construction.
type Metrics struct {
	StackDepth        prometheus.Gauge
	PipelineIterations prometheus.Histogram
	EventsDispatched  prometheus.Counter
	BlocksMounted     prometheus.Counter
	BlocksDisposed    prometheus.Counter
	BehaviorErrors    prometheus.Counter
}

// NewMetrics builds and registers a Metrics set on reg. Pass
// prometheus.DefaultRegisterer to publish on the process-default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StackDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wodwiki",
			Subsystem: "runtime",
			Name:      "stack_depth",
			Help:      "Current depth of the block execution stack.",
		}),
		PipelineIterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wodwiki",
			Subsystem: "runtime",
			Name:      "pipeline_iterations",
			Help:      "Number of phase-draining iterations per handle() call.",
			Buckets:   prometheus.LinearBuckets(1, 5, 20),
		}),
		EventsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wodwiki",
			Subsystem: "runtime",
			Name:      "events_dispatched_total",
			Help:      "Total events passed to the event bus.",
		}),
		BlocksMounted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wodwiki",
			Subsystem: "runtime",
			Name:      "blocks_mounted_total",
			Help:      "Total blocks pushed and mounted.",
		}),
		BlocksDisposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wodwiki",
			Subsystem: "runtime",
			Name:      "blocks_disposed_total",
			Help:      "Total blocks popped and disposed.",
		}),
		BehaviorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wodwiki",
			Subsystem: "runtime",
			Name:      "behavior_errors_total",
			Help:      "Total BehaviorError occurrences recorded on the runtime.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.StackDepth,
			m.PipelineIterations,
			m.EventsDispatched,
			m.BlocksMounted,
			m.BlocksDisposed,
			m.BehaviorErrors,
		)
	}
	return m
}
