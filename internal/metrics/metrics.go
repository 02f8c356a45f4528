// Package metrics collects compilation statistics in a private prometheus
// registry. A compiler run is a batch job, so the registry is written
// once as a node_exporter textfile instead of being scraped.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the compiler metrics. A nil *Collector discards
// everything, so callers never need to check.
type Collector struct {
	registry   *prometheus.Registry
	rules      *prometheus.CounterVec
	errors     *prometheus.CounterVec
	mismatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	states     *prometheus.HistogramVec
}

// New creates a collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twolc_rules_compiled_total",
				Help: "Rules compiled, by operator",
			},
			[]string{"operator"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twolc_compile_errors_total",
				Help: "Statements that failed to compile, by error kind",
			},
			[]string{"kind"},
		),
		mismatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "twolc_example_mismatches_total",
				Help: "Rules whose example tests failed, by test",
			},
			[]string{"test"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "twolc_rule_compile_seconds",
				Help:    "Time to compile and test one rule",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"operator"},
		),
		states: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "twolc_rule_states",
				Help:    "States of the minimal rule automaton",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"operator"},
		),
	}
	c.registry.MustRegister(c.rules, c.errors, c.mismatches, c.duration, c.states)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RuleCompiled records a successfully compiled rule.
func (c *Collector) RuleCompiled(op string, elapsed time.Duration, states int) {
	if c == nil {
		return
	}
	c.rules.WithLabelValues(op).Inc()
	c.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	c.states.WithLabelValues(op).Observe(float64(states))
}

// CompileFailed records a statement that failed with an error of kind.
func (c *Collector) CompileFailed(kind string) {
	if c == nil {
		return
	}
	c.errors.WithLabelValues(kind).Inc()
}

// ExampleMismatch records a failed positive or negative example test.
func (c *Collector) ExampleMismatch(test string) {
	if c == nil {
		return
	}
	c.mismatches.WithLabelValues(test).Inc()
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
