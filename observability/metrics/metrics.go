// Package metrics wires program.Dispatch's instruction handling to
// Prometheus collectors, the role the teacher's observability.ModuleMetrics /
// observability.Payoutd registries play for RPC and payout instrumentation:
// a lazily-initialised singleton registry exposing narrow Record* methods.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles the collectors instruction dispatch records against.
type Registry struct {
	instructions *prometheus.CounterVec
	failures     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	loanAmount   *prometheus.HistogramVec
}

var (
	once registry
)

type registry struct {
	sync.Once
	reg *Registry
}

// Default returns the process-wide metrics registry, constructing and
// registering its collectors on first use.
func Default() *Registry {
	once.Do(func() {
		once.reg = &Registry{
			instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftlend",
				Subsystem: "program",
				Name:      "instructions_total",
				Help:      "Total dispatched instructions segmented by tag and outcome.",
			}, []string{"instruction", "outcome"}),
			failures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftlend",
				Subsystem: "program",
				Name:      "instruction_failures_total",
				Help:      "Count of rejected instructions segmented by tag and error kind.",
			}, []string{"instruction", "kind"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "nftlend",
				Subsystem: "program",
				Name:      "instruction_duration_seconds",
				Help:      "Latency distribution for dispatched instructions.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"instruction"}),
			loanAmount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "nftlend",
				Subsystem: "loan",
				Name:      "principal_amount",
				Help:      "Distribution of loan principal amounts accepted into offers.",
				Buckets:   prometheus.ExponentialBuckets(1000, 4, 10),
			}, []string{"collection"}),
		}
		prometheus.MustRegister(
			once.reg.instructions,
			once.reg.failures,
			once.reg.latency,
			once.reg.loanAmount,
		)
	})
	return once.reg
}

// RecordInstruction records the outcome and latency of a dispatched
// instruction.
func (r *Registry) RecordInstruction(instruction string, err error, d time.Duration) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.instructions.WithLabelValues(instruction, outcome).Inc()
	r.latency.WithLabelValues(instruction).Observe(d.Seconds())
}

// RecordFailure increments the failure counter for instruction, segmented by
// the rejecting error's kind string.
func (r *Registry) RecordFailure(instruction, kind string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(instruction, kind).Inc()
}

// RecordLoanAmount observes a loan principal amount for a collection,
// keyed by the collection's first-creator identity string.
func (r *Registry) RecordLoanAmount(collection string, amount uint64) {
	if r == nil {
		return
	}
	r.loanAmount.WithLabelValues(collection).Observe(float64(amount))
}
