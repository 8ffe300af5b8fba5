package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics records mutation queue activity for a cart engine.
type EngineMetrics struct {
	queueDepth *prometheus.GaugeVec
	mutations  *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	queueDepth := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cart_mutation_queue_depth",
		Help: "Number of mutations waiting in the cart queue.",
	}, []string{"cart"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations processed, by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_mutation_duration_seconds",
		Help:    "Duration of cart mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(queueDepth, mutations, duration)
	return &EngineMetrics{
		queueDepth: queueDepth,
		mutations:  mutations,
		duration:   duration,
	}
}

// SetQueueDepth records the pending task count for the named cart.
func (e *EngineMetrics) SetQueueDepth(cart string, depth int) {
	if e == nil || e.queueDepth == nil {
		return
	}
	e.queueDepth.WithLabelValues(normalizeLabel(cart)).Set(float64(depth))
}

// ObserveMutation records one processed mutation.
func (e *EngineMetrics) ObserveMutation(operation string, err error, took time.Duration) {
	if e == nil || e.mutations == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	e.mutations.WithLabelValues(normalizeLabel(operation), outcome).Inc()
	e.duration.WithLabelValues(normalizeLabel(operation)).Observe(took.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
