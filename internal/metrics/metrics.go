// Package metrics declares the Prometheus collectors of the service. They are
// registered with the default registry and served by promhttp at /metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/phrazzld/deckmind/internal/generation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "deckmind"

var (
	// HTTPRequestDuration measures request latency.
	// Labels: route (chi route pattern), method, status
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})

	// GenerativeCalls counts calls to generative services.
	// Labels: provider (gemini, groq), outcome
	GenerativeCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "generative",
		Name:      "calls_total",
		Help:      "Generative service calls by provider and outcome",
	}, []string{"provider", "outcome"})

	// GenerativeLatency measures generative call latency including retries.
	// Labels: provider
	GenerativeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "generative",
		Name:      "latency_seconds",
		Help:      "Generative service call latency in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"provider"})

	// TaskExecutions counts background task runs.
	// Labels: type, outcome (success, error)
	TaskExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "task",
		Name:      "executions_total",
		Help:      "Background task executions by type and outcome",
	}, []string{"type", "outcome"})

	// TaskQueueDepth is the number of tasks waiting for a worker.
	TaskQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "task",
		Name:      "queue_depth",
		Help:      "Tasks waiting for a worker",
	})

	// RateLimited counts requests rejected by the per-user rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per-user rate limiter",
	})
)

// Generative call outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport"
	OutcomeTransient = "transient"
	OutcomeRejected  = "rejected"
	OutcomeBlocked   = "blocked"
	OutcomeEmpty     = "empty"
	OutcomeError     = "error"
)

// GenerativeOutcome classifies a gateway result for the outcome label.
func GenerativeOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, generation.ErrContentBlocked):
		return OutcomeBlocked
	case errors.Is(err, generation.ErrEmptyResponse):
		return OutcomeEmpty
	case errors.Is(err, generation.ErrRequestRejected):
		return OutcomeRejected
	case errors.Is(err, generation.ErrTransientFailure):
		return OutcomeTransient
	case errors.Is(err, generation.ErrTransport):
		return OutcomeTransport
	default:
		return OutcomeError
	}
}

// ObserveGenerativeCall records one gateway call that started at start.
func ObserveGenerativeCall(provider string, start time.Time, err error) {
	GenerativeCalls.WithLabelValues(provider, GenerativeOutcome(err)).Inc()
	GenerativeLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}

// ObserveTask records one background task run.
func ObserveTask(taskType string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	TaskExecutions.WithLabelValues(taskType, outcome).Inc()
}
