package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/aretw0/uiengineer/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "uiengineer"

// Outcome labels.
const (
	OutcomeOK              = "ok"
	OutcomeSchemaViolation = "schema_violation"
	OutcomeOrchestrator    = "orchestrator_error"
	OutcomeNotFound        = "not_found"
	OutcomeCanceled        = "canceled"
	OutcomeError           = "error"
)

// Metrics holds the service collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	generations  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	loweredNodes prometheus.Counter
	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
}

// NewMetrics creates the collectors in a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orchestrations_total",
				Help:      "Total number of generate and update calls by outcome",
			},
			[]string{"op", "outcome"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "orchestration_duration_seconds",
				Help:      "Duration of orchestrator calls",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"op"},
		),
		loweredNodes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lowered_nodes_total",
				Help:      "Total number of IR nodes lowered to FastUI components",
			},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of state store operations by outcome",
			},
			[]string{"op", "outcome"},
		),
		storeLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of state store operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
	m.registry.MustRegister(
		m.generations, m.latency, m.loweredNodes, m.storeOps, m.storeLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, e.g. for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks returns lifecycle hooks that record service events.
// Store events are left to the store middleware, which also sees reads.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	orchestration := func(_ context.Context, e *domain.TreeEvent) {
		op := string(e.Type)
		m.generations.WithLabelValues(op, Outcome(e.Err)).Inc()
		m.latency.WithLabelValues(op).Observe(e.Duration.Seconds())
	}
	return domain.LifecycleHooks{
		OnGenerate: orchestration,
		OnUpdate:   orchestration,
		OnLower: func(_ context.Context, e *domain.TreeEvent) {
			if e.Err == nil {
				m.loweredNodes.Add(float64(e.Nodes))
			}
		},
	}
}

// ObserveStore records one state store operation.
func (m *Metrics) ObserveStore(op string, d time.Duration, err error) {
	m.storeOps.WithLabelValues(op, Outcome(err)).Inc()
	m.storeLatency.WithLabelValues(op).Observe(d.Seconds())
}

// Outcome classifies err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrSchemaViolation):
		return OutcomeSchemaViolation
	case errors.Is(err, domain.ErrOrchestrator):
		return OutcomeOrchestrator
	case errors.Is(err, domain.ErrAppNotFound):
		return OutcomeNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
