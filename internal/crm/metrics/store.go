// Package metrics exposes Prometheus instrumentation for the CRM store.
package metrics

import (
	"errors"
	"time"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess  = "success"
	OutcomeNoop     = "noop"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// StoreMetrics counts and times entity store operations.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
// A nil registerer yields a StoreMetrics that records nothing.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_store_operations_total",
		Help: "Entity store operations by outcome.",
	}, []string{"entity", "operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_store_operation_duration_seconds",
		Help:    "Duration of entity store operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity", "operation"})
	reg.MustRegister(operations, duration)
	return &StoreMetrics{
		operations: operations,
		duration:   duration,
	}
}

// Observe records one operation. Call it with the time the operation
// started and the error it returned.
func (m *StoreMetrics) Observe(entity, operation string, start time.Time, err error) {
	m.ObserveOutcome(entity, operation, start, Outcome(err))
}

// ObserveOutcome records one operation with an explicit outcome label.
func (m *StoreMetrics) ObserveOutcome(entity, operation string, start time.Time, outcome string) {
	if m == nil || m.operations == nil {
		return
	}
	entity = normalizeLabel(entity)
	operation = normalizeLabel(operation)
	m.operations.WithLabelValues(entity, operation, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(entity, operation).Observe(time.Since(start).Seconds())
}

// Outcome classifies an operation error into an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, e.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrInvalidState):
		return OutcomeInvalid
	case errors.Is(err, e.ErrDuplicateEmail):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
