package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the certification registry.
type Metrics struct {
	// Registry operations by operation and outcome
	OperationsTotal *prometheus.CounterVec

	// Registry operation latencies
	OperationDuration *prometheus.HistogramVec

	// Certifications entering each lifecycle status
	StatusTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all registry metrics registered.
// It registers on the default registerer, so call it at most once per
// process; a nil *Metrics disables recording.
func New() *Metrics {
	return &Metrics{
		OperationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cropcert_registry_operations_total",
			Help: "Total registry operations by operation and outcome",
		}, []string{"operation", "outcome"}), // outcome: "success", "error"

		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cropcert_registry_operation_duration_seconds",
			Help:    "Duration of registry operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),

		StatusTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cropcert_certifications_status_total",
			Help: "Total certifications entering each lifecycle status",
		}, []string{"status"}),
	}
}

// RecordOperation records the outcome of a registry operation.
func (m *Metrics) RecordOperation(operation, outcome string) {
	if m != nil {
		m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	}
}

// ObserveOperationDuration records the duration of a registry operation.
func (m *Metrics) ObserveOperationDuration(operation string, d time.Duration) {
	if m != nil {
		m.OperationDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// RecordStatusEntered records a certification entering a lifecycle status.
func (m *Metrics) RecordStatusEntered(status string) {
	if m != nil {
		m.StatusTotal.WithLabelValues(status).Inc()
	}
}
