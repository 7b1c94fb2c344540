package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// New registers on the default registerer, so it runs once for the
	// whole test binary
	m := New()

	t.Run("RecordOperation increments the counter", func(t *testing.T) {
		m.RecordOperation("issue", "success")
		m.RecordOperation("issue", "success")
		m.RecordOperation("issue", "error")

		assert.Equal(t, float64(2), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("issue", "success")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.OperationsTotal.WithLabelValues("issue", "error")))
	})

	t.Run("RecordStatusEntered increments the status counter", func(t *testing.T) {
		m.RecordStatusEntered("pending")
		m.RecordStatusEntered("active")
		m.RecordStatusEntered("pending")

		assert.Equal(t, float64(2), testutil.ToFloat64(m.StatusTotal.WithLabelValues("pending")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.StatusTotal.WithLabelValues("active")))
	})

	t.Run("ObserveOperationDuration records samples", func(t *testing.T) {
		m.ObserveOperationDuration("approve", 25*time.Millisecond)
		m.ObserveOperationDuration("approve", 50*time.Millisecond)

		assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))
	})
}

func TestMetricsNil(t *testing.T) {
	t.Run("Nil metrics are safe to use", func(t *testing.T) {
		var m *Metrics
		m.RecordOperation("issue", "success")
		m.ObserveOperationDuration("issue", time.Millisecond)
		m.RecordStatusEntered("pending")
	})
}
