package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	var m dto.Metric
	require.NoError(t, (<-ch).Write(&m))
	if m.Counter != nil {
		return m.Counter.GetValue()
	}
	return m.Gauge.GetValue()
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("test")

	m.RecordCycle("published", 2*time.Second)
	m.RecordCycle("stale", time.Second)
	m.RecordSecurityStatus("")
	m.RecordSecurityStatus("insufficient_history")
	m.RecordSecurityStatus("insufficient_history")
	m.RecordWindowSource("stored")
	m.RecordFetchError("security")
	m.UpdateStore(40, 9)
	m.RecordStoreReset("benchmark")
	m.RecordStaleSnapshot()

	assert.Equal(t, 1.0, value(t, m.CyclesTotal.WithLabelValues("published")))
	assert.Equal(t, 1.0, value(t, m.SecurityStatus.WithLabelValues("ok")))
	assert.Equal(t, 2.0, value(t, m.SecurityStatus.WithLabelValues("insufficient_history")))
	assert.Equal(t, 1.0, value(t, m.WindowSource.WithLabelValues("stored")))
	assert.Equal(t, 40.0, value(t, m.AvailableDates))
	assert.Equal(t, 9.0, value(t, m.StoredSecurities))
	assert.Equal(t, 1.0, value(t, m.StaleSnapshots))
	assert.Greater(t, value(t, m.LastSuccessfulCycle), 0.0)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("test")
	m.UpdateStore(3, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_store_available_dates 3"))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordCycle("published", time.Second)
		m.RecordSecurityStatus("ok")
		m.UpdateStore(1, 1)
		m.RecordStoreReset("manual")
	})
}
