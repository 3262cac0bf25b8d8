package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.StoreWrite(WriteWritten)
		m.StoreLoad(LoadLegacy)
		m.SetQueueDepth(3)
		m.ObserveRequest(http.MethodGet, "/api/tasks", http.StatusOK, time.Millisecond)
	})
}

func TestStoreCounters(t *testing.T) {
	m := New()

	m.StoreWrite(WriteWritten)
	m.StoreWrite(WriteWritten)
	m.StoreWrite(WriteUnchanged)
	m.StoreLoad(LoadLegacy)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeWrites.WithLabelValues(WriteWritten)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeWrites.WithLabelValues(WriteUnchanged)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeLoads.WithLabelValues(LoadLegacy)))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "/api/tasks", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="POST",path="/api/tasks",status="200"} 1`)
}
