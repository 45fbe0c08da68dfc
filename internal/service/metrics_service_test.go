package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/all-reports", http.StatusOK, 20*time.Millisecond)
	m.RecordSubmission("Road")
	m.RecordSubmission("Road")
	m.RecordTransition("submitted", "in-progress")
	m.ObserveUpstream("gemini", errors.New("boom"), time.Second)
	m.RecordExport("FINISHED")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/all-reports", "200")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.submissions.WithLabelValues("Road")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.transitions.WithLabelValues("submitted", "in-progress")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.exportJobsOutcome.WithLabelValues("FINISHED")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.upstreamDuration))
}

func TestMetricsServiceHandlerServesRegistry(t *testing.T) {
	m := NewMetricsService()
	m.RecordSubmission("Water")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `report_submissions_total{tag="Water"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveCacheWrite(time.Millisecond)
	m.RecordSubmission("Road")
	m.RecordTransition("a", "b")
	m.ObserveUpstream("x", nil, time.Millisecond)
	m.RecordExport("FAILED")
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
