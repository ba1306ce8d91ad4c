package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceUpstreamSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveUpstream(http.MethodGet, "/api/rooms", "ok", 10*time.Millisecond)
	m.ObserveUpstream(http.MethodGet, "/api/rooms", "transport", 10*time.Millisecond)
	m.ObserveUpstream(http.MethodPost, "/api/generate", "unauthorized", time.Millisecond)

	total, failed := m.UpstreamSnapshot()
	assert.Equal(t, uint64(3), total)
	assert.Equal(t, uint64(2), failed)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveGeneration("success", time.Second, 4)
	m.ObserveHTTPRequest(http.MethodGet, "/dashboard", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `generation_runs_total{result="success"} 1`))
	assert.True(t, strings.Contains(body, "timetable_grids_rendered_total 4"))
	assert.True(t, strings.Contains(body, "console_requests_total"))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveUpstream(http.MethodGet, "/api/rooms", "ok", time.Millisecond)
	m.ObserveGeneration("error", time.Millisecond, 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
