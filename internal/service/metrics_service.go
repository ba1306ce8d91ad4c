package service

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for upstream calls,
// console requests and generation runs.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	upstreamDuration *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	generations      *prometheus.CounterVec
	generationTime   prometheus.Histogram
	gridsRendered    prometheus.Counter

	upstreamCount   uint64
	upstreamFailure uint64
}

// NewMetricsService registers the console collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of calls to the timetable backend in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "outcome"})

	upstreamTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Total number of calls to the timetable backend",
	}, []string{"method", "route", "outcome"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_request_duration_seconds",
		Help:    "Duration of web console requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_requests_total",
		Help: "Total number of web console requests",
	}, []string{"method", "path", "status"})

	generations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_runs_total",
		Help: "Generation triggers by result",
	}, []string{"result"})

	generationTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "generation_duration_seconds",
		Help:    "Wall time of generation requests",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	gridsRendered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_grids_rendered_total",
		Help: "Batch grids produced by the result pivot",
	})

	registry.MustRegister(upstreamDuration, upstreamTotal, requestDuration, requestTotal, generations, generationTime, gridsRendered)

	return &MetricsService{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		upstreamDuration: upstreamDuration,
		upstreamTotal:    upstreamTotal,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		generations:      generations,
		generationTime:   generationTime,
		gridsRendered:    gridsRendered,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveUpstream records one call to the timetable backend.
func (m *MetricsService) ObserveUpstream(method, route, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(method, route, outcome).Observe(duration.Seconds())
	m.upstreamTotal.WithLabelValues(method, route, outcome).Inc()
	atomic.AddUint64(&m.upstreamCount, 1)
	if outcome != "ok" {
		atomic.AddUint64(&m.upstreamFailure, 1)
	}
}

// ObserveHTTPRequest records one web console request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveGeneration records how a generation trigger ended.
func (m *MetricsService) ObserveGeneration(result string, duration time.Duration, grids int) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(result).Inc()
	m.generationTime.Observe(duration.Seconds())
	if grids > 0 {
		m.gridsRendered.Add(float64(grids))
	}
}

// UpstreamSnapshot returns total and failed upstream call counts.
func (m *MetricsService) UpstreamSnapshot() (total, failed uint64) {
	if m == nil {
		return 0, 0
	}
	return atomic.LoadUint64(&m.upstreamCount), atomic.LoadUint64(&m.upstreamFailure)
}
