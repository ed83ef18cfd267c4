package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/camp-schedule-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	mergeDuration   prometheus.Histogram
	mergeTotal      *prometheus.CounterVec
	findingsTotal   *prometheus.CounterVec
	reconcileQueued prometheus.Counter
	hydrationWaits  *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	mergeSuccessCount    uint64
	mergeFailureCount    uint64
	mergeDurationTotal   uint64
	validationCount      uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	mergeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_merge_duration_seconds",
		Help:    "Duration of version merge runs",
		Buckets: prometheus.DefBuckets,
	})

	mergeTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_merges_total",
		Help: "Version merge runs by outcome",
	}, []string{"outcome"})

	findingsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_validation_findings_total",
		Help: "Validation findings by kind",
	}, []string{"kind"})

	reconcileQueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_reconcile_scheduled_total",
		Help: "Debounced reconcile triggers",
	})

	hydrationWaits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_hydration_waits_total",
		Help: "Hydration waits by result",
	}, []string{"result"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "day_state_cache_hits_total",
		Help: "Total day state cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "day_state_cache_misses_total",
		Help: "Total day state cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, mergeDuration, mergeTotal, findingsTotal, reconcileQueued, hydrationWaits, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		mergeDuration:   mergeDuration,
		mergeTotal:      mergeTotal,
		findingsTotal:   findingsTotal,
		reconcileQueued: reconcileQueued,
		hydrationWaits:  hydrationWaits,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveMerge records the outcome of a merge run.
func (m *MetricsService) ObserveMerge(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if success {
		atomic.AddUint64(&m.mergeSuccessCount, 1)
	} else {
		outcome = "failure"
		atomic.AddUint64(&m.mergeFailureCount, 1)
	}
	m.mergeTotal.WithLabelValues(outcome).Inc()
	m.mergeDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.mergeDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveReport counts findings of a validation run by kind.
func (m *MetricsService) ObserveReport(report models.ConflictReport) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.validationCount, 1)
	for kind, count := range report.CountByKind() {
		m.findingsTotal.WithLabelValues(string(kind)).Add(float64(count))
	}
}

// RecordReconcileScheduled counts debounced triggers.
func (m *MetricsService) RecordReconcileScheduled() {
	if m == nil {
		return
	}
	m.reconcileQueued.Inc()
}

// RecordHydrationWait records whether a hydration wait completed before its timeout.
func (m *MetricsService) RecordHydrationWait(ready bool) {
	if m == nil {
		return
	}
	result := "ready"
	if !ready {
		result = "timeout"
	}
	m.hydrationWaits.WithLabelValues(result).Inc()
}

// RecordCacheOperation records day state cache hits and misses.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// Snapshot returns aggregated metrics suitable for API consumers.
func (m *MetricsService) Snapshot() models.ServiceMetrics {
	if m == nil {
		return models.ServiceMetrics{}
	}
	succeeded := atomic.LoadUint64(&m.mergeSuccessCount)
	failed := atomic.LoadUint64(&m.mergeFailureCount)
	mergeDuration := atomic.LoadUint64(&m.mergeDurationTotal)
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgMergeMs float64
	if merges := succeeded + failed; merges > 0 {
		avgMergeMs = float64(mergeDuration) / float64(merges) / float64(time.Millisecond)
	}
	var cacheRatio float64
	if lookups := hits + misses; lookups > 0 {
		cacheRatio = float64(hits) / float64(lookups)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.ServiceMetrics{
		MergesSucceeded:          succeeded,
		MergesFailed:             failed,
		AverageMergeDurationMs:   avgMergeMs,
		ValidationRuns:           atomic.LoadUint64(&m.validationCount),
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
