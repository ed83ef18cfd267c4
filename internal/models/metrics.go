package models

import "time"

// ServiceMetrics is a lightweight snapshot of instrumentation counters.
type ServiceMetrics struct {
	MergesSucceeded          uint64    `json:"merges_succeeded"`
	MergesFailed             uint64    `json:"merges_failed"`
	AverageMergeDurationMs   float64   `json:"average_merge_duration_ms"`
	ValidationRuns           uint64    `json:"validation_runs"`
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
