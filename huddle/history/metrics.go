package history

import (
	"sort"
	"sync"
	"time"
)

// MetricsCollector collects performance metrics for engine operations
type MetricsCollector struct {
	mu sync.RWMutex

	// disabled turns every Record method into a no-op. Set at construction
	// only.
	disabled bool

	// Counters
	mutationCount int64
	filterCount   int64
	previewCount  int64
	summaryCount  int64

	// Cache effectiveness
	cacheHits   int64
	cacheMisses int64

	// Latency tracking
	filterLatency  []time.Duration
	previewLatency []time.Duration

	// Error tracking
	mutationErrors int64
	previewErrors  int64
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		filterLatency:  make([]time.Duration, 0, 1000),
		previewLatency: make([]time.Duration, 0, 1000),
	}
}

// NewDisabledMetricsCollector creates a collector that records nothing.
// GetSummary always reports zeros.
func NewDisabledMetricsCollector() *MetricsCollector {
	return &MetricsCollector{disabled: true}
}

// RecordMutation records a settings mutation
func (mc *MetricsCollector) RecordMutation(err error) {
	if mc.disabled {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.mutationCount++
	if err != nil {
		mc.mutationErrors++
	}
}

// RecordFilter records a filter evaluation
func (mc *MetricsCollector) RecordFilter(duration time.Duration) {
	if mc.disabled {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.filterCount++
	mc.filterLatency = append(mc.filterLatency, duration)
}

// RecordPreview records an invitation preview generation
func (mc *MetricsCollector) RecordPreview(duration time.Duration, err error) {
	if mc.disabled {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.previewCount++
	mc.previewLatency = append(mc.previewLatency, duration)
	if err != nil {
		mc.previewErrors++
	}
}

// RecordSummary records a history summary scan
func (mc *MetricsCollector) RecordSummary() {
	if mc.disabled {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.summaryCount++
}

// RecordCacheHit records a preview cache hit
func (mc *MetricsCollector) RecordCacheHit() {
	if mc.disabled {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.cacheHits++
}

// RecordCacheMiss records a preview cache miss
func (mc *MetricsCollector) RecordCacheMiss() {
	if mc.disabled {
		return
	}
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.cacheMisses++
}

// GetSummary returns a summary of collected metrics
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	return MetricsSummary{
		MutationCount:  mc.mutationCount,
		FilterCount:    mc.filterCount,
		PreviewCount:   mc.previewCount,
		SummaryCount:   mc.summaryCount,
		CacheHits:      mc.cacheHits,
		CacheMisses:    mc.cacheMisses,
		MutationErrors: mc.mutationErrors,
		PreviewErrors:  mc.previewErrors,
		FilterLatency:  calculatePercentiles(mc.filterLatency),
		PreviewLatency: calculatePercentiles(mc.previewLatency),
	}
}

// Reset clears all collected metrics
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.mutationCount = 0
	mc.filterCount = 0
	mc.previewCount = 0
	mc.summaryCount = 0
	mc.cacheHits = 0
	mc.cacheMisses = 0
	mc.mutationErrors = 0
	mc.previewErrors = 0
	mc.filterLatency = mc.filterLatency[:0]
	mc.previewLatency = mc.previewLatency[:0]
}

// calculatePercentiles calculates p50, p95, p99 latencies
func calculatePercentiles(latencies []time.Duration) LatencyPercentiles {
	if len(latencies) == 0 {
		return LatencyPercentiles{}
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return LatencyPercentiles{
		P50: sorted[len(sorted)*50/100],
		P95: sorted[len(sorted)*95/100],
		P99: sorted[len(sorted)*99/100],
	}
}

// MetricsSummary represents a summary of collected metrics
type MetricsSummary struct {
	MutationCount  int64              `json:"mutation_count"`
	FilterCount    int64              `json:"filter_count"`
	PreviewCount   int64              `json:"preview_count"`
	SummaryCount   int64              `json:"summary_count"`
	CacheHits      int64              `json:"cache_hits"`
	CacheMisses    int64              `json:"cache_misses"`
	MutationErrors int64              `json:"mutation_errors"`
	PreviewErrors  int64              `json:"preview_errors"`
	FilterLatency  LatencyPercentiles `json:"filter_latency"`
	PreviewLatency LatencyPercentiles `json:"preview_latency"`
}

// LatencyPercentiles represents latency percentiles
type LatencyPercentiles struct {
	P50 time.Duration `json:"p50"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}
