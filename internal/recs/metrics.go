package recs

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	Rebuilds           atomic.Int64
	RebuildErrors      atomic.Int64
	RecommendRequests  atomic.Int64
	TrendingRequests   atomic.Int64
	InteractionUpdates atomic.Int64
	ModelCalls         atomic.Int64
	ModelErrors        atomic.Int64
}

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"rebuilds":            metrics.Rebuilds.Load(),
		"rebuild_errors":      metrics.RebuildErrors.Load(),
		"recommend_requests":  metrics.RecommendRequests.Load(),
		"trending_requests":   metrics.TrendingRequests.Load(),
		"interaction_updates": metrics.InteractionUpdates.Load(),
		"model_calls":         metrics.ModelCalls.Load(),
		"model_errors":        metrics.ModelErrors.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics renders the counters as "key=value" lines for logs.
func FormatMetrics() string {
	snapshot := GetMetrics()
	keys := []string{
		"rebuilds", "rebuild_errors", "recommend_requests", "trending_requests",
		"interaction_updates", "model_calls", "model_errors", "cache_hits", "cache_misses",
	}
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%d\n", k, snapshot[k])
	}
	return b.String()
}
