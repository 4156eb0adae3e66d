package memcache

// counters accumulates cache activity. All fields are guarded by the cache
// mutex; hit and access counting is additionally gated by
// Config.EnableMetrics.
type counters struct {
	hits        int64
	accesses    int64
	expirations int64
	evictions   int64
}

func (m *counters) reset() {
	*m = counters{}
}

// Stats is a point-in-time snapshot of cache state and accumulated
// counters.
type Stats struct {
	// Size is the number of live entries.
	Size int `json:"size"`
	// MaxEntries is the configured entry capacity.
	MaxEntries int `json:"max_entries"`
	// MemoryUsageBytes is the estimated footprint of all live entries.
	MemoryUsageBytes int64 `json:"memory_usage_bytes"`
	// MaxMemoryBytes is the configured memory budget.
	MaxMemoryBytes int64 `json:"max_memory_bytes"`
	// ExpiredCount is the number of entries removed by TTL expiry, lazy or
	// swept.
	ExpiredCount int64 `json:"expired_count"`
	// EvictionCount is the number of entries evicted to satisfy capacity or
	// memory limits.
	EvictionCount int64 `json:"eviction_count"`
	// TotalHits is the number of successful reads.
	TotalHits int64 `json:"total_hits"`
	// TotalAccesses is the number of reads, successful or not.
	TotalAccesses int64 `json:"total_accesses"`
	// HitRate is TotalHits over TotalAccesses, 0 when there have been no
	// accesses.
	HitRate float64 `json:"hit_rate"`
}
