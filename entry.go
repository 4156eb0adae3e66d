package memcache

import "time"

// entry is a single live cache entry. Entries are owned exclusively by the
// Cache and are only read or mutated while the cache mutex is held.
type entry struct {
	// value is the original value as stored, returned verbatim on hits.
	value any
	// data is the canonical serialized form produced during validation.
	// It is retained as the basis of the entry's size accounting.
	data []byte
	// createdAt anchors TTL expiry. Overwrites reset it.
	createdAt time.Time
	// lastAccessedAt mirrors the entry's LRU position.
	lastAccessedAt time.Time
	// ttl is the entry's time-to-live, always positive.
	ttl time.Duration
	// hitCount is the number of successful reads, surviving overwrites.
	hitCount int64
	// sizeBytes is the estimated footprint charged against the memory
	// budget.
	sizeBytes int64
}

// expiredAt reports whether the entry has exceeded its TTL at the given
// instant.
func (e *entry) expiredAt(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}
