package memcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a bounded in-process cache with TTL expiration, LRU eviction,
// and approximate memory accounting. It is safe for concurrent use by
// multiple goroutines.
//
// A single mutex guards the entry map, the LRU index, and the memory
// counter together; every public operation executes as one critical section
// so the three structures are never observed out of step. Validation and
// serialization happen before the lock is taken, and no I/O happens while
// it is held.
type Cache struct {
	mu sync.Mutex

	config    Config
	estimator SizeEstimator
	logger    *Logger

	entries     map[string]*entry
	lru         *lruIndex
	memoryBytes int64
	counters    counters

	sweepTicker *time.Ticker
	sweepDone   chan struct{}
	closed      bool

	flight singleflight.Group
}

// New creates a cache with the given configuration. Unset configuration
// fields receive defaults before validation. The background sweep starts
// immediately unless Config.SweepInterval is negative; callers own the
// instance and must Close it during their own shutdown sequence.
func New(cfg Config, opts ...Option) (*Cache, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := cacheOptions{estimator: DefaultSizeEstimator}
	for _, opt := range opts {
		opt(&options)
	}

	c := &Cache{
		config:    cfg,
		estimator: options.estimator,
		logger:    options.logger,
		entries:   make(map[string]*entry),
		lru:       newLRUIndex(),
	}

	if cfg.SweepInterval > 0 {
		c.startSweep()
	}

	return c, nil
}

// Set stores a value under the sanitized form of key, overwriting any prior
// entry under the same sanitized key without double-counting its memory.
// The value is validated and serialized before any state changes, so a
// failed Set leaves the cache exactly as it was. Validation failures are
// always reported, regardless of Config.StrictValidation.
//
// Storing may evict least recently used entries to satisfy the capacity and
// memory limits. A single entry larger than the memory budget on its own is
// admitted after the cache has been emptied rather than rejected.
func (c *Cache) Set(ctx context.Context, key string, value any, opts ...SetOption) error {
	if err := validateKey(key); err != nil {
		return err
	}

	ttl := c.config.DefaultTTL
	var so setOptions
	for _, opt := range opts {
		opt(&so)
	}
	if so.ttl != nil {
		if err := c.validateTTL(*so.ttl); err != nil {
			return err
		}
		ttl = *so.ttl
	}

	data, err := serializeValue(value)
	if err != nil {
		return err
	}

	k := sanitizeKey(key)
	size := c.estimator(data)
	now := time.Now()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	// Retire any prior entry under the same sanitized key first so its
	// footprint is released before capacity is checked.
	var prevHits int64
	if prev, ok := c.entries[k]; ok {
		prevHits = prev.hitCount
		c.memoryBytes -= prev.sizeBytes
		delete(c.entries, k)
		c.lru.remove(k)
	}

	evicted, bytesFreed := c.ensureCapacityLocked(size)

	c.entries[k] = &entry{
		value:          value,
		data:           data,
		createdAt:      now,
		lastAccessedAt: now,
		ttl:            ttl,
		hitCount:       prevHits,
		sizeBytes:      size,
	}
	c.lru.add(k)
	c.memoryBytes += size
	c.mu.Unlock()

	c.logger.logEvictions(ctx, evicted, bytesFreed)
	return nil
}

// Get returns the live value stored under key. Misses, expired entries, and
// operations on a closed cache report (nil, false, nil). A hit updates the
// entry's hit count, last access time, and LRU position. Invalid keys
// return an error only when Config.StrictValidation is set; otherwise they
// degrade to a miss.
func (c *Cache) Get(ctx context.Context, key string) (any, bool, error) {
	if err := validateKey(key); err != nil {
		if c.config.StrictValidation {
			return nil, false, err
		}
		return nil, false, nil
	}

	k := sanitizeKey(key)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, false, nil
	}

	e, ok := c.entries[k]
	if !ok {
		c.recordAccessLocked(false)
		return nil, false, nil
	}
	if e.expiredAt(now) {
		c.removeExpiredLocked(k, e)
		c.recordAccessLocked(false)
		return nil, false, nil
	}

	e.hitCount++
	e.lastAccessedAt = now
	c.lru.touch(k)
	c.recordAccessLocked(true)
	return e.value, true, nil
}

// Has reports whether a live entry exists under key. An expired entry is
// removed as a side effect. Has never counts toward hit statistics and does
// not refresh LRU position.
func (c *Cache) Has(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		if c.config.StrictValidation {
			return false, err
		}
		return false, nil
	}

	k := sanitizeKey(key)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, nil
	}

	e, ok := c.entries[k]
	if !ok {
		return false, nil
	}
	if e.expiredAt(now) {
		c.removeExpiredLocked(k, e)
		return false, nil
	}
	return true, nil
}

// Delete removes the entry under key and reports whether anything was
// removed.
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		if c.config.StrictValidation {
			return false, err
		}
		return false, nil
	}

	k := sanitizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, nil
	}

	e, ok := c.entries[k]
	if !ok {
		return false, nil
	}
	delete(c.entries, k)
	c.lru.remove(k)
	c.memoryBytes -= e.sizeBytes
	return true, nil
}

// Clear drops all entries and resets all counters to zero.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.entries = make(map[string]*entry)
	c.lru.clear()
	c.memoryBytes = 0
	c.counters.reset()
}

// Stats returns a consistent point-in-time snapshot of cache state.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:             len(c.entries),
		MaxEntries:       c.config.MaxEntries,
		MemoryUsageBytes: c.memoryBytes,
		MaxMemoryBytes:   c.config.MaxMemoryBytes,
		ExpiredCount:     c.counters.expirations,
		EvictionCount:    c.counters.evictions,
		TotalHits:        c.counters.hits,
		TotalAccesses:    c.counters.accesses,
	}
	if s.TotalAccesses > 0 {
		s.HitRate = float64(s.TotalHits) / float64(s.TotalAccesses)
	}
	return s
}

// Close stops the background sweep, drops all entries, and marks the cache
// inert. It is idempotent and safe to call concurrently; operations on a
// closed cache are no-ops or safe misses.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if c.sweepTicker != nil {
		c.sweepTicker.Stop()
	}
	if c.sweepDone != nil {
		close(c.sweepDone)
	}

	c.entries = make(map[string]*entry)
	c.lru.clear()
	c.memoryBytes = 0
	return nil
}

// validateTTL checks a per-entry TTL override against the configured cap.
func (c *Cache) validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return invalidTTLError("must be greater than 0")
	}
	if c.config.MaxTTL > 0 && ttl > c.config.MaxTTL {
		return invalidTTLError("exceeds configured maximum")
	}
	return nil
}

// ensureCapacityLocked evicts least recently used entries until the entry
// count is below MaxEntries and the incoming size fits the memory budget.
// It stops as soon as the cache is empty, so a single entry larger than the
// budget is admitted rather than looping forever. The caller must hold the
// mutex and must have already retired any entry being overwritten.
func (c *Cache) ensureCapacityLocked(incoming int64) (evicted []string, bytesFreed int64) {
	for len(c.entries) >= c.config.MaxEntries ||
		c.memoryBytes+incoming > c.config.MaxMemoryBytes {
		k, ok := c.lru.oldest()
		if !ok {
			break
		}
		e := c.entries[k]
		delete(c.entries, k)
		c.lru.remove(k)
		c.memoryBytes -= e.sizeBytes
		c.counters.evictions++
		evicted = append(evicted, k)
		bytesFreed += e.sizeBytes
	}
	return evicted, bytesFreed
}

// removeExpiredLocked removes an entry that was observed past its TTL.
// Expiry removal is accounted separately from LRU eviction. The caller must
// hold the mutex.
func (c *Cache) removeExpiredLocked(key string, e *entry) {
	delete(c.entries, key)
	c.lru.remove(key)
	c.memoryBytes -= e.sizeBytes
	c.counters.expirations++
}

// recordAccessLocked counts a read and, for hits, a success. Counting is
// gated by Config.EnableMetrics. The caller must hold the mutex.
func (c *Cache) recordAccessLocked(hit bool) {
	if !c.config.EnableMetrics {
		return
	}
	c.counters.accesses++
	if hit {
		c.counters.hits++
	}
}
