// Package memcache provides a bounded in-process cache with TTL expiration,
// LRU eviction, and approximate memory accounting.
//
// The cache enforces three limits simultaneously: a maximum entry count, a
// maximum memory budget, and per-entry freshness (TTL). When capacity or
// memory limits are reached, the least recently used entry is evicted first.
// Expired entries are removed lazily on access and proactively by a
// background sweep.
//
// # Overview
//
// The cache is built from a small set of cooperating components:
//
//   - Key sanitization: raw keys are bounds-checked and scrubbed of
//     PII-shaped substrings (emails, IPv4 addresses, long hex digests)
//     before use as lookup keys
//   - Value validation: values must be JSON-serializable; functions,
//     channels, circular references, and values over 10 MiB are rejected
//     before any state changes
//   - Memory accounting: per-entry footprint is estimated from the
//     serialized form plus a documented structural overhead heuristic
//   - Eviction: TTL-based expiry (lazy and swept) plus LRU-based capacity
//     eviction, both performed atomically with the bookkeeping they affect
//
// # Usage
//
// Create a cache with explicit configuration and close it when done:
//
//	c, err := memcache.New(memcache.Config{
//	    DefaultTTL:     5 * time.Minute,
//	    MaxEntries:     10_000,
//	    MaxMemoryBytes: 64 << 20,
//	    SweepInterval:  time.Minute,
//	})
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	if err := c.Set(ctx, "user:42:profile", profile); err != nil {
//	    return err
//	}
//	v, ok, _ := c.Get(ctx, "user:42:profile")
//
// Read-through access with fetch collapsing:
//
//	v, cached, err := c.GetOrFetch(ctx, "user:42:profile", func(ctx context.Context) (any, error) {
//	    return loadProfile(ctx, 42)
//	})
//
// # Thread Safety
//
// A single mutex guards the entry map, the LRU order index, and the memory
// counter together; every public operation and each background sweep cycle
// executes as one critical section, so no caller can observe one of the
// three updated without the others. No I/O happens while the lock is held.
//
// # Error Handling
//
// Validation failures are reported as platform errors from
// github.com/jmgilman/go/errors and are matchable with errors.Is against the
// package sentinels (ErrInvalidKey, ErrInvalidTTL, ErrNotSerializable,
// ErrCircularReference, ErrValueTooLarge). With Config.StrictValidation set,
// read operations also surface these errors; by default reads, probes, and
// deletes degrade to safe miss results while Set always reports the failure.
// Error messages never contain the full offending key or value.
package memcache
