package memcache

// SizeEstimator estimates the in-memory footprint of an entry from its
// serialized form. Estimates feed the cache's memory accounting; they are
// approximate by design and never treated as exact byte counts.
type SizeEstimator func(serialized []byte) int64

// structuralOverheadRatio is the assumed per-entry overhead of the live
// (deserialized) representation relative to its serialized length: headers,
// pointers, and allocator slack. The 40% figure is an empirical heuristic.
const structuralOverheadRatio = 0.4

// DefaultSizeEstimator charges the serialized length plus a fixed 40%
// structural overhead, rounded up.
func DefaultSizeEstimator(serialized []byte) int64 {
	n := int64(len(serialized))
	overhead := (n*2 + 4) / 5 // ceil(0.4 * n) in integer arithmetic
	return n + overhead
}
