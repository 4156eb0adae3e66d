package memcache

// Status classifies cache health for consumption by a host application's
// health-check endpoint.
type Status string

const (
	// StatusHealthy indicates the cache is operating within its limits.
	StatusHealthy Status = "healthy"
	// StatusDegraded indicates the cache is near a limit or serving a poor
	// hit rate.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy indicates the cache has reached a hard limit.
	StatusUnhealthy Status = "unhealthy"
)

// Health thresholds. Hit rate is only considered once enough accesses have
// accumulated to be meaningful.
const (
	healthMinAccesses    = 100
	healthLowHitRate     = 0.5
	healthMemoryPressure = 0.9
)

// Health derives a health classification from a stats snapshot. Hard-limit
// saturation (memory budget spent or entry capacity reached) dominates the
// softer pressure and hit-rate signals.
func Health(s Stats) Status {
	if s.MaxMemoryBytes > 0 && s.MemoryUsageBytes >= s.MaxMemoryBytes {
		return StatusUnhealthy
	}
	if s.MaxEntries > 0 && s.Size >= s.MaxEntries {
		return StatusUnhealthy
	}
	if s.MaxMemoryBytes > 0 &&
		float64(s.MemoryUsageBytes)/float64(s.MaxMemoryBytes) > healthMemoryPressure {
		return StatusDegraded
	}
	if s.TotalAccesses > healthMinAccesses && s.HitRate < healthLowHitRate {
		return StatusDegraded
	}
	return StatusHealthy
}
