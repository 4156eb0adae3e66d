package memcache

import "time"

// Option configures a Cache at construction time.
type Option func(*cacheOptions)

type cacheOptions struct {
	logger    *Logger
	estimator SizeEstimator
}

// WithLogger sets the logger used for eviction and sweep events. Without
// this option the cache logs nothing.
//
// Example:
//
//	c, _ := memcache.New(cfg, memcache.WithLogger(memcache.NewLogger(memcache.LogConfig{})))
func WithLogger(logger *Logger) Option {
	return func(opts *cacheOptions) {
		opts.logger = logger
	}
}

// WithEstimator replaces the default memory estimator. Estimates remain
// approximate; swapping the estimator only changes how the memory budget is
// charged.
//
// Example:
//
//	c, _ := memcache.New(cfg, memcache.WithEstimator(func(b []byte) int64 {
//	    return int64(len(b))
//	}))
func WithEstimator(estimator SizeEstimator) Option {
	return func(opts *cacheOptions) {
		opts.estimator = estimator
	}
}

// SetOption configures a single Set or GetOrFetch operation.
type SetOption func(*setOptions)

type setOptions struct {
	ttl *time.Duration
}

// WithTTL overrides the configured default TTL for one entry. The TTL must
// be positive and, when Config.MaxTTL is set, no greater than it.
//
// Example:
//
//	err := c.Set(ctx, key, value, memcache.WithTTL(30*time.Second))
func WithTTL(ttl time.Duration) SetOption {
	return func(opts *setOptions) {
		opts.ttl = &ttl
	}
}
