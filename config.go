package memcache

import (
	"time"

	platformerrors "github.com/jmgilman/go/errors"
)

// Default configuration values applied by Config.SetDefaults.
const (
	DefaultTTL            = 5 * time.Minute
	DefaultMaxEntries     = 10_000
	DefaultMaxMemoryBytes = 64 << 20 // 64 MiB
	DefaultSweepInterval  = time.Minute
)

// MaxValueBytes is the maximum serialized size of a single cache value.
const MaxValueBytes = 10 << 20 // 10 MiB

// Config holds configuration for cache behavior. A Config is copied on
// construction and is immutable for the lifetime of the cache instance.
type Config struct {
	// DefaultTTL is the time-to-live applied to entries stored without an
	// explicit TTL.
	DefaultTTL time.Duration
	// MaxTTL caps per-entry TTLs passed via WithTTL. Zero means no cap.
	MaxTTL time.Duration
	// MaxEntries is the maximum number of live entries.
	MaxEntries int
	// MaxMemoryBytes is the memory budget for all live entries, measured by
	// the configured size estimator. The accounting is approximate.
	MaxMemoryBytes int64
	// SweepInterval is how often the background sweep removes expired
	// entries. A negative value disables the sweep; expired entries are
	// then removed lazily on access only.
	SweepInterval time.Duration
	// StrictValidation surfaces key validation errors on read operations
	// (Get, Has, Delete). When false, reads degrade to safe miss results on
	// invalid input. Set always reports validation failures.
	StrictValidation bool
	// EnableMetrics enables hit/access counting. Size and memory figures in
	// Stats are maintained regardless.
	EnableMetrics bool
}

// Validate checks that the cache configuration is valid.
func (c *Config) Validate() error {
	if c.DefaultTTL <= 0 {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "default TTL must be greater than 0")
	}
	if c.MaxTTL < 0 {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "max TTL cannot be negative")
	}
	if c.MaxTTL > 0 && c.DefaultTTL > c.MaxTTL {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "default TTL exceeds max TTL")
	}
	if c.MaxEntries <= 0 {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "max entries must be greater than 0")
	}
	if c.MaxMemoryBytes <= 0 {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "max memory must be greater than 0")
	}
	return nil
}

// SetDefaults applies default values to unset fields in the configuration.
// A zero SweepInterval defaults to DefaultSweepInterval; pass a negative
// value to disable the background sweep explicitly.
func (c *Config) SetDefaults() {
	if c.DefaultTTL == 0 {
		c.DefaultTTL = DefaultTTL
	}
	if c.MaxEntries == 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.MaxMemoryBytes == 0 {
		c.MaxMemoryBytes = DefaultMaxMemoryBytes
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = DefaultSweepInterval
	}
}
