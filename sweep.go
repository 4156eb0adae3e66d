package memcache

import (
	"context"
	"time"
)

// startSweep launches the background goroutine that periodically removes
// expired entries. The goroutine parks on the ticker and the done channel
// only, so it never keeps an otherwise-idle process from exiting, and it
// stops permanently once Close fires.
func (c *Cache) startSweep() {
	c.sweepTicker = time.NewTicker(c.config.SweepInterval)
	c.sweepDone = make(chan struct{})

	go func() {
		for {
			select {
			case <-c.sweepDone:
				return
			case <-c.sweepTicker.C:
				c.sweep()
			}
		}
	}()
}

// sweep runs one expiry cycle: a single scan over live entries, removing
// the expired ones as one batched step under the cache mutex. Failures are
// isolated per cycle; a panicking cycle is logged and never aborts future
// sweeps or propagates to foreground callers.
func (c *Cache) sweep() {
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(ctx, "cache sweep cycle failed", "panic", r)
		}
	}()

	start := time.Now()
	removed, bytesFreed := c.removeAllExpired(start)

	if removed > 0 {
		c.logger.Info(ctx, "cache sweep completed",
			"entries_removed", removed,
			"bytes_freed", bytesFreed,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// removeAllExpired removes every entry past its TTL as one batched step
// under the cache mutex.
func (c *Cache) removeAllExpired(now time.Time) (removed int, bytesFreed int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A tick may already be in flight when Close runs; the closed check
	// keeps it from touching torn-down state.
	if c.closed {
		return 0, 0
	}

	for k, e := range c.entries {
		if e.expiredAt(now) {
			c.removeExpiredLocked(k, e)
			removed++
			bytesFreed += e.sizeBytes
		}
	}
	return removed, bytesFreed
}
