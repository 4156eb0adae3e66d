package memcache

import "context"

// FetchFunc loads a value on a cache miss.
type FetchFunc func(ctx context.Context) (any, error)

// GetOrFetch returns the cached value for key when present, and otherwise
// invokes fetch, stores the result under key with the given or default TTL,
// and returns it. The boolean reports whether the value came from the
// cache. If fetch fails, the error propagates and nothing is cached.
//
// Concurrent misses for the same sanitized key are collapsed into a single
// fetch; waiters share the fetched value and report it as not cached.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc, opts ...SetOption) (any, bool, error) {
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		return v, true, nil
	}

	v, err, _ = c.flight.Do(sanitizeKey(key), func() (any, error) {
		// A collapsed waiter may arrive after the leader already stored the
		// value; the re-check avoids a redundant fetch.
		if v, ok, err := c.Get(ctx, key); err == nil && ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, v, opts...); err != nil {
			return nil, err
		}
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}
