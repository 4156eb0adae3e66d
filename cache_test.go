package memcache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a configuration suitable for unit tests: no background
// sweep, metrics enabled, generous limits.
func testConfig() Config {
	return Config{
		DefaultTTL:     time.Minute,
		MaxEntries:     100,
		MaxMemoryBytes: 1 << 20,
		SweepInterval:  -1,
		EnableMetrics:  true,
	}
}

func newTestCache(t *testing.T, cfg Config, opts ...Option) *Cache {
	t.Helper()
	c, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// entrySize returns the memory charge an entry for value carries under the
// default estimator.
func entrySize(t *testing.T, value any) int64 {
	t.Helper()
	data, err := serializeValue(value)
	require.NoError(t, err)
	return DefaultSizeEstimator(data)
}

func TestNew_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg:  testConfig(),
		},
		{
			name: "zero config gets defaults",
			cfg:  Config{SweepInterval: -1},
		},
		{
			name:    "negative default TTL",
			cfg:     Config{DefaultTTL: -time.Second},
			wantErr: true,
		},
		{
			name:    "negative max entries",
			cfg:     Config{MaxEntries: -1},
			wantErr: true,
		},
		{
			name:    "negative max memory",
			cfg:     Config{MaxMemoryBytes: -1},
			wantErr: true,
		},
		{
			name:    "default TTL over max TTL",
			cfg:     Config{DefaultTTL: time.Hour, MaxTTL: time.Minute},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			_ = c.Close()
		})
	}
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	value := map[string]any{
		"id":     42,
		"name":   "alice",
		"scopes": []string{"read", "write"},
	}
	require.NoError(t, c.Set(ctx, "user:42", value))

	got, ok, err := c.Get(ctx, "user:42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, value, got)
}

func TestCache_GetMiss(t *testing.T) {
	c := newTestCache(t, testConfig())

	got, ok, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalAccesses)
}

func TestCache_KeyAliasing(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	// Raw keys that sanitize identically address the same entry.
	require.NoError(t, c.Set(ctx, "user alice@example.com", 1))
	require.NoError(t, c.Set(ctx, "user bob@example.org", 2))

	got, ok, err := c.Get(ctx, "user carol@mail.net")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Stats().Size)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", WithTTL(100*time.Millisecond)))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", got)
	assert.Equal(t, 1, c.Stats().Size)

	time.Sleep(150 * time.Millisecond)

	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, int64(1), stats.ExpiredCount)
	assert.Equal(t, int64(0), stats.MemoryUsageBytes)
}

func TestCache_LRUEviction(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEntries = 2
	c := newTestCache(t, cfg)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1))
	require.NoError(t, c.Set(ctx, "b", 2))

	// Touch a so b becomes the eviction candidate.
	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.Set(ctx, "c", 3))

	hasA, err := c.Has(ctx, "a")
	require.NoError(t, err)
	hasB, err := c.Has(ctx, "b")
	require.NoError(t, err)
	hasC, err := c.Has(ctx, "c")
	require.NoError(t, err)

	assert.True(t, hasA)
	assert.False(t, hasB)
	assert.True(t, hasC)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(1), stats.EvictionCount)
}

func TestCache_MemoryEviction(t *testing.T) {
	payload := strings.Repeat("x", 1000)
	perEntry := entrySize(t, payload)

	cfg := testConfig()
	cfg.MaxMemoryBytes = perEntry*3 + 1 // room for three entries, not four
	c := newTestCache(t, cfg)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), payload))
	}

	stats := c.Stats()
	assert.Equal(t, 3, stats.Size)
	assert.LessOrEqual(t, stats.MemoryUsageBytes, cfg.MaxMemoryBytes)
	assert.Equal(t, int64(1), stats.EvictionCount)

	// The oldest entry went first.
	hasFirst, err := c.Has(ctx, "k0")
	require.NoError(t, err)
	assert.False(t, hasFirst)
}

// A single entry that exceeds the memory budget on its own empties the
// cache and is admitted anyway instead of evicting forever.
func TestCache_OversizedEntryAdmitted(t *testing.T) {
	small := "s"
	big := strings.Repeat("x", 4000)

	cfg := testConfig()
	cfg.MaxMemoryBytes = entrySize(t, big) - 1
	c := newTestCache(t, cfg)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "small", small))
	require.NoError(t, c.Set(ctx, "big", big))

	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)

	got, ok, err := c.Get(ctx, "big")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big, got)
}

func TestCache_OverwriteDoesNotDoubleCount(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	bigValue := strings.Repeat("a", 2000)
	smallValue := "tiny"

	require.NoError(t, c.Set(ctx, "k", bigValue))
	assert.Equal(t, entrySize(t, bigValue), c.Stats().MemoryUsageBytes)

	require.NoError(t, c.Set(ctx, "k", smallValue))

	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, entrySize(t, smallValue), stats.MemoryUsageBytes)
}

// The memory counter always equals the sum of live entry sizes, after any
// mix of sets, overwrites, deletes, and expirations.
func TestCache_MemoryAccountingInvariant(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	values := map[string]any{
		"a": "short",
		"b": strings.Repeat("b", 500),
		"c": map[string]any{"nested": []int{1, 2, 3}},
		"d": 12345,
	}
	for k, v := range values {
		require.NoError(t, c.Set(ctx, k, v))
	}

	// Overwrite and delete.
	require.NoError(t, c.Set(ctx, "b", "now small"))
	values["b"] = "now small"
	removed, err := c.Delete(ctx, "d")
	require.NoError(t, err)
	require.True(t, removed)
	delete(values, "d")

	var want int64
	for _, v := range values {
		want += entrySize(t, v)
	}
	assert.Equal(t, want, c.Stats().MemoryUsageBytes)
}

func TestCache_SetValidationFailureLeavesStateUnchanged(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "existing", "value"))
	before := c.Stats()

	tests := []struct {
		name    string
		key     string
		value   any
		opts    []SetOption
		wantErr error
	}{
		{
			name:    "negative TTL",
			key:     "k",
			value:   "v",
			opts:    []SetOption{WithTTL(-1)},
			wantErr: ErrInvalidTTL,
		},
		{
			name:    "zero TTL",
			key:     "k",
			value:   "v",
			opts:    []SetOption{WithTTL(0)},
			wantErr: ErrInvalidTTL,
		},
		{
			name:    "empty key",
			key:     "",
			value:   "v",
			wantErr: ErrInvalidKey,
		},
		{
			name:    "function value",
			key:     "k",
			value:   func() {},
			wantErr: ErrNotSerializable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Set(ctx, tt.key, tt.value, tt.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, c.Stats())
		})
	}
}

func TestCache_CircularValueRejected(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	node := &selfRef{Name: "loop"}
	node.Next = node

	err := c.Set(ctx, "k", node)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularReference)
	assert.Equal(t, 0, c.Stats().Size)
}

func TestCache_MaxTTLEnforced(t *testing.T) {
	cfg := testConfig()
	cfg.MaxTTL = time.Minute
	c := newTestCache(t, cfg)

	err := c.Set(context.Background(), "k", "v", WithTTL(time.Hour))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}

func TestCache_HasDoesNotAffectAccounting(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))

	ok, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Has(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.TotalHits)
	assert.Equal(t, int64(0), stats.TotalAccesses)
}

func TestCache_HasRemovesExpired(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", WithTTL(50*time.Millisecond)))
	time.Sleep(80 * time.Millisecond)

	ok, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, int64(1), stats.ExpiredCount)
}

func TestCache_Delete(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))

	removed, err := c.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = c.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, 0, c.Stats().Size)
}

func TestCache_ClearResetsCounters(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))
	_, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	_, _, err = c.Get(ctx, "absent")
	require.NoError(t, err)

	c.Clear(ctx)

	stats := c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Equal(t, int64(0), stats.MemoryUsageBytes)
	assert.Equal(t, int64(0), stats.TotalHits)
	assert.Equal(t, int64(0), stats.TotalAccesses)
	assert.Equal(t, float64(0), stats.HitRate)
}

func TestCache_StatsHitRate(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	assert.Equal(t, float64(0), c.Stats().HitRate)

	require.NoError(t, c.Set(ctx, "k", "v"))
	for i := 0; i < 3; i++ {
		_, _, err := c.Get(ctx, "k")
		require.NoError(t, err)
	}
	_, _, err := c.Get(ctx, "absent")
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, int64(3), stats.TotalHits)
	assert.Equal(t, int64(4), stats.TotalAccesses)
	assert.InDelta(t, 0.75, stats.HitRate, 1e-9)
}

func TestCache_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableMetrics = false
	c := newTestCache(t, cfg)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v"))
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(0), stats.TotalHits)
	assert.Equal(t, int64(0), stats.TotalAccesses)
	assert.Equal(t, 1, stats.Size)
}

func TestCache_StrictValidation(t *testing.T) {
	cfg := testConfig()
	cfg.StrictValidation = true
	strict := newTestCache(t, cfg)
	relaxed := newTestCache(t, testConfig())
	ctx := context.Background()

	// Strict mode surfaces the error on reads.
	_, _, err := strict.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = strict.Has(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = strict.Delete(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	// Default mode degrades reads to safe sentinels.
	v, ok, err := relaxed.Get(ctx, "")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
	ok, err = relaxed.Has(ctx, "")
	assert.NoError(t, err)
	assert.False(t, ok)
	ok, err = relaxed.Delete(ctx, "")
	assert.NoError(t, err)
	assert.False(t, ok)

	// Set reports the failure in both modes.
	assert.ErrorIs(t, strict.Set(ctx, "", "v"), ErrInvalidKey)
	assert.ErrorIs(t, relaxed.Set(ctx, "", "v"), ErrInvalidKey)
}

func TestCache_CustomEstimator(t *testing.T) {
	cfg := testConfig()
	c := newTestCache(t, cfg, WithEstimator(func(serialized []byte) int64 {
		return int64(len(serialized))
	}))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "vvvv"))

	data, err := serializeValue("vvvv")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), c.Stats().MemoryUsageBytes)
}

func TestCache_ConcurrentSets(t *testing.T) {
	cfg := testConfig()
	cfg.MaxEntries = 500
	cfg.MaxMemoryBytes = 8 << 20
	c := newTestCache(t, cfg)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := c.Set(ctx, fmt.Sprintf("key-%d", i), i)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.Equal(t, 500, stats.Size)
	assert.LessOrEqual(t, stats.MemoryUsageBytes, cfg.MaxMemoryBytes)
	assert.Equal(t, int64(500), stats.EvictionCount)
}

func TestCache_ConcurrentMixedOperations(t *testing.T) {
	c := newTestCache(t, testConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i%10)
			switch i % 4 {
			case 0:
				_ = c.Set(ctx, key, i)
			case 1:
				_, _, _ = c.Get(ctx, key)
			case 2:
				_, _ = c.Has(ctx, key)
			case 3:
				_, _ = c.Delete(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	// The map, LRU index, and memory counter stay consistent.
	stats := c.Stats()
	assert.GreaterOrEqual(t, stats.MemoryUsageBytes, int64(0))
	assert.LessOrEqual(t, stats.Size, testConfig().MaxEntries)
}
