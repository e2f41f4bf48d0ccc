package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestCache(t *testing.T) (*Cache, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return New(5*time.Minute, WithClock(clock.Now)), clock
}

func TestGetBeforeAndAfterTTL(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", "v", 10*time.Minute)
	clock.Advance(9 * time.Minute)
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestEntryIsValidExactlyAtTTL(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", 1, time.Minute)
	clock.Advance(time.Minute)
	assert.True(t, c.Has("k"), "entry must still be valid at the boundary")

	clock.Advance(time.Nanosecond)
	assert.False(t, c.Has("k"))
}

func TestGetEvictsExpiredEntry(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", 1, time.Minute)
	clock.Advance(2 * time.Minute)
	_, ok := c.Get("k")
	require.False(t, ok)

	// The stale entry is gone, so Delete has nothing to remove.
	assert.False(t, c.Delete("k"))
}

func TestNonPositiveTTLUsesDefault(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", 1, 0)
	clock.Advance(5 * time.Minute)
	assert.True(t, c.Has("k"))
	clock.Advance(time.Second)
	assert.False(t, c.Has("k"))
}

func TestLastWriteWins(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("k", "v1", time.Hour)
	clock.Advance(30 * time.Second)
	c.Set("k", "v2", time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v2", got)

	// The overwrite also replaced the TTL.
	clock.Advance(2 * time.Minute)
	assert.False(t, c.Has("k"))
}

func TestDeleteAndClear(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))

	c.Clear()
	assert.False(t, c.Has("b"))
	assert.Equal(t, 0, c.Stats().Size)
}

func TestStatsExcludesExpired(t *testing.T) {
	c, clock := newTestCache(t)

	c.Set("a", "x", time.Minute)
	c.Set("b", "y", 10*time.Minute)
	clock.Advance(5 * time.Minute)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, []string{"b"}, stats.Keys)
	assert.False(t, c.Delete("a"), "stats should have evicted the expired entry")
}

func TestGetAs(t *testing.T) {
	c, _ := newTestCache(t)

	c.Set("rows", []int{1, 2}, 0)
	rows, ok := GetAs[[]int](c, "rows")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, rows)

	_, ok = GetAs[string](c, "rows")
	assert.False(t, ok)
	_, ok = GetAs[[]int](c, "missing")
	assert.False(t, ok)
}

func TestKeysAreDistinct(t *testing.T) {
	keys := []string{
		KeyVizIndex(),
		KeyVisualization("HR", "DonorSex"),
		KeyTransfusion("HR"),
		KeyLoessAll(),
		KeyLoessVital("HR"),
		KeyLoessMultiSpan(),
		KeyObservedSummary(),
		KeyModelSummary(),
		KeyFactorObservedSummary(),
		KeyFactorModelSummary(),
		KeyDescriptiveStats(),
	}
	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %q", k)
		seen[k] = true
	}
	assert.Equal(t, "viz_HR_DonorSex", KeyVisualization("HR", "DonorSex"))
}
