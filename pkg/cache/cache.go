// Package cache holds fetched datasets in memory with a per-entry time-to-live.
//
// Expired entries are evicted lazily by the read that notices them; there is no
// background sweep.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/synaptica-ai/transfusion-vitals/pkg/observability/metrics"
)

// DefaultTTL is used when New is given a non-positive default.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// live reports whether the entry is still valid at now. An entry read exactly
// at storedAt+ttl is still valid.
func (e entry) live(now time.Time) bool {
	return now.Sub(e.storedAt) <= e.ttl
}

// Stats lists the keys that were live when Stats was called.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

func New(defaultTTL time.Duration, opts ...Option) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	c := &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under key, replacing any previous entry. A non-positive ttl
// selects the cache default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// Get returns the value stored under key if it has not expired. An expired
// entry is removed.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.getLocked(key, c.now())
	if ok {
		metrics.CacheHit()
	} else {
		metrics.CacheMiss()
	}
	return value, ok
}

func (c *Cache) getLocked(key string, now time.Time) (any, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.live(now) {
		delete(c.entries, key)
		metrics.CacheExpired()
		return nil, false
	}
	return e.value, true
}

// Has is Get without the value, including its eviction of expired entries.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.getLocked(key, c.now())
	return ok
}

// Delete removes key and reports whether an entry was stored, expired or not.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Stats runs the liveness check over every key, evicting the expired ones, and
// returns the survivors in sorted order.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		if _, ok := c.getLocked(key, now); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	metrics.ObserveCacheSize(len(keys))
	return Stats{Size: len(keys), Keys: keys}
}

// GetAs is Get with a type assertion. A stored value of another type is a miss.
func GetAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	value, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
