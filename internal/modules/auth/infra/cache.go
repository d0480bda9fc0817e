package infra

import (
	"sync"
	"time"
)

// Key suffixes namespace the ephemeral store by purpose so the signup,
// reset and session flows never read each other's entries.
const (
	KeyEmailCode = "|codigo-email"
	KeyResetCode = "|codigo-reset"
	KeySession   = "|sesion"
)

// Cache is the process-local ephemeral keyed store: every entry lives for
// a fixed TTL and is gone after a restart. Values here are reconstructable
// from user-initiated retries, so losing them is acceptable. Not shared
// across instances; a multi-instance deployment needs an external cache.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	data      any
	expiresAt time.Time
}

// CacheEntry is the listing form of an entry, with its remaining lifetime.
type CacheEntry struct {
	Key       string
	Data      any
	Remaining time.Duration
}

// NewCache builds a store with the given TTL. A nil clock means wall time;
// tests inject their own so expiry is simulated, never slept on.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// Set stores data under key for the full TTL, replacing any prior entry.
func (c *Cache) Set(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, expiresAt: c.now().Add(c.ttl)}
}

// SetWithTTL stores data with an explicit lifetime, for entries (session
// markers) whose deadline differs from the store default.
func (c *Cache) SetWithTTL(key string, data any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{data: data, expiresAt: c.now().Add(ttl)}
}

// SetIfAbsent stores data for the full TTL only when no live entry holds
// the key, and reports whether it won. Existence checks that gate an
// insert must go through here; a separate Get would race a concurrent
// writer.
func (c *Cache) SetIfAbsent(key string, data any) bool {
	return c.SetIfAbsentTTL(key, data, c.ttl)
}

// SetIfAbsentTTL is SetIfAbsent with an explicit lifetime.
func (c *Cache) SetIfAbsentTTL(key string, data any, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if e, ok := c.entries[key]; ok && e.expiresAt.After(now) {
		return false
	}
	c.entries[key] = cacheEntry{data: data, expiresAt: now.Add(ttl)}
	return true
}

// Mutate applies fn to the payload under the store lock, so concurrent
// read-modify-write sequences (attempt counters) serialize instead of
// losing updates. fn returns the new payload and whether to keep the
// entry; keeping preserves the deadline, declining deletes it. Returns
// false without calling fn when the entry is missing or expired.
func (c *Cache) Mutate(key string, fn func(data any) (any, bool)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if !e.expiresAt.After(c.now()) {
		delete(c.entries, key)
		return false
	}
	data, keep := fn(e.data)
	if !keep {
		delete(c.entries, key)
		return true
	}
	c.entries[key] = cacheEntry{data: data, expiresAt: e.expiresAt}
	return true
}

// Update replaces the payload without touching the deadline. Attempt
// counters must not extend a code's lifetime. Returns false if the entry
// is missing or expired.
func (c *Cache) Update(key string, data any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.expiresAt.After(c.now()) {
		return false
	}
	c.entries[key] = cacheEntry{data: data, expiresAt: e.expiresAt}
	return true
}

// Get returns the payload if present and unexpired. Expired entries are
// deleted on read.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.After(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.data, true
}

// Delete removes an entry; idempotent.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep proactively removes every expired entry and reports how many went.
// Runs on the scheduler as a safety net behind lazy deletion.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.entries {
		if !e.expiresAt.After(now) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// List snapshots all entries with their remaining lifetime, expired ones
// included (Remaining <= 0). The session sweeper decides what to do with
// them.
func (c *Cache) List() []CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	out := make([]CacheEntry, 0, len(c.entries))
	for k, e := range c.entries {
		out = append(out, CacheEntry{Key: k, Data: e.data, Remaining: e.expiresAt.Sub(now)})
	}
	return out
}

// TTL reports the default entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Len reports the current entry count.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
