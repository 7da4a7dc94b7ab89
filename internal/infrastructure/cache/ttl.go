package cache

import (
	"sync"
	"time"
)

// Clock supplies the current time. Injected so TTL behavior is testable
// without sleeping.
type Clock func() time.Time

// TTLCache is an in-memory string cache with per-entry expiry. There is no
// package-level instance: every consumer constructs its own cache with an
// explicit clock and default TTL.
type TTLCache struct {
	clock      Clock
	defaultTTL time.Duration

	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	value     string
	expiresAt time.Time
}

// NewTTL creates a cache. A nil clock uses time.Now.
func NewTTL(clock Clock, defaultTTL time.Duration) *TTLCache {
	if clock == nil {
		clock = time.Now
	}
	return &TTLCache{
		clock:      clock,
		defaultTTL: defaultTTL,
		entries:    make(map[string]entry),
	}
}

// Get returns the cached value if present and unexpired.
func (c *TTLCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if c.clock().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another writer may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.clock().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *TTLCache) Set(key, value string) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores a value with an explicit TTL.
func (c *TTLCache) SetWithTTL(key, value string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.clock().Add(ttl),
	}
}

// Delete removes a key.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops every expired entry and returns how many were removed.
func (c *TTLCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, including any not yet purged.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
