// Package ttlcache provides a thread-safe, TTL-bounded store shared by
// the resolver, disposable, typo, health and bulk stages. Every
// namespace is a separate instance parameterized by its value type.
package ttlcache

import (
	"sync"
	"time"
)

// Cache maps string keys to values of type V. Entries expire after the
// cache TTL and are refreshed by the next Set; they are never mutated
// in place. Reads are concurrent, writes take a short exclusive section.
type Cache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry[V]

	// now is injectable for expiry tests.
	now func() time.Time
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// New creates a cache whose entries live for ttl.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Get returns the live value for key, if any.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with an entry-specific TTL. Expired
// entries are swept opportunistically so the map does not grow without
// bound.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if len(c.entries) > 0 && len(c.entries)%1024 == 0 {
		for k, e := range c.entries {
			if now.After(e.expires) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = entry[V]{value: value, expires: now.Add(ttl)}
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included
// (for diagnostics).
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
