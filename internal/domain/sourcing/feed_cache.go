package sourcing

import (
	"sync"
	"time"
)

// FeedCache holds one fetched feed payload together with its fetch time.
// It replaces ad-hoc package-level response caches: the owning adapter gets
// an injected instance and decides when to refresh based on IsStale.
type FeedCache[T any] struct {
	mu        sync.RWMutex
	data      T
	fetchedAt time.Time
	valid     bool
}

// NewFeedCache creates an empty feed cache
func NewFeedCache[T any]() *FeedCache[T] {
	return &FeedCache[T]{}
}

// Set stores a freshly fetched payload
func (c *FeedCache[T]) Set(data T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.fetchedAt = time.Now()
	c.valid = true
}

// Get returns the cached payload and whether a payload is present
func (c *FeedCache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data, c.valid
}

// FetchedAt returns when the cached payload was stored
func (c *FeedCache[T]) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// IsStale reports whether the cached payload is absent or older than ttl.
// A non-positive ttl disables expiry: a present payload never goes stale.
func (c *FeedCache[T]) IsStale(ttl time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return true
	}
	if ttl <= 0 {
		return false
	}
	return time.Since(c.fetchedAt) > ttl
}

// Invalidate drops the cached payload
func (c *FeedCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	c.data = zero
	c.valid = false
	c.fetchedAt = time.Time{}
}
