package sourcing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCacheEmptyIsStale(t *testing.T) {
	cache := NewFeedCache[string]()

	assert.True(t, cache.IsStale(time.Minute))
	_, ok := cache.Get()
	assert.False(t, ok)
	assert.True(t, cache.FetchedAt().IsZero())
}

func TestFeedCacheSetAndGet(t *testing.T) {
	cache := NewFeedCache[string]()
	cache.Set("feed")

	assert.False(t, cache.IsStale(time.Minute))
	value, ok := cache.Get()
	require.True(t, ok)
	assert.Equal(t, "feed", value)
	assert.False(t, cache.FetchedAt().IsZero())
}

func TestFeedCacheNonPositiveTTLDisablesExpiry(t *testing.T) {
	cache := NewFeedCache[string]()
	cache.Set("feed")

	assert.False(t, cache.IsStale(0))
	assert.False(t, cache.IsStale(-time.Nanosecond))
}

func TestFeedCacheExpiresAfterTTL(t *testing.T) {
	cache := NewFeedCache[string]()
	cache.Set("feed")
	time.Sleep(time.Millisecond)

	assert.True(t, cache.IsStale(time.Nanosecond))
}

func TestFeedCacheInvalidate(t *testing.T) {
	cache := NewFeedCache[string]()
	cache.Set("feed")
	cache.Invalidate()

	assert.True(t, cache.IsStale(time.Minute))
	value, ok := cache.Get()
	assert.False(t, ok)
	assert.Empty(t, value)
}
