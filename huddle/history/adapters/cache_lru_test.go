package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCacheSetAndGet(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(10)

	require.NoError(t, cache.Set(ctx, "k1", []byte("v1"), 60))

	value, ok := cache.Get(ctx, "k1")
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), value)

	_, ok = cache.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(2)

	require.NoError(t, cache.Set(ctx, "k1", []byte("v1"), 60))
	require.NoError(t, cache.Set(ctx, "k2", []byte("v2"), 60))

	// Touch k1 so k2 becomes the eviction candidate
	_, ok := cache.Get(ctx, "k1")
	require.True(t, ok)

	require.NoError(t, cache.Set(ctx, "k3", []byte("v3"), 60))

	_, ok = cache.Get(ctx, "k2")
	assert.False(t, ok)
	_, ok = cache.Get(ctx, "k1")
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestLRUCacheExpiresEntries(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(10)

	require.NoError(t, cache.Set(ctx, "k1", []byte("v1"), 0))
	time.Sleep(10 * time.Millisecond)

	_, ok := cache.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestLRUCacheUpdateExistingKey(t *testing.T) {
	ctx := context.Background()
	cache := NewLRUCache(10)

	require.NoError(t, cache.Set(ctx, "k1", []byte("v1"), 60))
	require.NoError(t, cache.Set(ctx, "k1", []byte("v2"), 60))

	value, ok := cache.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 1, cache.Len())
}
