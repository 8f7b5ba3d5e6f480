package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homesearch/internal/model"
)

func addr(s string) *string { return &s }

func TestMemoryCache_HitAndExpiry(t *testing.T) {
	cache, err := NewMemoryCache(4, time.Minute)
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := cache.GetListings(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.PutListings(ctx, "u1", []model.ListingRecord{{Address: addr("1 Main St")}}))

	got, ok, err := cache.GetListings(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1 Main St", *got[0].Address)

	now = now.Add(time.Minute)
	_, ok, _ = cache.GetListings(ctx, "u1")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewMemoryCache(2, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.PutListings(ctx, "a", nil))
	require.NoError(t, cache.PutListings(ctx, "b", nil))
	_, _, _ = cache.GetListings(ctx, "a")
	require.NoError(t, cache.PutListings(ctx, "c", nil))

	_, okA, _ := cache.GetListings(ctx, "a")
	_, okB, _ := cache.GetListings(ctx, "b")
	assert.True(t, okA)
	assert.False(t, okB)
}

func TestMemoryCache_EmptyPageIsAHit(t *testing.T) {
	cache, err := NewMemoryCache(2, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.PutListings(ctx, "empty", []model.ListingRecord{}))
	got, ok, err := cache.GetListings(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestNewMemoryCache_InvalidSize(t *testing.T) {
	_, err := NewMemoryCache(0, time.Minute)
	assert.Error(t, err)
}

func TestCacheKeyAndJSONBArgument(t *testing.T) {
	assert.Len(t, cacheKey("https://example.test/?a=1"), 64)
	assert.Equal(t, cacheKey("x"), cacheKey("x"))
	assert.NotEqual(t, cacheKey("x"), cacheKey("y"))

	assert.Equal(t, `{"zip_code":"94103"}`, jsonbArgument([]byte(`{"zip_code":"94103"}`)))
	assert.Equal(t, `"not json"`, jsonbArgument([]byte(`not json`)))
	assert.Equal(t, "{}", jsonbArgument(nil))
}
