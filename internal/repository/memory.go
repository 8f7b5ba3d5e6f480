package repository

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"homesearch/internal/model"
)

type memoryEntry struct {
	records  []model.ListingRecord
	storedAt time.Time
}

// MemoryCache is an in-process LRU of listing pages with a TTL
type MemoryCache struct {
	cache *lru.Cache[string, memoryEntry]
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryCache creates a cache holding at most size pages
func NewMemoryCache(size int, ttl time.Duration) (*MemoryCache, error) {
	cache, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &MemoryCache{cache: cache, ttl: ttl, now: time.Now}, nil
}

// GetListings returns an unexpired page for key
func (c *MemoryCache) GetListings(_ context.Context, key string) ([]model.ListingRecord, bool, error) {
	entry, ok := c.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) >= c.ttl {
		// Expired; evict so the LRU bookkeeping stays clean
		c.cache.Remove(key)
		return nil, false, nil
	}
	return cloneRecords(entry.records), true, nil
}

// PutListings caches the page for key
func (c *MemoryCache) PutListings(_ context.Context, key string, records []model.ListingRecord) error {
	c.cache.Add(key, memoryEntry{records: cloneRecords(records), storedAt: c.now()})
	return nil
}

// Len returns the number of cached pages
func (c *MemoryCache) Len() int {
	return c.cache.Len()
}

func cloneRecords(records []model.ListingRecord) []model.ListingRecord {
	out := make([]model.ListingRecord, len(records))
	copy(out, records)
	return out
}
