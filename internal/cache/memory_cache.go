package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const DefaultMemoryCacheSize = 10000

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a size bounded in-process cache with per entry TTL.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryCacheSize
	}

	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &MemoryCache{entries: entries, now: time.Now}, nil
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return "", false
	}

	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.entries.Remove(key)
		return "", false
	}

	return entry.value, true
}

// Set stores value for ttl. A non positive ttl never expires.
func (c *MemoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.entries.Add(key, entry)
}

func (c *MemoryCache) Len() int {
	return c.entries.Len()
}
