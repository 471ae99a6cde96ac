// Package cache provides key/value backends for advisory data such as
// resolved thumbnail URLs. A failing backend behaves like an empty one.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the cached value and whether it was found.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// NoopCache never stores anything.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(ctx context.Context, key string) (string, bool) {
	return "", false
}

func (c *NoopCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	// No operation performed
}
