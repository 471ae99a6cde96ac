package metrics

import (
	"context"
)

// Custom type to represent a metric name,
// providing a type-safe way to handle metric names.
type MetricName string

const (
	OriginalEventReceived MetricName = "original.event.received"
	ThumbCreated          MetricName = "thumbnail.created"
	ThumbFailed           MetricName = "thumbnail.failed"
	URLCacheHit           MetricName = "thumbnail.url.cache.hit"
	URLCacheMiss          MetricName = "thumbnail.url.cache.miss"
	RegenItem             MetricName = "regen.item"
)

type MetricsSvc interface {
	Increment(metric MetricName, attrs map[string]string)
	Shutdown(ctx context.Context) error
}
