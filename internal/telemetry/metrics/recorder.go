package metrics

import (
	"context"
	"sync"
)

// RecorderMetricsSvc keeps counts in memory, optionally forwarding to
// another service.
type RecorderMetricsSvc struct {
	mu     sync.Mutex
	counts map[MetricName]int
	next   MetricsSvc
}

// NewRecorderMetricsSvc records every increment and forwards it to
// next, which may be nil.
func NewRecorderMetricsSvc(next MetricsSvc) *RecorderMetricsSvc {
	return &RecorderMetricsSvc{
		counts: make(map[MetricName]int),
		next:   next,
	}
}

func (r *RecorderMetricsSvc) Increment(
	metric MetricName,
	attrs map[string]string,
) {
	r.mu.Lock()
	r.counts[metric]++
	r.mu.Unlock()

	if r.next != nil {
		r.next.Increment(metric, attrs)
	}
}

func (r *RecorderMetricsSvc) Count(metric MetricName) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[metric]
}

func (r *RecorderMetricsSvc) Shutdown(ctx context.Context) error {
	if r.next != nil {
		return r.next.Shutdown(ctx)
	}
	return nil
}
