package metrics

import (
	"context"
)

// NoopMetricsSvc discards every metric. It backs the service when
// OTEL_ENABLED is not set and one-shot commands that export nothing.
type NoopMetricsSvc struct{}

func NewNoopMetricsSvc() *NoopMetricsSvc {
	return &NoopMetricsSvc{}
}

func (n *NoopMetricsSvc) Increment(MetricName, map[string]string) {}

func (n *NoopMetricsSvc) Shutdown(ctx context.Context) error {
	return nil
}
