package telemetry

import (
	"context"

	"github.com/giobyte8/thumbvariants/internal/telemetry/metrics"
)

type Config struct {
	OtelEnabled      bool
	OtelGrpcEndpoint string
}

type TelemetrySvc struct {
	metrics metrics.MetricsSvc
}

func NewTelemetrySvc(ctx context.Context, cfg Config) (*TelemetrySvc, error) {
	var metricsSvc metrics.MetricsSvc
	var err error

	if cfg.OtelEnabled {
		metricsSvc, err = metrics.NewOtelMetricsSvc(ctx, cfg.OtelGrpcEndpoint)
		if err != nil {
			return nil, err
		}
	} else {
		metricsSvc = metrics.NewNoopMetricsSvc()
	}

	return &TelemetrySvc{
		metrics: metricsSvc,
	}, nil
}

// NewTelemetrySvcWith wraps an existing metrics service.
func NewTelemetrySvcWith(metricsSvc metrics.MetricsSvc) *TelemetrySvc {
	return &TelemetrySvc{metrics: metricsSvc}
}

// Noop returns a telemetry service that discards everything.
func Noop() *TelemetrySvc {
	return NewTelemetrySvcWith(metrics.NewNoopMetricsSvc())
}

func (t *TelemetrySvc) Metrics() metrics.MetricsSvc {
	return t.metrics
}

func (t *TelemetrySvc) Shutdown(ctx context.Context) error {
	return t.metrics.Shutdown(ctx)
}
