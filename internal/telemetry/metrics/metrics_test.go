package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecorderForwards(t *testing.T) {
	inner := NewRecorderMetricsSvc(nil)
	r := NewRecorderMetricsSvc(inner)

	r.Increment(ThumbCreated, nil)
	r.Increment(ThumbCreated, map[string]string{"spec": "small"})
	r.Increment(ThumbFailed, nil)

	assert.Equal(t, 2, r.Count(ThumbCreated))
	assert.Equal(t, 1, r.Count(ThumbFailed))
	assert.Equal(t, 2, inner.Count(ThumbCreated))
	assert.NoError(t, r.Shutdown(context.Background()))
}

func TestNoopMetricsSvc(t *testing.T) {
	n := NewNoopMetricsSvc()
	n.Increment(ThumbCreated, nil)
	assert.NoError(t, n.Shutdown(context.Background()))
}

func TestOtelCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	counters, err := newCounters(provider.Meter("test"))
	require.NoError(t, err)

	svc := &OtelMetricsSvc{counters: counters}
	svc.Increment(RegenItem, map[string]string{"outcome": "PROCESSED"})
	svc.Increment(RegenItem, map[string]string{"outcome": "PROCESSED"})
	svc.Increment(MetricName("unknown"), nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var found bool
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name != string(RegenItem) {
			continue
		}
		found = true
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, sum.DataPoints, 1)
		assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	}
	assert.True(t, found)
}
