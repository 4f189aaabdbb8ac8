package testutil

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// SetupMetrics installs a meter provider backed by a manual reader as the
// global provider, it is shut down when the test ends.
func SetupMetrics(t testing.TB) *sdkmetric.ManualReader {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		err := provider.Shutdown(ctx)
		if err != nil {
			t.Error(err)
		}
	})
	return reader
}

// SumInt64 collects the reader and adds up the points of an int64 sum whose
// attributes contain every given key/value pair.
func SumInt64(t testing.TB, reader *sdkmetric.ManualReader, name string, attrs map[string]string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	if err != nil {
		t.Fatal(err)
	}

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, not an int64 sum", name, m.Data)
			}
		points:
			for _, point := range sum.DataPoints {
				for k, v := range attrs {
					value, ok := point.Attributes.Value(attribute.Key(k))
					if !ok || value.AsString() != v {
						continue points
					}
				}
				total += point.Value
			}
		}
	}
	return total
}
