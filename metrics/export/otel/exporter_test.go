package otel

import (
	"context"
	"testing"

	authcore "github.com/MrEthical07/authcore"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type fakeSource struct {
	snapshot authcore.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() authcore.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                      { return f.dropped }

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	values := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				values[m.Name] = dp.Value
			}
		}
	}
	return values
}

func TestExporterObservesEngineCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	source := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters: map[authcore.MetricID]uint64{
				authcore.MetricLoginSuccess: 3,
				authcore.MetricLoginFailure: 1,
			},
		},
		dropped: 2,
	}

	exporter, err := NewOTelExporterFromSource(provider.Meter("test"), source)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource: %v", err)
	}
	t.Cleanup(func() { _ = exporter.Close() })

	values := collect(t, reader)
	if values["authcore_login_success_total"] != 3 {
		t.Fatalf("login success: %+v", values)
	}
	if values["authcore_login_failure_total"] != 1 {
		t.Fatalf("login failure: %+v", values)
	}
	if values["authcore_audit_dropped_total"] != 2 {
		t.Fatalf("audit dropped: %+v", values)
	}
}

func TestExporterReflectsNewSnapshots(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	source := &fakeSource{snapshot: authcore.MetricsSnapshot{
		Counters: map[authcore.MetricID]uint64{authcore.MetricRegisterSuccess: 1},
	}}

	exporter, err := NewOTelExporterFromSource(provider.Meter("test"), source)
	if err != nil {
		t.Fatalf("NewOTelExporterFromSource: %v", err)
	}
	t.Cleanup(func() { _ = exporter.Close() })

	values := collect(t, reader)
	if values["authcore_register_success_total"] != 1 {
		t.Fatalf("initial collect: %+v", values)
	}

	source.snapshot.Counters[authcore.MetricRegisterSuccess] = 5
	values = collect(t, reader)
	if values["authcore_register_success_total"] != 5 {
		t.Fatalf("second collect: %+v", values)
	}
}

func TestExporterInputValidation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	if _, err := NewOTelExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewOTelExporterFromSource(provider.Meter("test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}

	var nilExporter *OTelExporter
	if err := nilExporter.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}
