package otel

import (
	"context"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/MrEthical07/hireauth"
)

type fakeSource struct {
	mu       sync.RWMutex
	snapshot hireauth.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() hireauth.MetricsSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := hireauth.MetricsSnapshot{
		Counters:      make(map[hireauth.MetricID]uint64, len(f.snapshot.Counters)),
		Histograms:    make(map[hireauth.MetricID][]uint64, len(f.snapshot.Histograms)),
		HistogramSums: make(map[hireauth.MetricID]time.Duration, len(f.snapshot.HistogramSums)),
	}
	for k, v := range f.snapshot.Counters {
		out.Counters[k] = v
	}
	for k, buckets := range f.snapshot.Histograms {
		out.Histograms[k] = append([]uint64(nil), buckets...)
	}
	for k, v := range f.snapshot.HistogramSums {
		out.HistogramSums[k] = v
	}
	return out
}

func (f *fakeSource) AuditDropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}

func newMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func int64Value(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		return data.DataPoints[0].Value
	case metricdata.Gauge[int64]:
		return data.DataPoints[0].Value
	default:
		t.Fatalf("metric %s has unexpected data type %T", m.Name, m.Data)
		return 0
	}
}

func TestExporterRegistersAndCollects(t *testing.T) {
	reader, provider := newMeter(t)
	src := &fakeSource{
		snapshot: hireauth.MetricsSnapshot{
			Counters: map[hireauth.MetricID]uint64{
				hireauth.MetricLoginSuccess: 3,
			},
			Histograms: map[hireauth.MetricID][]uint64{
				hireauth.MetricVerifyLatency: {1, 1, 1, 1, 1, 1, 1, 1},
			},
			HistogramSums: map[hireauth.MetricID]time.Duration{
				hireauth.MetricVerifyLatency: 500 * time.Millisecond,
			},
		},
		dropped: 1,
	}

	exp, err := NewExporterFromSource(provider.Meter("hireauth-test"), src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer func() {
		if err := exp.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}()

	got := collect(t, reader)
	checks := map[string]int64{
		"hireauth_login_success_total":                      3,
		"hireauth_audit_dropped_total":                      1,
		"hireauth_verify_latency_seconds_bucket_le_0_00005": 1,
		"hireauth_verify_latency_seconds_bucket_le_inf":     8,
		"hireauth_verify_latency_seconds_count":             8,
	}
	for name, want := range checks {
		m, ok := got[name]
		if !ok {
			t.Fatalf("metric %s not collected", name)
		}
		if v := int64Value(t, m); v != want {
			t.Fatalf("%s = %d, want %d", name, v, want)
		}
	}

	sum, ok := got["hireauth_verify_latency_seconds_sum"].Data.(metricdata.Gauge[float64])
	if !ok || sum.DataPoints[0].Value != 0.5 {
		t.Fatalf("unexpected histogram sum: %+v", got["hireauth_verify_latency_seconds_sum"].Data)
	}
}

func TestExporterRejectsNilInputs(t *testing.T) {
	_, provider := newMeter(t)
	if _, err := NewExporterFromSource(provider.Meter("hireauth-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
	if _, err := NewExporterFromSource(nil, &fakeSource{}); err != ErrNilMeter {
		t.Fatalf("expected ErrNilMeter, got %v", err)
	}
	if _, err := NewExporter(provider.Meter("hireauth-test"), nil); err != ErrNilSource {
		t.Fatalf("expected ErrNilSource for nil engine, got %v", err)
	}
}

func TestExporterConcurrentCollectNoPanic(t *testing.T) {
	reader, provider := newMeter(t)
	src := &fakeSource{
		snapshot: hireauth.MetricsSnapshot{
			Counters: map[hireauth.MetricID]uint64{
				hireauth.MetricLoginSuccess: 1,
			},
		},
	}

	exp, err := NewExporterFromSource(provider.Meter("hireauth-test"), src)
	if err != nil {
		t.Fatalf("NewExporterFromSource failed: %v", err)
	}
	defer exp.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			src.mu.Lock()
			src.snapshot.Counters[hireauth.MetricLoginSuccess] = v
			src.mu.Unlock()

			var rm metricdata.ResourceMetrics
			_ = reader.Collect(context.Background(), &rm)
		}(uint64(i + 1))
	}
	wg.Wait()
}
