package hireauth

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledIgnoresUpdates(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricVerifyLatency, time.Millisecond)
	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics must not count")
	}
	if s := m.Snapshot(); len(s.Counters) != 0 || len(s.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", s)
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				m.Inc(MetricRefreshSuccess)
			}
		}()
	}
	wg.Wait()
	if got := m.Value(MetricRefreshSuccess); got != 16000 {
		t.Fatalf("expected 16000, got %d", got)
	}
}

func TestMetricsHistogramBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	m.Observe(MetricVerifyLatency, 10*time.Microsecond)
	m.Observe(MetricVerifyLatency, 50*time.Microsecond)
	m.Observe(MetricVerifyLatency, 2*time.Millisecond)
	m.Observe(MetricVerifyLatency, time.Second)
	m.Observe(MetricLoginSuccess, time.Second)

	s := m.Snapshot()
	b := s.Histograms[MetricVerifyLatency]
	if len(b) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(b))
	}
	if b[0] != 2 || b[5] != 1 || b[7] != 1 {
		t.Fatalf("unexpected buckets %v", b)
	}
	want := 10*time.Microsecond + 50*time.Microsecond + 2*time.Millisecond + time.Second
	if s.HistogramSums[MetricVerifyLatency] != want {
		t.Fatalf("sum = %v, want %v", s.HistogramSums[MetricVerifyLatency], want)
	}
	if _, ok := s.Counters[MetricVerifyLatency]; ok {
		t.Fatal("histogram id must not appear as a counter")
	}
}
