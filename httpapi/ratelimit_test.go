package httpapi

import (
	"testing"
	"time"
)

func TestIPLimiterBucketsPerIP(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPLimiter(1, 2)
	l.now = func() time.Time { return now }

	if !l.allow("10.0.0.1") || !l.allow("10.0.0.1") {
		t.Fatal("burst should be allowed")
	}
	if l.allow("10.0.0.1") {
		t.Fatal("third request within the same instant should be limited")
	}
	if !l.allow("10.0.0.2") {
		t.Fatal("other IPs have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.allow("10.0.0.1") {
		t.Fatal("bucket should refill")
	}
}

func TestIPLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(ipBucketTTL + sweepInterval + time.Second)
	l.allow("10.0.0.2")

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.buckets["10.0.0.1"]; ok {
		t.Fatal("idle bucket should have been swept")
	}
	if len(l.buckets) != 1 {
		t.Fatalf("expected one live bucket, got %d", len(l.buckets))
	}
}
