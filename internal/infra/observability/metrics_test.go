package observability

import (
	"context"
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()

	m.IncrRequest("success")
	m.IncrRequest("success")
	m.IncrRequest("success")
	m.IncrRequest("error")
	m.IncrCacheHit(CacheLedger)
	m.IncrCacheMiss(CacheLedger)
	m.AddExportedRows("transactions", 12)
	m.AddExportedRows("debt_credit", 3)
	m.IncrAllocationFailure()
	m.IncrFallback("own_unit")
	m.RecordRequestDuration("transactions.list", 15*time.Millisecond)

	s := m.Snapshot()
	if s.TotalRequests != 4 {
		t.Errorf("expected 4 requests, got %d", s.TotalRequests)
	}
	if s.ErrorRate != 0.25 {
		t.Errorf("expected error rate 0.25, got %f", s.ErrorRate)
	}
	if s.CacheHitRate != 0.5 {
		t.Errorf("expected hit rate 0.5, got %f", s.CacheHitRate)
	}
	if s.ExportedRows != 15 {
		t.Errorf("expected 15 rows, got %d", s.ExportedRows)
	}
	if s.AllocationFailures != 1 || s.OwnUnitFallbacks != 1 || s.LegalAIFallbacks != 0 {
		t.Errorf("unexpected fallback counters: %+v", s)
	}
}

func TestNewMetricsTwice(t *testing.T) {
	// private registries must not collide
	_ = NewMetrics()
	_ = NewMetrics()
}

func TestInitTracerWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer("", "melking-bfa-test")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
