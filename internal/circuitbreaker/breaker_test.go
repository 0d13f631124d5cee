package circuitbreaker

import (
	"testing"
	"time"
)

// withFakeClock installs a controllable clock and returns an advance func.
func withFakeClock(cb *CircuitBreaker) func(time.Duration) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	cb.clock = func() time.Time { return now }
	return func(d time.Duration) { now = now.Add(d) }
}

func TestAllow_UnknownEndpoint_Allowed(t *testing.T) {
	cb := New(3, 5*time.Second)
	if err := cb.Allow("ongoing"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAllow_BelowThreshold_Allowed(t *testing.T) {
	cb := New(3, 5*time.Second)
	cb.RecordFailure("ongoing")
	cb.RecordFailure("ongoing")
	if err := cb.Allow("ongoing"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestAllow_AtThreshold_Open(t *testing.T) {
	cb := New(3, 5*time.Second)
	for i := 0; i < 3; i++ {
		cb.RecordFailure("ongoing")
	}
	if err := cb.Allow("ongoing"); err == nil {
		t.Fatal("expected ErrCircuitOpen, got nil")
	}
}

func TestAllow_OpenAfterCooldown_HalfOpen(t *testing.T) {
	cb := New(3, time.Minute)
	advance := withFakeClock(cb)

	for i := 0; i < 3; i++ {
		cb.RecordFailure("recent")
	}
	advance(2 * time.Minute)

	if err := cb.Allow("recent"); err != nil {
		t.Fatalf("expected nil (probe allowed), got %v", err)
	}
	if err := cb.Allow("recent"); err == nil {
		t.Fatal("expected ErrCircuitOpen while half-open probe in flight")
	}
}

func TestRecordSuccess_ClosesAfterProbe(t *testing.T) {
	cb := New(3, time.Minute)
	advance := withFakeClock(cb)

	for i := 0; i < 3; i++ {
		cb.RecordFailure("recent")
	}
	advance(2 * time.Minute)
	cb.Allow("recent")
	cb.RecordSuccess("recent")

	if err := cb.Allow("recent"); err != nil {
		t.Fatalf("expected nil after reset, got %v", err)
	}
}

func TestRecordFailure_HalfOpenReOpens(t *testing.T) {
	cb := New(3, time.Minute)
	advance := withFakeClock(cb)

	for i := 0; i < 3; i++ {
		cb.RecordFailure("recent")
	}
	advance(2 * time.Minute)
	cb.Allow("recent")
	cb.RecordFailure("recent")

	if err := cb.Allow("recent"); err == nil {
		t.Fatal("expected ErrCircuitOpen after probe failure re-open")
	}
}

func TestIndependentEndpoints(t *testing.T) {
	cb := New(2, 5*time.Second)
	cb.RecordFailure("ongoing")
	cb.RecordFailure("ongoing")

	if err := cb.Allow("ongoing"); err == nil {
		t.Fatal("expected ongoing to be open")
	}
	if err := cb.Allow("recent"); err != nil {
		t.Fatalf("recent should be unaffected, got %v", err)
	}
}
