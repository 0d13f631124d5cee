// Package analytics records delivered flight events as best-effort
// counters. Sinks never block delivery and never propagate errors.
package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

// Stats is a snapshot of event counts over a window.
type Stats struct {
	Since     time.Time
	Departed  int
	Arrived   int
	Completed int
	Cancelled int
}

// Total returns the sum of all counters.
func (s Stats) Total() int {
	return s.Departed + s.Arrived + s.Completed + s.Cancelled
}

// MemorySink counts events in process memory. It backs the daily digest.
type MemorySink struct {
	mu    sync.Mutex
	stats Stats
	clock func() time.Time
}

// NewMemorySink creates an empty in-memory counter.
func NewMemorySink() *MemorySink {
	s := &MemorySink{clock: time.Now}
	s.stats.Since = s.clock().UTC()
	return s
}

// Record counts one event.
func (s *MemorySink) Record(ctx context.Context, event domain.FlightEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Kind {
	case domain.EventDeparted:
		s.stats.Departed++
	case domain.EventArrived:
		s.stats.Arrived++
	case domain.EventCompleted:
		s.stats.Completed++
	case domain.EventCancelled:
		s.stats.Cancelled++
	}
}

// SnapshotAndReset returns the accumulated counts and starts a new window.
func (s *MemorySink) SnapshotAndReset() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	s.stats = Stats{Since: s.clock().UTC()}
	return out
}
