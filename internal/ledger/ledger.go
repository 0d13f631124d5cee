// Package ledger is the durable idempotency store for flight notifications.
//
// A milestone is marked reported if and only if a notification for it has
// been handed off for delivery. The ledger is bounded: past the high-water
// mark the oldest entries by insertion order are evicted down to the
// low-water mark. Eviction ignores flight state, so an active flight that
// outlives its slot can be re-reported if it resurfaces in the recent
// window. That bounded staleness is accepted, not fixed.
package ledger

import (
	"github.com/skybridge-va/flightwatch/internal/domain"
)

// Default watermarks.
const (
	DefaultHighWater = 100
	DefaultLowWater  = 50
)

// FlightRecord tracks which milestones of one flight have been reported.
// Milestones are append-only: once marked, never unmarked.
type FlightRecord struct {
	FlightID   string
	Milestones map[domain.Milestone]bool
}

// Ledger maps flight IDs to their reported milestones, preserving
// insertion order for eviction. It is not safe for concurrent use; the
// poll cycle is the only writer.
type Ledger struct {
	records   map[string]*FlightRecord
	order     []string
	highWater int
	lowWater  int
}

// New creates an empty ledger with the given watermarks. Non-positive or
// inverted watermarks fall back to the defaults.
func New(highWater, lowWater int) *Ledger {
	if highWater <= 0 || lowWater <= 0 || lowWater > highWater {
		highWater = DefaultHighWater
		lowWater = DefaultLowWater
	}
	return &Ledger{
		records:   make(map[string]*FlightRecord),
		highWater: highWater,
		lowWater:  lowWater,
	}
}

// HasReported reports whether the milestone was already reported for the
// flight. Unknown flights and unknown milestones both yield false.
func (l *Ledger) HasReported(flightID string, m domain.Milestone) bool {
	rec, ok := l.records[flightID]
	if !ok {
		return false
	}
	return rec.Milestones[m]
}

// MarkReported records that a notification for the milestone was emitted.
// Marking an already-reported milestone is a no-op. The flight record is
// created on first mark.
func (l *Ledger) MarkReported(flightID string, m domain.Milestone) {
	rec, ok := l.records[flightID]
	if !ok {
		rec = &FlightRecord{
			FlightID:   flightID,
			Milestones: make(map[domain.Milestone]bool),
		}
		l.records[flightID] = rec
		l.order = append(l.order, flightID)
	}
	rec.Milestones[m] = true
}

// EvictIfOversized drops the oldest entries by insertion order until the
// ledger holds at most the low-water mark, but only once the high-water
// mark is exceeded. Returns the number of evicted flights.
func (l *Ledger) EvictIfOversized() int {
	if len(l.order) <= l.highWater {
		return 0
	}
	drop := len(l.order) - l.lowWater
	for _, id := range l.order[:drop] {
		delete(l.records, id)
	}
	l.order = append([]string(nil), l.order[drop:]...)
	return drop
}

// Len returns the number of tracked flights.
func (l *Ledger) Len() int {
	return len(l.order)
}

// FlightIDs returns the tracked flight IDs in insertion order.
func (l *Ledger) FlightIDs() []string {
	return append([]string(nil), l.order...)
}

// record returns the record for a flight, or nil.
func (l *Ledger) record(flightID string) *FlightRecord {
	return l.records[flightID]
}
