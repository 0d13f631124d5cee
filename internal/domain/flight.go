package domain

import (
	"time"

	"github.com/google/uuid"
)

// Milestone is an observable lifecycle event of a flight. Each milestone
// triggers at most one notification per flight.
type Milestone string

const (
	MilestoneTakeoff    Milestone = "takeoff"
	MilestoneLanding    Milestone = "landing"
	MilestoneCompletion Milestone = "completion"
)

// Airport identifies one end of a route.
type Airport struct {
	ICAO string `json:"icao"`
	Name string `json:"name"`
}

// FlightTimes holds the upstream milestone timestamps. A nil field means
// the milestone has not been observed by the airline system yet.
type FlightTimes struct {
	Out *time.Time `json:"out"`
	Off *time.Time `json:"off"`
	On  *time.Time `json:"on"`
	In  *time.Time `json:"in"`
}

// FlightResult carries post-flight figures, present only on closed flights.
type FlightResult struct {
	LandingRate *float64 `json:"landingRate"`
	MaxG        *float64 `json:"maxG"`
}

// FlightSnapshot is a point-in-time read of a flight as returned by the
// upstream API. It is treated as opaque input: beyond presence checks on
// the time fields and the closed/deleted markers, nothing is validated.
type FlightSnapshot struct {
	ID           string        `json:"_id"`
	Callsign     string        `json:"callsign"`
	FlightNumber string        `json:"flightNumber"`
	PilotName    string        `json:"pilotName"`
	Network      string        `json:"network"`
	Aircraft     string        `json:"aircraft"`
	Departure    Airport       `json:"dep"`
	Arrival      Airport       `json:"arr"`
	Times        FlightTimes   `json:"times"`
	Result       *FlightResult `json:"result"`
	Closed       bool          `json:"close"`
	Deleted      bool          `json:"deleted"`
}

// TakeoffObserved reports whether the upstream system has recorded a takeoff.
func (s FlightSnapshot) TakeoffObserved() bool { return s.Times.Off != nil }

// LandingObserved reports whether the upstream system has recorded a landing.
func (s FlightSnapshot) LandingObserved() bool { return s.Times.On != nil }

// Summary extracts the presentation fields used in notifications.
func (s FlightSnapshot) Summary() FlightSummary {
	sum := FlightSummary{
		FlightID:     s.ID,
		Callsign:     s.Callsign,
		FlightNumber: s.FlightNumber,
		PilotName:    s.PilotName,
		Network:      s.Network,
		Aircraft:     s.Aircraft,
		Departure:    s.Departure,
		Arrival:      s.Arrival,
	}
	if s.Result != nil {
		sum.LandingRate = s.Result.LandingRate
		sum.MaxG = s.Result.MaxG
	}
	return sum
}

// FlightSummary is what the notification layer needs to render a message.
type FlightSummary struct {
	FlightID     string
	Callsign     string
	FlightNumber string
	PilotName    string
	Network      string
	Aircraft     string
	Departure    Airport
	Arrival      Airport
	LandingRate  *float64
	MaxG         *float64
}

// EventKind is the notification type carried by a FlightEvent.
type EventKind string

const (
	EventDeparted  EventKind = "departed"
	EventArrived   EventKind = "arrived"
	EventCompleted EventKind = "completed"
	EventCancelled EventKind = "cancelled"
)

// FlightEvent is emitted by the poller when a milestone is newly observed.
type FlightEvent struct {
	ID         uuid.UUID
	Kind       EventKind
	Flight     FlightSummary
	ObservedAt time.Time
}
