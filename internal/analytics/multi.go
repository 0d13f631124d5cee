package analytics

import (
	"context"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

// Recorder is implemented by all sinks in this package.
type Recorder interface {
	Record(ctx context.Context, event domain.FlightEvent)
}

// MultiSink fans one event out to several sinks.
type MultiSink struct {
	sinks []Recorder
}

// NewMultiSink combines sinks; nil entries are skipped.
func NewMultiSink(sinks ...Recorder) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Record forwards the event to every sink.
func (m *MultiSink) Record(ctx context.Context, event domain.FlightEvent) {
	for _, s := range m.sinks {
		s.Record(ctx, event)
	}
}
