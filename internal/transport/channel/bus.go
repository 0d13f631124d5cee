// Package channel provides the in-memory event bus between the poller and
// the notification dispatcher.
package channel

import (
	"context"
	"errors"
	"time"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

// ErrBufferFull is returned when an emit cannot be accepted in time. The
// poller treats this as a failed emit: the milestone is not marked reported
// and the flight retries next cycle.
var ErrBufferFull = errors.New("event bus buffer full")

// MetricsSink records bus metrics. Methods must be non-blocking.
type MetricsSink interface {
	BufferSizeUpdate(size int)
	EmitError()
}

// Option configures the EventBus.
type Option func(*EventBus)

// WithEmitTimeout bounds how long Emit blocks on a full buffer before
// returning ErrBufferFull. Zero means fail immediately.
func WithEmitTimeout(d time.Duration) Option {
	return func(b *EventBus) { b.emitTimeout = d }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(sink MetricsSink) Option {
	return func(b *EventBus) { b.metrics = sink }
}

// EventBus is a buffered channel of flight events.
type EventBus struct {
	ch          chan domain.FlightEvent
	emitTimeout time.Duration
	metrics     MetricsSink
}

// NewEventBus creates a bus with the given buffer capacity.
func NewEventBus(buffer int, opts ...Option) *EventBus {
	b := &EventBus{
		ch: make(chan domain.FlightEvent, buffer),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emit enqueues an event. It fails with ErrBufferFull when the buffer stays
// full past the emit timeout, or with the context error on cancellation.
func (b *EventBus) Emit(ctx context.Context, event domain.FlightEvent) error {
	select {
	case b.ch <- event:
		b.updateSize()
		return nil
	default:
	}

	if b.emitTimeout <= 0 {
		b.recordEmitError()
		return ErrBufferFull
	}

	timer := time.NewTimer(b.emitTimeout)
	defer timer.Stop()

	select {
	case b.ch <- event:
		b.updateSize()
		return nil
	case <-timer.C:
		b.recordEmitError()
		return ErrBufferFull
	case <-ctx.Done():
		b.recordEmitError()
		return ctx.Err()
	}
}

// Channel returns the receive side of the bus.
func (b *EventBus) Channel() <-chan domain.FlightEvent {
	return b.ch
}

func (b *EventBus) updateSize() {
	if b.metrics != nil {
		b.metrics.BufferSizeUpdate(len(b.ch))
	}
}

func (b *EventBus) recordEmitError() {
	if b.metrics != nil {
		b.metrics.EmitError()
	}
}
