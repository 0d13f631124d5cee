// Package notify delivers flight events to Discord.
//
// Delivery is at-most-once by design: each event gets a single send
// attempt, and a failed send is logged and counted but never retried. The
// poller has already marked the milestone reported by the time an event
// reaches the dispatcher.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/skybridge-va/flightwatch/internal/domain"
	"github.com/skybridge-va/flightwatch/internal/metrics"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, text string) SendResult
}

// AnalyticsSink records delivered events as a best-effort side effect.
type AnalyticsSink interface {
	Record(ctx context.Context, event domain.FlightEvent)
}

// SendResult reports the outcome of one delivery attempt.
type SendResult struct {
	Error    error
	Duration time.Duration
}

// Dispatcher consumes flight events from a channel and sends them.
type Dispatcher struct {
	sender       Sender
	analytics    AnalyticsSink // optional, nil = disabled
	metrics      metrics.Sink
	drainTimeout time.Duration
}

// DefaultDrainTimeout bounds how long buffered events are processed during
// shutdown.
const DefaultDrainTimeout = 30 * time.Second

// New creates a dispatcher.
func New(sender Sender) *Dispatcher {
	return &Dispatcher{
		sender:       sender,
		metrics:      metrics.NewNoopSink(),
		drainTimeout: DefaultDrainTimeout,
	}
}

// WithAnalytics attaches an analytics sink.
func (d *Dispatcher) WithAnalytics(sink AnalyticsSink) *Dispatcher {
	d.analytics = sink
	return d
}

// WithMetrics attaches a metrics sink.
func (d *Dispatcher) WithMetrics(sink metrics.Sink) *Dispatcher {
	d.metrics = sink
	return d
}

// WithDrainTimeout overrides the shutdown drain window.
func (d *Dispatcher) WithDrainTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.drainTimeout = timeout
	}
	return d
}

// Run processes events from the channel until the context is cancelled.
// After cancellation, it drains remaining buffered events with a timeout.
func (d *Dispatcher) Run(ctx context.Context, ch <-chan domain.FlightEvent) {
	for {
		select {
		case <-ctx.Done():
			d.drain(ch)
			return
		case event := <-ch:
			d.Dispatch(ctx, event)
		}
	}
}

// drain processes events left in the channel buffer after the shutdown
// signal. Uses a background context since the main one is cancelled.
func (d *Dispatcher) drain(ch <-chan domain.FlightEvent) {
	drainCtx, cancel := context.WithTimeout(context.Background(), d.drainTimeout)
	defer cancel()

	count := 0
	for {
		select {
		case <-drainCtx.Done():
			log.Printf("notify: drain timeout, processed %d events", count)
			return
		case event, ok := <-ch:
			if !ok {
				log.Printf("notify: drain complete, processed %d events", count)
				return
			}
			d.Dispatch(drainCtx, event)
			count++
		default:
			if count > 0 {
				log.Printf("notify: drain complete, processed %d events", count)
			}
			return
		}
	}
}

// Dispatch renders and sends one event. The outcome is logged and counted;
// a failed send is an accepted gap, not a retry candidate.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.FlightEvent) {
	attemptID := uuid.New()
	text := Format(event)

	result := d.sender.Send(ctx, text)

	if result.Error != nil {
		d.metrics.NotificationSent(string(event.Kind), metrics.OutcomeFailed)
		log.Printf("notify: send failed attempt=%s kind=%s flight=%s err=%v",
			attemptID, event.Kind, event.Flight.FlightID, result.Error)
		return
	}

	d.metrics.NotificationSent(string(event.Kind), metrics.OutcomeSuccess)
	log.Printf("notify: sent attempt=%s kind=%s flight=%s callsign=%s took=%s",
		attemptID, event.Kind, event.Flight.FlightID, event.Flight.Callsign,
		result.Duration.Round(time.Millisecond))

	if d.analytics != nil {
		d.analytics.Record(ctx, event)
	}
}
