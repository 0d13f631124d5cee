package channel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skybridge-va/flightwatch/internal/domain"
)

func newTestEvent() domain.FlightEvent {
	return domain.FlightEvent{
		ID:         uuid.New(),
		Kind:       domain.EventDeparted,
		Flight:     domain.FlightSummary{FlightID: "f1", Callsign: "SKY101"},
		ObservedAt: time.Now().UTC(),
	}
}

func TestEventBus_EmitAndReceive(t *testing.T) {
	bus := NewEventBus(10)
	event := newTestEvent()

	if err := bus.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	select {
	case got := <-bus.Channel():
		if got.ID != event.ID {
			t.Errorf("ID = %v, want %v", got.ID, event.ID)
		}
		if got.Kind != domain.EventDeparted {
			t.Errorf("Kind = %v, want departed", got.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event on channel")
	}
}

func TestEventBus_BufferFull(t *testing.T) {
	bus := NewEventBus(1, WithEmitTimeout(50*time.Millisecond))
	ctx := context.Background()

	if err := bus.Emit(ctx, newTestEvent()); err != nil {
		t.Fatalf("first Emit failed: %v", err)
	}

	err := bus.Emit(ctx, newTestEvent())
	if err != ErrBufferFull {
		t.Fatalf("err = %v, want ErrBufferFull", err)
	}
}

func TestEventBus_BufferFull_NoTimeout(t *testing.T) {
	bus := NewEventBus(1)
	ctx := context.Background()

	if err := bus.Emit(ctx, newTestEvent()); err != nil {
		t.Fatalf("first Emit failed: %v", err)
	}

	start := time.Now()
	if err := bus.Emit(ctx, newTestEvent()); err != ErrBufferFull {
		t.Fatalf("err = %v, want ErrBufferFull", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("Emit without timeout should fail immediately")
	}
}

func TestEventBus_EmitCancelled(t *testing.T) {
	bus := NewEventBus(1, WithEmitTimeout(5*time.Second))
	ctx, cancel := context.WithCancel(context.Background())

	if err := bus.Emit(ctx, newTestEvent()); err != nil {
		t.Fatalf("first Emit failed: %v", err)
	}

	cancel()
	if err := bus.Emit(ctx, newTestEvent()); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

type countingSink struct {
	sizeUpdates atomic.Int64
	emitErrors  atomic.Int64
}

func (s *countingSink) BufferSizeUpdate(size int) { s.sizeUpdates.Add(1) }
func (s *countingSink) EmitError()                { s.emitErrors.Add(1) }

func TestEventBus_Metrics(t *testing.T) {
	sink := &countingSink{}
	bus := NewEventBus(1, WithMetrics(sink))
	ctx := context.Background()

	if err := bus.Emit(ctx, newTestEvent()); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	_ = bus.Emit(ctx, newTestEvent()) // buffer full

	if got := sink.sizeUpdates.Load(); got != 1 {
		t.Errorf("size updates = %d, want 1", got)
	}
	if got := sink.emitErrors.Load(); got != 1 {
		t.Errorf("emit errors = %d, want 1", got)
	}
}
