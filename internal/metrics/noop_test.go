package metrics

import (
	"errors"
	"testing"
	"time"
)

// Compile-time checks that both sinks satisfy the interface.
var (
	_ Sink = (*NoopSink)(nil)
	_ Sink = (*PrometheusSink)(nil)
)

func TestNoopSink_AllMethodsSafe(t *testing.T) {
	sink := NewNoopSink()

	sink.CycleStarted()
	sink.CycleCompleted(time.Second, 2, errors.New("boom"))
	sink.FetchCompleted("ongoing", StatusClassOK, time.Millisecond)
	sink.NotificationSent("departed", OutcomeSuccess)
	sink.LedgerSizeUpdate(10)
	sink.LedgerEvicted(5)
	sink.BufferSizeUpdate(1)
	sink.EmitError()
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, StatusClassOK},
		{"timeout", errors.New("context deadline exceeded"), StatusClassTimeout},
		{"client timeout", errors.New("Client.Timeout exceeded while awaiting headers"), StatusClassTimeout},
		{"refused", errors.New("dial tcp 127.0.0.1:443: connection refused"), StatusClassConnectionError},
		{"dns", errors.New("no such host"), StatusClassConnectionError},
		{"status", errors.New("unexpected status 502"), StatusClassOtherError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}
