package metrics

import "time"

// NoopSink is a no-op implementation of Sink.
// Used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

// NewNoopSink returns a no-op metrics sink.
func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) CycleStarted()                                                    {}
func (n *NoopSink) CycleCompleted(duration time.Duration, notified int, err error)   {}
func (n *NoopSink) FetchCompleted(endpoint, statusClass string, d time.Duration)     {}
func (n *NoopSink) NotificationSent(kind string, outcome string)                     {}
func (n *NoopSink) LedgerSizeUpdate(size int)                                        {}
func (n *NoopSink) LedgerEvicted(count int)                                          {}
func (n *NoopSink) BufferSizeUpdate(size int)                                        {}
func (n *NoopSink) EmitError()                                                       {}
