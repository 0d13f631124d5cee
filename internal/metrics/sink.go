package metrics

import (
	"strings"
	"time"
)

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations MUST NOT block or
// propagate errors. If the backend is unavailable, implementations log
// warnings and continue.
type Sink interface {
	// Poll cycle metrics
	CycleStarted()
	CycleCompleted(duration time.Duration, notified int, err error)

	// Upstream fetch metrics
	FetchCompleted(endpoint string, statusClass string, duration time.Duration)

	// Notification metrics
	NotificationSent(kind string, outcome string)

	// Ledger metrics
	LedgerSizeUpdate(size int)
	LedgerEvicted(count int)

	// Event bus metrics
	BufferSizeUpdate(size int)
	EmitError()
}

// Outcome constants for NotificationSent.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// StatusClass constants for FetchCompleted.
const (
	StatusClassOK              = "ok"
	StatusClassTimeout         = "timeout"
	StatusClassConnectionError = "connection_error"
	StatusClassOtherError      = "other_error"
)

// ClassifyError maps a fetch error to a bounded-cardinality status class.
func ClassifyError(err error) string {
	if err == nil {
		return StatusClassOK
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return StatusClassTimeout
	}
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "network is unreachable") || strings.Contains(msg, "dial") {
		return StatusClassConnectionError
	}
	return StatusClassOtherError
}
