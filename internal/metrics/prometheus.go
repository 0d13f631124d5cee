package metrics

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// All methods are non-blocking and fire-and-forget.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	// Poll cycle metrics
	cyclesTotal          prometheus.Counter
	cycleErrorsTotal     prometheus.Counter
	notificationsEmitted prometheus.Counter
	cycleDuration        prometheus.Histogram

	// Upstream fetch metrics
	fetchesTotal  *prometheus.CounterVec
	fetchDuration prometheus.Histogram

	// Notification metrics
	notificationsSentTotal *prometheus.CounterVec

	// Ledger metrics
	ledgerSize     prometheus.Gauge
	evictionsTotal prometheus.Counter

	// Event bus metrics
	bufferSize      prometheus.Gauge
	emitErrorsTotal prometheus.Counter
}

// NewPrometheusSink creates a new Prometheus metrics sink.
// Metrics that fail to register are logged and left unexported.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{}
	s.initCycleMetrics(reg)
	s.initFetchMetrics(reg)
	s.initNotificationMetrics(reg)
	s.initLedgerMetrics(reg)
	s.initEventBusMetrics(reg)
	return s
}

func (s *PrometheusSink) initCycleMetrics(reg prometheus.Registerer) {
	s.cyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightwatch_poller_cycles_total",
		Help: "Total number of poll cycles run.",
	})
	s.cycleErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightwatch_poller_cycle_errors_total",
		Help: "Total number of poll cycles that ended with an error.",
	})
	s.notificationsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightwatch_poller_notifications_emitted_total",
		Help: "Total number of milestone notifications emitted by the poller.",
	})
	s.cycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightwatch_poller_cycle_duration_seconds",
		Help:    "Duration of each poll cycle in seconds.",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	s.register(reg, s.cyclesTotal, "flightwatch_poller_cycles_total")
	s.register(reg, s.cycleErrorsTotal, "flightwatch_poller_cycle_errors_total")
	s.register(reg, s.notificationsEmitted, "flightwatch_poller_notifications_emitted_total")
	s.register(reg, s.cycleDuration, "flightwatch_poller_cycle_duration_seconds")
}

func (s *PrometheusSink) initFetchMetrics(reg prometheus.Registerer) {
	s.fetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightwatch_fetches_total",
		Help: "Total number of upstream API fetches.",
	}, []string{"endpoint", "status_class"})

	s.fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightwatch_fetch_duration_seconds",
		Help:    "Upstream API request latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	s.register(reg, s.fetchesTotal, "flightwatch_fetches_total")
	s.register(reg, s.fetchDuration, "flightwatch_fetch_duration_seconds")
}

func (s *PrometheusSink) initNotificationMetrics(reg prometheus.Registerer) {
	s.notificationsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flightwatch_notifications_sent_total",
		Help: "Total number of notification delivery attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	s.register(reg, s.notificationsSentTotal, "flightwatch_notifications_sent_total")
}

func (s *PrometheusSink) initLedgerMetrics(reg prometheus.Registerer) {
	s.ledgerSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightwatch_ledger_size",
		Help: "Number of flights currently tracked in the ledger.",
	})
	s.evictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightwatch_ledger_evictions_total",
		Help: "Total number of ledger entries evicted.",
	})

	s.register(reg, s.ledgerSize, "flightwatch_ledger_size")
	s.register(reg, s.evictionsTotal, "flightwatch_ledger_evictions_total")
}

func (s *PrometheusSink) initEventBusMetrics(reg prometheus.Registerer) {
	s.bufferSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flightwatch_eventbus_buffer_size",
		Help: "Current number of events in the event bus buffer.",
	})
	s.emitErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flightwatch_eventbus_emit_errors_total",
		Help: "Total number of emit errors (buffer full).",
	})

	s.register(reg, s.bufferSize, "flightwatch_eventbus_buffer_size")
	s.register(reg, s.emitErrorsTotal, "flightwatch_eventbus_emit_errors_total")
}

// register attempts to register a collector, logging any errors without
// propagating them.
func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil {
		log.Printf("metrics: failed to register %s: %v", name, err)
	}
}

// Poll cycle metrics implementation

func (s *PrometheusSink) CycleStarted() {
	s.cyclesTotal.Inc()
}

func (s *PrometheusSink) CycleCompleted(duration time.Duration, notified int, err error) {
	s.cycleDuration.Observe(duration.Seconds())
	s.notificationsEmitted.Add(float64(notified))
	if err != nil {
		s.cycleErrorsTotal.Inc()
	}
}

// Upstream fetch metrics implementation

func (s *PrometheusSink) FetchCompleted(endpoint string, statusClass string, duration time.Duration) {
	s.fetchesTotal.WithLabelValues(endpoint, statusClass).Inc()
	s.fetchDuration.Observe(duration.Seconds())
}

// Notification metrics implementation

func (s *PrometheusSink) NotificationSent(kind string, outcome string) {
	s.notificationsSentTotal.WithLabelValues(kind, outcome).Inc()
}

// Ledger metrics implementation

func (s *PrometheusSink) LedgerSizeUpdate(size int) {
	s.ledgerSize.Set(float64(size))
}

func (s *PrometheusSink) LedgerEvicted(count int) {
	s.evictionsTotal.Add(float64(count))
}

// Event bus metrics implementation

func (s *PrometheusSink) BufferSizeUpdate(size int) {
	s.bufferSize.Set(float64(size))
}

func (s *PrometheusSink) EmitError() {
	s.emitErrorsTotal.Inc()
}
