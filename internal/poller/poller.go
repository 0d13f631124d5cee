// Package poller drives the fetch-detect-notify-persist cycle.
//
// Each cycle asks the airline API for ongoing and recently closed flights,
// emits one event per newly observed milestone, and persists the ledger.
// Milestones are gated independently by the ledger, not by sequence: a
// coarse poll interval can surface takeoff and landing in the same cycle
// and both are reported. The loop is never fatal; a cycle that fails is
// logged and the next tick proceeds.
package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skybridge-va/flightwatch/internal/domain"
	"github.com/skybridge-va/flightwatch/internal/ledger"
	"github.com/skybridge-va/flightwatch/internal/metrics"
)

// Endpoint names used for breaker and metrics labels.
const (
	endpointOngoing = "ongoing"
	endpointRecent  = "recent"
	endpointDetail  = "detail"
)

// FlightSource fetches flight snapshots from the airline system.
type FlightSource interface {
	ListActive(ctx context.Context) ([]domain.FlightSnapshot, error)
	ListRecentlyClosed(ctx context.Context, count int) ([]domain.FlightSnapshot, error)
	GetDetail(ctx context.Context, flightID string) (*domain.FlightSnapshot, error)
}

// EventEmitter hands a flight event to the delivery side. A nil return
// means the event was accepted; the milestone is then marked reported.
type EventEmitter interface {
	Emit(ctx context.Context, event domain.FlightEvent) error
}

// Persister writes the ledger back to durable storage.
type Persister interface {
	Save(l *ledger.Ledger) error
}

// Breaker gates upstream endpoints after repeated failures.
type Breaker interface {
	Allow(endpoint string) error
	RecordSuccess(endpoint string)
	RecordFailure(endpoint string)
}

// Config holds poller configuration.
type Config struct {
	// Interval between poll cycles.
	Interval time.Duration

	// RecentCount is how many recently closed flights to request.
	RecentCount int
}

// Status is a read-only snapshot for the status endpoint and presence loop.
type Status struct {
	StartedAt     time.Time
	LastCycleAt   time.Time
	CyclesRun     int
	LastCycleErr  string
	ActiveFlights int
	LedgerSize    int
}

// Poller owns the ledger and runs the poll loop. The ledger is touched
// only from this one control flow; no locking is needed around it.
type Poller struct {
	config    Config
	source    FlightSource
	emitter   EventEmitter
	ledger    *ledger.Ledger
	persister Persister
	breaker   Breaker // optional, nil = disabled
	metrics   metrics.Sink
	clock     func() time.Time

	// firstRun suppresses notifications for the first successful
	// recently-closed fetch so restarts do not replay history.
	firstRun bool

	statusMu sync.Mutex
	status   Status
}

// New creates a poller.
func New(config Config, source FlightSource, emitter EventEmitter, l *ledger.Ledger, persister Persister) *Poller {
	return &Poller{
		config:    config,
		source:    source,
		emitter:   emitter,
		ledger:    l,
		persister: persister,
		metrics:   metrics.NewNoopSink(),
		clock:     time.Now,
		firstRun:  true,
	}
}

// WithMetrics attaches a metrics sink.
func (p *Poller) WithMetrics(sink metrics.Sink) *Poller {
	p.metrics = sink
	return p
}

// WithBreaker attaches a circuit breaker.
func (p *Poller) WithBreaker(b Breaker) *Poller {
	p.breaker = b
	return p
}

// Run starts the poll loop. It blocks until ctx is cancelled. The first
// cycle runs immediately; later cycles follow the ticker. Cycles never
// overlap: the next fetch cannot begin before this cycle's save returned.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	log.Printf("poller: started (interval=%s, recent=%d, ledger=%d flights)",
		p.config.Interval, p.config.RecentCount, p.ledger.Len())

	p.statusMu.Lock()
	p.status.StartedAt = p.clock().UTC()
	p.statusMu.Unlock()

	p.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("poller: stopped")
			return
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

// cycle runs one iteration and records its outcome.
func (p *Poller) cycle(ctx context.Context) {
	start := p.clock()
	p.metrics.CycleStarted()

	notified, active, err := p.runCycle(ctx)

	duration := p.clock().Sub(start)
	p.metrics.CycleCompleted(duration, notified, err)

	p.statusMu.Lock()
	p.status.LastCycleAt = p.clock().UTC()
	p.status.CyclesRun++
	p.status.LedgerSize = p.ledger.Len()
	if active >= 0 {
		p.status.ActiveFlights = active
	}
	if err != nil {
		p.status.LastCycleErr = err.Error()
	} else {
		p.status.LastCycleErr = ""
	}
	p.statusMu.Unlock()

	if err != nil {
		log.Printf("poller: cycle error: %v", err)
	}
}

// runCycle performs one fetch-detect-notify-persist pass. Panics are
// contained here so a malformed upstream payload cannot kill the loop.
// Returns the number of notifications emitted and the active flight count
// (-1 when the active fetch was skipped or failed).
func (p *Poller) runCycle(ctx context.Context) (notified int, active int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	active = -1

	if p.allow(endpointOngoing) {
		flights, ferr := p.fetchActive(ctx)
		if ferr != nil {
			log.Printf("poller: active fetch failed, skipping sub-step: %v", ferr)
		} else {
			active = len(flights)
			for _, f := range flights {
				notified += p.processActive(ctx, f)
			}
		}
	}

	if p.allow(endpointRecent) {
		recent, ferr := p.fetchRecent(ctx)
		if ferr != nil {
			log.Printf("poller: recent fetch failed, skipping sub-step: %v", ferr)
		} else if p.firstRun {
			p.suppressHistory(recent)
			p.firstRun = false
		} else {
			for _, f := range recent {
				notified += p.processRecent(ctx, f)
			}
		}
	}

	if evicted := p.ledger.EvictIfOversized(); evicted > 0 {
		p.metrics.LedgerEvicted(evicted)
		log.Printf("poller: evicted %d ledger entries (size=%d)", evicted, p.ledger.Len())
	}
	p.metrics.LedgerSizeUpdate(p.ledger.Len())

	if serr := p.persister.Save(p.ledger); serr != nil {
		// Dropped on purpose: a transient disk failure must not stop polling.
		log.Printf("poller: ledger save failed: %v", serr)
	}

	return notified, active, err
}

func (p *Poller) fetchActive(ctx context.Context) ([]domain.FlightSnapshot, error) {
	start := p.clock()
	flights, err := p.source.ListActive(ctx)
	p.metrics.FetchCompleted(endpointOngoing, metrics.ClassifyError(err), p.clock().Sub(start))
	p.recordOutcome(endpointOngoing, err)
	return flights, err
}

func (p *Poller) fetchRecent(ctx context.Context) ([]domain.FlightSnapshot, error) {
	start := p.clock()
	flights, err := p.source.ListRecentlyClosed(ctx, p.config.RecentCount)
	p.metrics.FetchCompleted(endpointRecent, metrics.ClassifyError(err), p.clock().Sub(start))
	p.recordOutcome(endpointRecent, err)
	return flights, err
}

// processActive reports takeoff and landing independently. Both can fire
// in the same cycle when the upstream data lags behind real events.
func (p *Poller) processActive(ctx context.Context, f domain.FlightSnapshot) int {
	n := 0
	if f.TakeoffObserved() && !p.ledger.HasReported(f.ID, domain.MilestoneTakeoff) {
		if p.emit(ctx, domain.EventDeparted, f.Summary()) {
			p.ledger.MarkReported(f.ID, domain.MilestoneTakeoff)
			n++
		}
	}
	if f.LandingObserved() && !p.ledger.HasReported(f.ID, domain.MilestoneLanding) {
		if p.emit(ctx, domain.EventArrived, f.Summary()) {
			p.ledger.MarkReported(f.ID, domain.MilestoneLanding)
			n++
		}
	}
	return n
}

// processRecent handles the terminal outcomes. Completion and cancellation
// are mutually exclusive: whichever is observed first wins, and closed
// takes precedence when a snapshot carries both markers.
func (p *Poller) processRecent(ctx context.Context, f domain.FlightSnapshot) int {
	if p.ledger.HasReported(f.ID, domain.MilestoneCompletion) {
		return 0
	}

	switch {
	case f.Closed:
		start := p.clock()
		detail, err := p.source.GetDetail(ctx, f.ID)
		p.metrics.FetchCompleted(endpointDetail, metrics.ClassifyError(err), p.clock().Sub(start))
		if err != nil || detail == nil {
			// Skipped this cycle only; nothing was marked, so the flight
			// stays eligible next cycle.
			log.Printf("poller: detail fetch for %s unavailable, retrying next cycle (err=%v)", f.ID, err)
			return 0
		}
		if p.emit(ctx, domain.EventCompleted, detail.Summary()) {
			p.ledger.MarkReported(f.ID, domain.MilestoneCompletion)
			return 1
		}
	case f.Deleted:
		if p.emit(ctx, domain.EventCancelled, f.Summary()) {
			// Completion is marked for cancelled flights too, so neither
			// terminal outcome can fire twice.
			p.ledger.MarkReported(f.ID, domain.MilestoneCompletion)
			return 1
		}
	}
	return 0
}

// suppressHistory marks every flight in the first recently-closed feed as
// completion-reported without notifying, so a restart does not replay
// history into the channel.
func (p *Poller) suppressHistory(recent []domain.FlightSnapshot) {
	suppressed := 0
	for _, f := range recent {
		if !p.ledger.HasReported(f.ID, domain.MilestoneCompletion) {
			p.ledger.MarkReported(f.ID, domain.MilestoneCompletion)
			suppressed++
		}
	}
	log.Printf("poller: first run, suppressed %d historical flights", suppressed)
}

// emit hands an event to the bus. Only an accepted event lets the caller
// mark the milestone; a full buffer means retry next cycle.
func (p *Poller) emit(ctx context.Context, kind domain.EventKind, f domain.FlightSummary) bool {
	event := domain.FlightEvent{
		ID:         uuid.New(),
		Kind:       kind,
		Flight:     f,
		ObservedAt: p.clock().UTC(),
	}
	if err := p.emitter.Emit(ctx, event); err != nil {
		log.Printf("poller: emit %s for %s failed: %v", kind, f.FlightID, err)
		return false
	}
	return true
}

func (p *Poller) allow(endpoint string) bool {
	if p.breaker == nil {
		return true
	}
	if err := p.breaker.Allow(endpoint); err != nil {
		log.Printf("poller: %s endpoint circuit open, skipping", endpoint)
		return false
	}
	return true
}

func (p *Poller) recordOutcome(endpoint string, err error) {
	if p.breaker == nil {
		return
	}
	if err != nil {
		p.breaker.RecordFailure(endpoint)
	} else {
		p.breaker.RecordSuccess(endpoint)
	}
}

// Status returns a snapshot of the poller's state.
func (p *Poller) Status() Status {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	return p.status
}

// ActiveFlights returns the last observed active flight count.
func (p *Poller) ActiveFlights() int {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	return p.status.ActiveFlights
}
