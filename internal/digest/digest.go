// Package digest posts a scheduled summary of the day's flight activity.
package digest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/skybridge-va/flightwatch/internal/analytics"
	"github.com/skybridge-va/flightwatch/internal/notify"
)

// StatsSource yields the accumulated counts since the last digest.
type StatsSource interface {
	SnapshotAndReset() analytics.Stats
}

// Digest runs a cron schedule and posts one summary message per firing.
type Digest struct {
	source StatsSource
	sender notify.Sender
	cron   *cron.Cron
}

// New builds a digest on the given cron expression (standard 5-field
// syntax) in the given timezone.
func New(spec, timezone string, source StatsSource, sender notify.Sender) (*Digest, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("digest: load timezone %q: %w", timezone, err)
	}

	d := &Digest{
		source: source,
		sender: sender,
		cron:   cron.New(cron.WithLocation(loc)),
	}

	if _, err := d.cron.AddFunc(spec, d.post); err != nil {
		return nil, fmt.Errorf("digest: invalid schedule %q: %w", spec, err)
	}
	return d, nil
}

// Start begins the schedule in a background goroutine.
func (d *Digest) Start() {
	d.cron.Start()
	log.Println("digest: schedule started")
}

// Stop halts the schedule and waits for a running post to finish.
func (d *Digest) Stop() {
	<-d.cron.Stop().Done()
	log.Println("digest: schedule stopped")
}

// post snapshots the window and sends the summary. An empty window posts
// nothing; a quiet day is not worth a message.
func (d *Digest) post() {
	stats := d.source.SnapshotAndReset()
	if stats.Total() == 0 {
		log.Println("digest: no activity in window, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := d.sender.Send(ctx, FormatStats(stats))
	if result.Error != nil {
		log.Printf("digest: post failed: %v", result.Error)
		return
	}
	log.Printf("digest: posted summary (%d events)", stats.Total())
}

// FormatStats renders the digest message.
func FormatStats(stats analytics.Stats) string {
	return fmt.Sprintf(
		"📊 **Daily flight summary** (since %s)\n"+
			"🛫 Departed: %d\n"+
			"🛬 Arrived: %d\n"+
			"✅ Completed: %d\n"+
			"🚫 Cancelled: %d",
		stats.Since.Format("Jan 2 15:04 MST"),
		stats.Departed, stats.Arrived, stats.Completed, stats.Cancelled)
}
