// Package presence keeps the bot's Discord status line in sync with the
// number of flights currently in the air.
package presence

import (
	"context"
	"fmt"
	"log"
	"time"
)

// StatusUpdater is the slice of the Discord session the updater needs.
type StatusUpdater interface {
	UpdateGameStatus(idle int, name string) error
}

// Updater periodically rewrites the bot's activity text.
type Updater struct {
	session  StatusUpdater
	active   func() int
	interval time.Duration

	lastText string
}

// New creates an updater. active reports the current in-air flight count;
// a negative value means the count is not known yet.
func New(session StatusUpdater, active func() int, interval time.Duration) *Updater {
	return &Updater{
		session:  session,
		active:   active,
		interval: interval,
	}
}

// Run updates the status on a ticker until ctx is cancelled. The first
// update fires immediately so the bot never sits without a status line.
func (u *Updater) Run(ctx context.Context) {
	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	log.Printf("presence: started (interval=%s)", u.interval)
	u.update()

	for {
		select {
		case <-ctx.Done():
			log.Println("presence: stopped")
			return
		case <-ticker.C:
			u.update()
		}
	}
}

// update pushes the status text, skipping the call when nothing changed.
// Discord rate-limits presence updates aggressively.
func (u *Updater) update() {
	text := statusText(u.active())
	if text == u.lastText {
		return
	}
	if err := u.session.UpdateGameStatus(0, text); err != nil {
		log.Printf("presence: update failed: %v", err)
		return
	}
	u.lastText = text
}

func statusText(active int) string {
	switch {
	case active < 0:
		return "waiting for flight data"
	case active == 0:
		return "no flights in the air"
	case active == 1:
		return "1 flight in the air"
	default:
		return fmt.Sprintf("%d flights in the air", active)
	}
}
