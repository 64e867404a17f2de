// Package worker runs the background loops that keep session state tidy.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/hearthbot/hearth/internal/host/session"
)

// DefaultSweepInterval is used when a Sweeper is built without one.
const DefaultSweepInterval = 30 * time.Second

// Sweeper periodically expires sessions that outlived their limits.
// Expiring cancels the session's connection context, which unwinds any
// blocked prompt and times out the run it was carrying.
type Sweeper struct {
	sessions *session.Manager
	interval time.Duration
}

// NewSweeper creates a sweeper over the given manager.
func NewSweeper(sessions *session.Manager, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{sessions: sessions, interval: interval}
}

// Run sweeps on a ticker until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	swept := s.sessions.Sweep()
	for _, sess := range swept {
		sess.Expire()
	}
	if len(swept) > 0 {
		log.Printf("worker: expired %d session(s)", len(swept))
	}
}
