// Package reclaim removes rows nobody can reach anymore: sessions past
// their expiration and lists without a single permission grant.
package reclaim

import (
	"context"
	"time"

	"github.com/andrebq/jotbox/internal/logutil"
	"github.com/andrebq/jotbox/notebook"
)

type (
	// Job is a recurring two-pass sweep over one notebook. The passes
	// are independent: a failure in one is logged and the other still
	// runs, the job never brings the host process down.
	Job struct {
		Book *notebook.Control

		// InitialDelay holds the first sweep back so startup is not
		// competing with it for the database.
		InitialDelay time.Duration
		Interval     time.Duration
	}
)

const (
	DefaultInitialDelay = 10 * time.Second
	DefaultInterval     = time.Hour
)

// Run sweeps once after InitialDelay and then on every Interval tick
// until ctx is canceled. It always returns ctx.Err().
func (j Job) Run(ctx context.Context) error {
	delay := j.InitialDelay
	if delay <= 0 {
		delay = DefaultInitialDelay
	}
	interval := j.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	first := time.NewTimer(delay)
	defer first.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-first.C:
	}
	j.Sweep(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs both passes once. Outcomes are logged, storage failures
// are swallowed: reclamation is garbage collection, not a request path.
func (j Job) Sweep(ctx context.Context) {
	log := logutil.GetOrDefault(ctx)
	sessions, err := j.Book.DeleteExpiredSessions(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Unable to reclaim expired sessions")
	} else {
		log.Info().Int64("sessions", sessions).Msg("Reclaimed expired sessions")
	}
	lists, err := j.Book.DeleteOrphanLists(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Unable to reclaim orphan lists")
	} else {
		log.Info().Int64("lists", lists).Msg("Reclaimed orphan lists")
	}
}
