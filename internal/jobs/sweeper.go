// Package jobs holds the background maintenance work scheduled alongside the
// HTTP server. Today that is a single job: sweeping pending requests that
// nobody decided within the configured TTL.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/lfarias/go-keys-backend/internal/services"
)

// Sweeper expires stale pending requests on a cron schedule. A non-positive
// maxAge disables the sweeper entirely; requests then wait forever, which is
// the default for small deployments where the administration desk is the
// backstop.
type Sweeper struct {
	cron    *cron.Cron
	actions *services.ActionService

	schedule string
	maxAge   time.Duration
}

// NewSweeper builds a sweeper from the standard 5-field cron schedule and the
// request TTL.
func NewSweeper(actions *services.ActionService, schedule string, maxAge time.Duration) *Sweeper {
	return &Sweeper{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		actions:  actions,
		schedule: schedule,
		maxAge:   maxAge,
	}
}

// Enabled reports whether the sweeper will do any work when started.
func (s *Sweeper) Enabled() bool { return s.maxAge > 0 }

// Start registers the sweep job and starts the scheduler. Disabled sweepers
// start nothing and return nil.
func (s *Sweeper) Start() error {
	if !s.Enabled() {
		log.Info().Msg("pending-request sweeper disabled (ttl <= 0)")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().
		Str("schedule", s.schedule).
		Dur("max_age", s.maxAge).
		Msg("pending-request sweeper started")
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// run executes one sweep. Errors are logged, never fatal: the next tick
// retries whatever is left.
func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.actions.ExpirePending(ctx, s.maxAge)
	if err != nil {
		log.Error().Err(err).Int("expired", n).Msg("pending-request sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int("expired", n).Msg("expired stale pending requests")
	}
}
