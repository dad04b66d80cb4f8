// Package scheduler runs the sandbox's periodic loan sweeps: approved loans
// disburse shortly after approval, and due installments auto-collect
// overnight the way the real bank's batch jobs do.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tellerdesk-dev/tellerdesk/internal/loans"
)

const (
	disburseSpec = "@every 1m"
	collectSpec  = "0 2 * * *" // daily at 02:00
)

// Scheduler owns the cron runner for the loan sweeps
type Scheduler struct {
	cron   *cron.Cron
	loans  *loans.Service
	logger zerolog.Logger
}

// New creates a scheduler wired to the loans service
func New(loansService *loans.Service, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		loans:  loansService,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the sweeps and starts the cron runner. Both sweeps also
// run once immediately so a restarted sandbox catches up instead of
// waiting a cycle.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(disburseSpec, s.loans.DisburseApproved); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(collectSpec, func() {
		s.loans.CollectDue(time.Now())
	}); err != nil {
		return err
	}

	go func() {
		s.loans.DisburseApproved()
		s.loans.CollectDue(time.Now())
	}()

	s.cron.Start()
	s.logger.Info().
		Str("disburse", disburseSpec).
		Str("collect", collectSpec).
		Msg("Loan sweeps scheduled")
	return nil
}

// Stop halts the cron runner and waits for running sweeps to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Loan sweeps stopped")
}
