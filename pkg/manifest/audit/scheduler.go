package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic manifest verification on a cron schedule.
type Scheduler struct {
	verifier *Verifier
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a verification scheduler. An empty schedule disables
// periodic verification.
func NewScheduler(verifier *Verifier, schedule string) *Scheduler {
	return &Scheduler{
		verifier: verifier,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "manifest.audit.scheduler"),
	}
}

// Start begins scheduled verification.
//
// Common cron expressions:
//   - "0 4 * * *"   - Daily at 4 AM
//   - "0 */6 * * *" - Every 6 hours
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("verification schedule not configured, skipping scheduler")
		return nil
	}

	_, err := cron.ParseStandard(s.schedule)
	if err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err = s.cron.AddFunc(s.schedule, func() {
		s.runVerification(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule verification: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("manifest verification scheduler started",
		"schedule", s.schedule,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runVerification executes a verification pass.
func (s *Scheduler) runVerification(ctx context.Context) {
	s.logger.Info("starting scheduled manifest verification")
	s.verifier.VerifyAll(ctx)
}

// Stop stops the scheduler and waits for any running pass to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("manifest verification scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// NextRun returns the next scheduled verification time.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
