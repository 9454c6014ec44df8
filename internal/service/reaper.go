package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cx-tal-miterani/ticket-checkout/internal/models"
	"github.com/go-co-op/gocron/v2"
)

// Reap drops terminal sessions that closed more than grace ago and whose
// payment settled. Their outcome is written to the outcome cache first; a
// session whose outcome cannot be cached stays in memory for the next run.
func (s *checkoutServiceImpl) Reap(ctx context.Context, grace time.Duration) int {
	now := s.opts.Clock.Now()

	s.mu.RLock()
	var due []models.Outcome
	for id, outcome := range s.outcomes {
		if outcome.PaymentStatus == models.PaymentStatusPending {
			continue
		}
		if now.Sub(outcome.ClosedAt) < grace {
			continue
		}
		if _, ok := s.sessions[id]; ok {
			due = append(due, outcome)
		}
	}
	s.mu.RUnlock()

	reaped := 0
	for _, outcome := range due {
		if s.opts.Outcomes != nil {
			if err := s.opts.Outcomes.SaveOutcome(ctx, outcome); err != nil {
				s.opts.Logger.Warn("Failed to cache outcome", "sessionId", outcome.SessionID, "error", err)
				continue
			}
		}
		s.mu.Lock()
		delete(s.sessions, outcome.SessionID)
		delete(s.outcomes, outcome.SessionID)
		s.mu.Unlock()
		reaped++
	}
	if reaped > 0 {
		s.opts.Logger.Info("Reaped sessions", "count", reaped)
	}
	return reaped
}

// StartReaper schedules svc.Reap every interval on a gocron scheduler. The
// caller shuts the scheduler down.
func StartReaper(svc CheckoutService, interval, grace time.Duration, opts ...gocron.SchedulerOption) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func(ctx context.Context) {
			svc.Reap(ctx, grace)
		}),
		gocron.WithName("session-reaper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule reaper: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}
