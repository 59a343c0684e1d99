// Package scheduler runs the periodic background jobs: homework reminder
// digests for opted-in parents and the session TTL sweep.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/cartable/internal/compose"
	"github.com/user/cartable/internal/delivery"
	"github.com/user/cartable/internal/session"
	"github.com/user/cartable/internal/types"
)

// reminderHorizon is how far ahead the digest looks for due homework.
const reminderHorizon = 48 * time.Hour

// sweepSchedule runs the session eviction hourly.
const sweepSchedule = "@every 1h"

// Scheduler fires cron jobs against the directory and session store.
type Scheduler struct {
	dir        types.Directory
	composer   *compose.Composer
	deliver    *delivery.Registry
	sessions   *session.Store
	schedule   string
	sessionTTL time.Duration
	cron       *cron.Cron
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a Scheduler. schedule is the cron expression for the
// homework digest; an empty schedule disables reminders but keeps the
// session sweep.
func New(dir types.Directory, composer *compose.Composer, deliver *delivery.Registry, sessions *session.Store, schedule string, sessionTTL time.Duration) *Scheduler {
	return &Scheduler{
		dir:        dir,
		composer:   composer,
		deliver:    deliver,
		sessions:   sessions,
		schedule:   schedule,
		sessionTTL: sessionTTL,
		cron:       cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the jobs and starts the cron ticker.
func (s *Scheduler) Start() error {
	if s.schedule != "" {
		if _, err := s.cron.AddFunc(s.schedule, s.remindHomework); err != nil {
			return err
		}
		slog.Info("homework reminders scheduled", "schedule", s.schedule)
	}

	if s.sessionTTL > 0 {
		if _, err := s.cron.AddFunc(sweepSchedule, s.sweepSessions); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the cron ticker and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// remindHomework sends each opted-in parent a digest of homework due within
// the horizon, one message per child with something due.
func (s *Scheduler) remindHomework() {
	ctx := context.Background()
	now := time.Now()

	parents, err := s.dir.Parents(ctx)
	if err != nil {
		slog.Error("reminder: list parents failed", "error", err)
		return
	}

	for _, parent := range parents {
		if !parent.Reminders {
			continue
		}
		children, err := s.dir.StudentsOf(ctx, parent.ID)
		if err != nil {
			slog.Error("reminder: children lookup failed", "parent", string(parent.ID), "error", err)
			continue
		}

		sender := types.NewSenderKey(parent.Channel, parent.Contact)
		for _, child := range children {
			items, err := s.dir.HomeworkOf(ctx, child.ID)
			if err != nil {
				slog.Error("reminder: homework lookup failed", "student", string(child.ID), "error", err)
				continue
			}
			digest := s.composer.Digest(child, items, now, reminderHorizon)
			if digest == "" {
				continue
			}
			if err := s.deliver.Deliver(sender, types.TextReply(digest)); err != nil {
				slog.Error("reminder delivery failed", "sender", string(sender), "error", err)
			}
		}
	}
}

func (s *Scheduler) sweepSessions() {
	if removed := s.sessions.Sweep(s.sessionTTL); removed > 0 {
		slog.Info("idle sessions evicted", "count", removed)
	}
}
