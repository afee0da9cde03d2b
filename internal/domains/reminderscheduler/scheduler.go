// Package reminderscheduler runs the fixed-cadence sweep that promotes due
// reminders into task.due events.
package reminderscheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xpanvictor/xarvis/internal/domains/task"
	"github.com/xpanvictor/xarvis/internal/eventbus"
	"github.com/xpanvictor/xarvis/pkg/Logger"
)

const DefaultBatchSize = 200

// Config tunes the sweep cadence and claim size.
type Config struct {
	Interval  time.Duration
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 60 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

// Scheduler polls for due reminders on a fixed cadence. Each tick reads the
// clock exactly once so every row claimed in the same sweep is judged
// against the same instant. The cadence itself is expressed as a
// robfig/cron/v3 ConstantDelaySchedule rather than a raw time.Ticker: the
// same "resolve the next fire time, sleep until it, repeat" primitive an
// asynq-backed scheduler pulls cron in for, here driving the sweep loop
// directly.
type Scheduler struct {
	repo     task.Repository
	bus      eventbus.Bus
	logger   *Logger.Logger
	cfg      Config
	schedule cron.Schedule
	clock    func() time.Time
}

func NewScheduler(repo task.Repository, bus eventbus.Bus, logger *Logger.Logger, cfg Config) *Scheduler {
	cfg = cfg.withDefaults()
	return &Scheduler{
		repo:     repo,
		bus:      bus,
		logger:   logger,
		cfg:      cfg,
		schedule: cron.ConstantDelaySchedule{Delay: cfg.Interval},
		clock:    time.Now,
	}
}

// SetClock overrides the scheduler's notion of "now". Production callers
// never need this; it lets tests pin the instant a sweep judges against.
func (s *Scheduler) SetClock(clock func() time.Time) {
	s.clock = clock
}

func (s *Scheduler) Run(ctx context.Context) error {
	for {
		next := s.schedule.Next(s.clock())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if err := s.sweep(ctx); err != nil {
				s.logger.Errorw("reminder sweep failed", "error", err)
			}
		}
	}
}

// Sweep runs a single claim-then-publish cycle immediately, bypassing the
// cadence schedule. Production code never needs this; Run drives sweep on
// its own cadence. Tests use it to assert at-most-once emission without
// waiting on a real clock.
func (s *Scheduler) Sweep(ctx context.Context) error {
	return s.sweep(ctx)
}

func (s *Scheduler) sweep(ctx context.Context) error {
	now := s.clock()
	due, err := s.repo.ClaimDueReminders(now, s.cfg.BatchSize)
	if err != nil {
		return err
	}
	for _, t := range due {
		payload := task.TaskDuePayload{TaskID: t.ID, OwnerID: t.OwnerID, Title: t.Title, DueAt: t.DueAt}
		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.Errorw("failed to marshal task.due payload", "task_id", t.ID, "error", err)
			continue
		}
		// The claim already flipped reminderSent; a publish failure here
		// loses this delivery rather than duplicating it, matching the
		// at-most-once contract for reminders.
		if err := s.bus.Publish(ctx, eventbus.TopicTaskDue, data); err != nil {
			s.logger.Errorw("failed to publish task.due", "task_id", t.ID, "error", err)
		}
	}
	if len(due) > 0 {
		s.logger.Infow("reminder sweep completed", "claimed", len(due))
	}
	return nil
}
