// Package scheduler runs the daily study reminder.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/vocadrill/internal/spaced_repetition"
	"github.com/example/vocadrill/pkg/models"
)

// DefaultReminderTime is used when no time is configured
const DefaultReminderTime = "09:00"

// previewWords is how many due words a reminder lists
const previewWords = 5

// Loader reads the current vocabulary table
type Loader interface {
	Load(ctx context.Context) (models.Table, error)
}

// Reminder is what a notifier is asked to deliver
type Reminder struct {
	Due      int      // Items the configured session would draw from
	Mistakes int      // Items waiting in mistakes-only mode
	Goal     int      // Session goal
	Preview  []string // First due words by id
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(ctx context.Context, r Reminder) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	loader    Loader
	leitner   *spaced_repetition.Leitner
	cfg       models.SessionConfig
	notifier  Notifier
	at        string
	logger    logrus.FieldLogger
}

// New creates a new scheduler instance firing every day at "HH:MM" local time
func New(loader Loader, leitner *spaced_repetition.Leitner, cfg models.SessionConfig,
	notifier Notifier, at string, logger logrus.FieldLogger) *Scheduler {
	if at == "" {
		at = DefaultReminderTime
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		loader:    loader,
		leitner:   leitner,
		cfg:       cfg,
		notifier:  notifier,
		at:        at,
		logger:    logger.WithField("component", "reminder"),
	}
}

// Start schedules the daily check and runs it in the background
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(1).Day().At(s.at).Do(func() {
		if _, err := s.RunManualCheck(ctx); err != nil {
			s.logger.WithError(err).Error("reminder check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder at %q: %w", s.at, err)
	}

	s.scheduler.StartAsync()
	s.logger.WithField("at", s.at).Info("reminder scheduled")
	return nil
}

// Run starts the scheduler and blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// NextRun returns when the reminder fires next, zero before Start
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunManualCheck loads the table, counts due items and notifies when there
// is anything to study. It returns the reminder it built.
func (s *Scheduler) RunManualCheck(ctx context.Context) (Reminder, error) {
	table, err := s.loader.Load(ctx)
	if err != nil {
		return Reminder{}, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	due := s.leitner.DueItems(table, s.cfg)
	mistakesCfg := s.cfg
	mistakesCfg.Mode = models.ModeMistakesOnly

	r := Reminder{
		Due:      len(due),
		Mistakes: len(s.leitner.DueItems(table, mistakesCfg)),
		Goal:     s.cfg.Goal,
	}
	for i := 0; i < len(due) && i < previewWords; i++ {
		r.Preview = append(r.Preview, due[i].Word)
	}

	if r.Due == 0 && r.Mistakes == 0 {
		s.logger.Info("nothing due, no reminder sent")
		return r, nil
	}
	if err := s.notifier.SendReminder(ctx, r); err != nil {
		return r, fmt.Errorf("failed to send reminder: %w", err)
	}
	return r, nil
}

// LogNotifier delivers reminders as log entries
type LogNotifier struct {
	Logger logrus.FieldLogger
}

// SendReminder implements Notifier
func (n LogNotifier) SendReminder(ctx context.Context, r Reminder) error {
	n.Logger.WithFields(logrus.Fields{
		"due":      r.Due,
		"mistakes": r.Mistakes,
		"goal":     r.Goal,
		"preview":  r.Preview,
	}).Info("time to study")
	return nil
}
