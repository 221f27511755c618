// Package session runs a bounded drill: it asks the scheduler for items,
// builds questions, grades answers and persists the table after every answer.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/example/vocadrill/internal/listfield"
	"github.com/example/vocadrill/internal/quiz"
	"github.com/example/vocadrill/internal/spaced_repetition"
	"github.com/example/vocadrill/pkg/models"
)

var (
	// ErrSaveFailed wraps store errors; the in-memory table keeps the change
	ErrSaveFailed = errors.New("failed to save progress")
	// ErrNoPendingQuestion is returned by Answer when no question is open
	ErrNoPendingQuestion = errors.New("no pending question")
)

// Store persists the whole table with replace-all semantics
type Store interface {
	Load(ctx context.Context) (models.Table, error)
	Save(ctx context.Context, table models.Table) error
}

// StudyCard is what the learner sees after answering
type StudyCard struct {
	Word         string
	POS          string
	Definition   string
	Example      string
	Collocations []string
}

// Outcome describes a graded answer
type Outcome struct {
	Correct bool
	Chosen  string
	Answer  string // The correct string to reveal
	Card    StudyCard
	Item    models.VocabItem // State after the scheduler advanced it
}

// Session holds all state of one drill
type Session struct {
	cfg   models.SessionConfig
	stats models.SessionStats
	table models.Table

	store     Store
	scheduler *spaced_repetition.Leitner
	generator *quiz.Generator
	logger    logrus.FieldLogger

	pending *models.Question
}

// New starts a session over table. Stats start at zero.
func New(cfg models.SessionConfig, table models.Table, store Store,
	scheduler *spaced_repetition.Leitner, generator *quiz.Generator, logger logrus.FieldLogger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{
		cfg:       cfg,
		table:     table,
		store:     store,
		scheduler: scheduler,
		generator: generator,
		logger:    logger.WithField("component", "session"),
	}, nil
}

// Next returns the question to ask, or nil with the reason when the goal is
// reached or nothing is due. An unanswered question is returned again.
func (s *Session) Next(ctx context.Context) (*models.Question, spaced_repetition.Selection) {
	if s.pending != nil {
		return s.pending, spaced_repetition.Selection{ItemID: s.pending.ItemID, Found: true}
	}
	if s.Done() {
		return nil, spaced_repetition.Selection{}
	}

	sel := s.scheduler.NextDue(s.table, s.cfg)
	if !sel.Found {
		if sel.Advisory != "" {
			s.logger.Warn(sel.Advisory)
		}
		return nil, sel
	}

	item := s.table.Find(sel.ItemID)
	if item == nil {
		return nil, spaced_repetition.Selection{Reason: spaced_repetition.ReasonNoItems}
	}

	q := s.generator.Generate(*item, s.table)
	s.pending = &q
	s.logger.WithFields(logrus.Fields{
		"word": q.TargetWord,
		"kind": q.Kind,
	}).Debug("question generated")
	return s.pending, sel
}

// Answer grades choice against the pending question, advances the item and
// saves the table. A save failure still returns a valid outcome.
func (s *Session) Answer(ctx context.Context, choice string) (Outcome, error) {
	if s.pending == nil {
		return Outcome{}, ErrNoPendingQuestion
	}
	q := *s.pending
	s.pending = nil

	item := s.table.Find(q.ItemID)
	if item == nil {
		return Outcome{}, fmt.Errorf("%w: id %d", models.ErrItemNotFound, q.ItemID)
	}

	correct := quiz.IsCorrect(q, choice)
	s.scheduler.Advance(item, correct)
	s.stats.Record(correct)

	outcome := Outcome{
		Correct: correct,
		Chosen:  choice,
		Answer:  q.DisplayAnswer,
		Card:    cardFor(*item, q.Kind),
		Item:    *item,
	}

	s.logger.WithFields(logrus.Fields{
		"word":    item.Word,
		"correct": correct,
		"box":     item.Box,
	}).Debug("answer recorded")

	if err := s.Flush(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Flush writes the whole table to the store.
func (s *Session) Flush(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.table); err != nil {
		s.logger.WithError(err).Warn("save failed, progress kept in memory")
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

// Done reports whether the goal is reached.
func (s *Session) Done() bool {
	return s.stats.Total >= s.cfg.Goal
}

// Progress returns the share of the goal completed, capped at 1.
func (s *Session) Progress() float64 {
	if s.cfg.Goal <= 0 {
		return 1
	}
	p := float64(s.stats.Total) / float64(s.cfg.Goal)
	if p > 1 {
		return 1
	}
	return p
}

// Stats returns a copy of the running counters.
func (s *Session) Stats() models.SessionStats {
	return s.stats
}

// Config returns the session filters.
func (s *Session) Config() models.SessionConfig {
	return s.cfg
}

// Table exposes the live table.
func (s *Session) Table() models.Table {
	return s.table
}

func cardFor(item models.VocabItem, kind models.QuestionKind) StudyCard {
	card := StudyCard{
		Word:       item.Word,
		POS:        item.POS,
		Definition: item.Definition,
		Example:    item.Example,
	}
	// Collocations accompany blank questions only
	if kind == models.KindBlank {
		card.Collocations = listfield.Parse(item.Collocations)
	}
	return card
}
