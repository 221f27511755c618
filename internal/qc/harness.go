// Package qc generates batches of questions, checks them against structural
// rules and an optional model judge, and logs the results.
package qc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/vocadrill/internal/quiz"
	"github.com/example/vocadrill/pkg/models"
)

// Judge answers and rates a generated question
type Judge interface {
	Judge(ctx context.Context, q models.Question) (models.Verdict, error)
}

// Sink receives the records of a run
type Sink interface {
	Write(ctx context.Context, records []models.QCRecord) error
}

// Config holds the harness settings
type Config struct {
	Count         int    `mapstructure:"count"`
	Seed          int64  `mapstructure:"seed"`
	Judge         bool   `mapstructure:"judge"`
	Output        string `mapstructure:"output"`
	StrictAnswers bool   `mapstructure:"-"`
}

// DefaultConfig returns the default harness settings
func DefaultConfig() Config {
	return Config{Count: 50, Seed: 42}
}

// Report is the outcome of one run
type Report struct {
	SessionID string
	Records   []models.QCRecord
	Defects   int
}

// DefectRate returns the share of defective questions.
func (r Report) DefectRate() float64 {
	if len(r.Records) == 0 {
		return 0
	}
	return float64(r.Defects) / float64(len(r.Records))
}

// Harness runs QC batches. Runs with the same seed and table produce the
// same questions.
type Harness struct {
	cfg    Config
	judge  Judge
	sinks  []Sink
	logger logrus.FieldLogger

	// Clock stamps records; tests replace it
	Clock func() time.Time
}

// New creates a harness. With a nil judge every record falls back to the
// first option.
func New(cfg Config, judge Judge, logger logrus.FieldLogger, sinks ...Sink) *Harness {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Harness{
		cfg:    cfg,
		judge:  judge,
		sinks:  sinks,
		logger: logger.WithField("component", "qc"),
		Clock:  time.Now,
	}
}

// Run generates n questions for targets drawn uniformly from table, checks
// them and writes the records to every sink. Sink failures are returned
// together with the complete report.
func (h *Harness) Run(ctx context.Context, table models.Table, n int) (Report, error) {
	if len(table) == 0 {
		return Report{}, models.ErrEmptyTable
	}

	rng := rand.New(rand.NewSource(h.cfg.Seed))
	generator := quiz.NewGenerator(rng)
	generator.StrictAnswers = h.cfg.StrictAnswers

	report := Report{SessionID: uuid.NewString()}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		target := table[rng.Intn(len(table))]
		q := generator.Generate(target, table)
		rec := h.review(ctx, report.SessionID, target, q)
		if rec.IsDefect {
			report.Defects++
		}
		report.Records = append(report.Records, rec)

		h.logger.WithFields(logrus.Fields{
			"word":    rec.Word,
			"kind":    rec.Kind,
			"defects": rec.DefectReasons,
		}).Debug("question reviewed")
	}

	h.logger.WithFields(logrus.Fields{
		"session_id":  report.SessionID,
		"questions":   len(report.Records),
		"defects":     report.Defects,
		"defect_rate": report.DefectRate(),
	}).Info("qc run finished")

	var errs []error
	for _, sink := range h.sinks {
		if err := sink.Write(ctx, report.Records); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return report, fmt.Errorf("failed to write qc records: %w", err)
	}
	return report, nil
}

func (h *Harness) review(ctx context.Context, sessionID string, target models.VocabItem, q models.Question) models.QCRecord {
	defects, advisories := Inspect(q, target)

	rec := models.QCRecord{
		Timestamp:      h.Clock(),
		SessionID:      sessionID,
		WordID:         q.ItemID,
		Word:           q.TargetWord,
		Kind:           q.Kind,
		Prompt:         q.Prompt,
		Stem:           q.Stem,
		Options:        q.Options,
		CorrectAnswers: q.CorrectAnswers,
		Advisories:     advisories,
	}

	if h.judge != nil {
		defects = append(defects, h.consultJudge(ctx, q, &rec)...)
	} else {
		fallbackChoice(q, &rec)
		rec.Advisories = append(rec.Advisories, AdvisoryJudgeDisabled)
	}

	rec.DefectReasons = defects
	rec.IsDefect = len(defects) > 0
	return rec
}

// consultJudge fills the judge columns and returns the defects it found.
// A failing judge falls back to the first option.
func (h *Harness) consultJudge(ctx context.Context, q models.Question, rec *models.QCRecord) []string {
	verdict, err := h.judge.Judge(ctx, q)
	if err != nil {
		h.logger.WithError(err).WithField("word", q.TargetWord).Warn("judge unavailable")
		fallbackChoice(q, rec)
		return []string{ReasonJudgeUnavailable + ": " + err.Error()}
	}

	rec.JudgeChoice = verdict.Choice
	rec.JudgeCorrect = quiz.IsCorrect(q, verdict.Choice)
	rec.JudgeScore = verdict.Score

	var defects []string
	if !rec.JudgeCorrect {
		defects = append(defects, ReasonJudgeDisagrees)
	}
	if verdict.Score > 0 && verdict.Score <= LowScore {
		defects = append(defects, ReasonLowScore)
	}
	return defects
}

// fallbackChoice selects the first option so every record carries a choice.
func fallbackChoice(q models.Question, rec *models.QCRecord) {
	if len(q.Options) == 0 {
		return
	}
	rec.JudgeChoice = q.Options[0]
	rec.JudgeCorrect = quiz.IsCorrect(q, rec.JudgeChoice)
}
