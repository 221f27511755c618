package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocadrill/internal/listfield"
	"github.com/example/vocadrill/pkg/models"
)

// qcLogRow is the stored shape of a QC record
type qcLogRow struct {
	Timestamp      string `db:"timestamp"`
	SessionID      string `db:"session_id"`
	WordID         int64  `db:"word_id"`
	Word           string `db:"word"`
	Kind           string `db:"kind"`
	Prompt         string `db:"prompt"`
	Stem           string `db:"stem"`
	Options        string `db:"options"`
	CorrectAnswers string `db:"correct_answers"`
	JudgeChoice    string `db:"judge_choice"`
	JudgeCorrect   int    `db:"judge_correct"`
	JudgeScore     int    `db:"judge_score"`
	IsDefect       int    `db:"is_defect"`
	DefectReasons  string `db:"defect_reasons"`
	Advisories     string `db:"advisories"`
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func newQCLogRow(rec models.QCRecord) qcLogRow {
	return qcLogRow{
		Timestamp:      rec.Timestamp.UTC().Format(time.RFC3339),
		SessionID:      rec.SessionID,
		WordID:         rec.WordID,
		Word:           rec.Word,
		Kind:           string(rec.Kind),
		Prompt:         rec.Prompt,
		Stem:           rec.Stem,
		Options:        listfield.Format(rec.Options),
		CorrectAnswers: listfield.Format(rec.CorrectAnswers),
		JudgeChoice:    rec.JudgeChoice,
		JudgeCorrect:   boolToInt(rec.JudgeCorrect),
		JudgeScore:     rec.JudgeScore,
		IsDefect:       boolToInt(rec.IsDefect),
		DefectReasons:  listfield.Format(rec.DefectReasons),
		Advisories:     listfield.Format(rec.Advisories),
	}
}

func (row qcLogRow) record() models.QCRecord {
	ts, _ := time.Parse(time.RFC3339, row.Timestamp)
	return models.QCRecord{
		Timestamp:      ts,
		SessionID:      row.SessionID,
		WordID:         row.WordID,
		Word:           row.Word,
		Kind:           models.QuestionKind(row.Kind),
		Prompt:         row.Prompt,
		Stem:           row.Stem,
		Options:        listfield.Parse(row.Options),
		CorrectAnswers: listfield.Parse(row.CorrectAnswers),
		JudgeChoice:    row.JudgeChoice,
		JudgeCorrect:   row.JudgeCorrect != 0,
		JudgeScore:     row.JudgeScore,
		IsDefect:       row.IsDefect != 0,
		DefectReasons:  parseList(row.DefectReasons),
		Advisories:     parseList(row.Advisories),
	}
}

// QCLogRepository appends question-quality records to qc_log
type QCLogRepository struct {
	db *sqlx.DB
}

// NewQCLogRepository creates a new repository instance
func NewQCLogRepository(db *sqlx.DB) *QCLogRepository {
	return &QCLogRepository{db: db}
}

// Write appends records in one transaction. The log is never rewritten.
func (r *QCLogRepository) Write(ctx context.Context, records []models.QCRecord) (err error) {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin qc log write: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	query := `
		INSERT INTO qc_log (
			timestamp, session_id, word_id, word, kind, prompt, stem, options,
			correct_answers, judge_choice, judge_correct, judge_score, is_defect,
			defect_reasons, advisories
		) VALUES (
			:timestamp, :session_id, :word_id, :word, :kind, :prompt, :stem, :options,
			:correct_answers, :judge_choice, :judge_correct, :judge_score, :is_defect,
			:defect_reasons, :advisories
		)
	`
	for _, rec := range records {
		if _, err = tx.NamedExecContext(ctx, query, newQCLogRow(rec)); err != nil {
			return fmt.Errorf("failed to append qc record for %q: %w", rec.Word, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit qc log: %w", err)
	}
	return nil
}

// Session returns the records of one QC run ordered by time
func (r *QCLogRepository) Session(ctx context.Context, sessionID string) ([]models.QCRecord, error) {
	var rows []qcLogRow
	query := r.db.Rebind("SELECT * FROM qc_log WHERE session_id = ? ORDER BY timestamp, word_id")
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to read qc log: %w", err)
	}

	records := make([]models.QCRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// DefectRate returns the share of defective records across the whole log
func (r *QCLogRepository) DefectRate(ctx context.Context) (float64, int, error) {
	var stats struct {
		Total   int `db:"total"`
		Defects int `db:"defects"`
	}
	err := r.db.GetContext(ctx, &stats,
		"SELECT COUNT(*) AS total, COALESCE(SUM(is_defect), 0) AS defects FROM qc_log")
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute defect rate: %w", err)
	}
	if stats.Total == 0 {
		return 0, 0, nil
	}
	return float64(stats.Defects) / float64(stats.Total), stats.Total, nil
}
