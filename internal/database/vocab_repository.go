package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/example/vocadrill/pkg/models"
)

// column describes one vocab column and the default used when a
// hand-edited table lacks it
type column struct {
	Name       string
	Type       string
	DefaultSQL string
}

var vocabColumns = []column{
	{"id", "INTEGER", "0"},
	{"word", "TEXT", "''"},
	{"definition", "TEXT", "''"},
	{"example", "TEXT", "''"},
	{"synonyms", "TEXT", "''"},
	{"topic", "TEXT", "''"},
	{"level", "INTEGER", "0"},
	{"box", "INTEGER", "0"},
	{"next_review", "TEXT", "'" + models.NeverReviewed + "'"},
	{"pos", "TEXT", "''"},
	{"mistake_count", "INTEGER", "0"},
	{"example_blank", "TEXT", "''"},
	{"collocations", "TEXT", "''"},
	{"confusables", "TEXT", "''"},
}

// vocabRow scans every column as text so malformed cells never fail a load
type vocabRow struct {
	ID           sql.NullString `db:"id"`
	Word         sql.NullString `db:"word"`
	Definition   sql.NullString `db:"definition"`
	Example      sql.NullString `db:"example"`
	Synonyms     sql.NullString `db:"synonyms"`
	Topic        sql.NullString `db:"topic"`
	Level        sql.NullString `db:"level"`
	Box          sql.NullString `db:"box"`
	NextReview   sql.NullString `db:"next_review"`
	POS          sql.NullString `db:"pos"`
	MistakeCount sql.NullString `db:"mistake_count"`
	ExampleBlank sql.NullString `db:"example_blank"`
	Collocations sql.NullString `db:"collocations"`
	Confusables  sql.NullString `db:"confusables"`
}

func (r vocabRow) raw() RawItem {
	return RawItem{
		ID:           r.ID.String,
		Word:         r.Word.String,
		Definition:   r.Definition.String,
		Example:      r.Example.String,
		Synonyms:     r.Synonyms.String,
		Topic:        r.Topic.String,
		Level:        r.Level.String,
		Box:          r.Box.String,
		NextReview:   r.NextReview.String,
		POS:          r.POS.String,
		MistakeCount: r.MistakeCount.String,
		ExampleBlank: r.ExampleBlank.String,
		Collocations: r.Collocations.String,
		Confusables:  r.Confusables.String,
	}
}

// storedItem is the typed shape written back on save
type storedItem struct {
	ID           int64  `db:"id"`
	Word         string `db:"word"`
	Definition   string `db:"definition"`
	Example      string `db:"example"`
	Synonyms     string `db:"synonyms"`
	Topic        string `db:"topic"`
	Level        int    `db:"level"`
	Box          int    `db:"box"`
	NextReview   string `db:"next_review"`
	POS          string `db:"pos"`
	MistakeCount int    `db:"mistake_count"`
	ExampleBlank string `db:"example_blank"`
	Collocations string `db:"collocations"`
	Confusables  string `db:"confusables"`
}

func toStored(item models.VocabItem) storedItem {
	raw := Denormalize(item)
	return storedItem{
		ID:           item.ID,
		Word:         item.Word,
		Definition:   item.Definition,
		Example:      item.Example,
		Synonyms:     raw.Synonyms,
		Topic:        item.Topic,
		Level:        item.Level,
		Box:          item.Box,
		NextReview:   raw.NextReview,
		POS:          item.POS,
		MistakeCount: item.MistakeCount,
		ExampleBlank: item.ExampleBlank,
		Collocations: raw.Collocations,
		Confusables:  raw.Confusables,
	}
}

// VocabRepository loads and replaces the whole vocabulary table
type VocabRepository struct {
	db     *sqlx.DB
	logger logrus.FieldLogger
}

// NewVocabRepository creates a new repository instance
func NewVocabRepository(db *sqlx.DB, logger logrus.FieldLogger) *VocabRepository {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &VocabRepository{db: db, logger: logger.WithField("component", "vocab_store")}
}

// Load returns the normalized table. Missing columns are added to the
// stored table first so later saves keep the full layout.
func (r *VocabRepository) Load(ctx context.Context) (models.Table, error) {
	if err := r.ensureColumns(ctx); err != nil {
		return nil, err
	}

	query := "SELECT " + strings.Join(Columns(), ", ") + " FROM vocab ORDER BY id"

	var rows []vocabRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	raw := make([]RawItem, 0, len(rows))
	for _, row := range rows {
		raw = append(raw, row.raw())
	}
	table, report := Normalize(raw)

	if report.Duplicates > 0 || report.SkippedEmpty > 0 || report.ReassignedID > 0 {
		r.logger.WithFields(logrus.Fields{
			"rows":       report.Rows,
			"duplicates": report.Duplicates,
			"empty":      report.SkippedEmpty,
			"new_ids":    report.ReassignedID,
		}).Info("vocabulary normalized on load")
	}
	return table, nil
}

// Save overwrites the stored table with table in a single transaction.
func (r *VocabRepository) Save(ctx context.Context, table models.Table) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin save: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM vocab"); err != nil {
		return fmt.Errorf("failed to clear vocabulary: %w", err)
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO vocab (
			id, word, definition, example, synonyms, topic, level, box,
			next_review, pos, mistake_count, example_blank, collocations, confusables
		) VALUES (
			:id, :word, :definition, :example, :synonyms, :topic, :level, :box,
			:next_review, :pos, :mistake_count, :example_blank, :collocations, :confusables
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range table {
		if _, err = stmt.ExecContext(ctx, toStored(item)); err != nil {
			return fmt.Errorf("failed to save word %q: %w", item.Word, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save: %w", err)
	}
	return nil
}

// ensureColumns adds the vocab columns a hand-edited table is missing.
func (r *VocabRepository) ensureColumns(ctx context.Context) error {
	rows, err := r.db.QueryxContext(ctx, "SELECT * FROM vocab LIMIT 0")
	if err != nil {
		return fmt.Errorf("failed to inspect vocab table: %w", err)
	}
	existing, err := rows.Columns()
	rows.Close()
	if err != nil {
		return fmt.Errorf("failed to read vocab columns: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[strings.ToLower(name)] = true
	}

	for _, c := range vocabColumns {
		if have[c.Name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE vocab ADD COLUMN %s %s DEFAULT %s", c.Name, c.Type, c.DefaultSQL)
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to add column %s: %w", c.Name, err)
		}
		r.logger.WithField("column", c.Name).Info("added missing column")
	}
	return nil
}
