package excel

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/example/vocadrill/internal/database"
	"github.com/example/vocadrill/pkg/models"
)

// Store keeps the whole bank in the first sheet of one spreadsheet file.
// A missing file is an empty bank; Save rewrites the file.
type Store struct {
	Path string

	logger logrus.FieldLogger
}

// NewStore creates a spreadsheet-backed store
func NewStore(path string, logger logrus.FieldLogger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{Path: path, logger: logger.WithField("component", "sheet_store")}
}

// Load reads and normalizes the sheet.
func (s *Store) Load(ctx context.Context) (models.Table, error) {
	if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
		s.logger.WithField("path", s.Path).Info("sheet not found, starting with an empty bank")
		return models.Table{}, nil
	}

	rows, unknown, err := ReadRows(s.Path, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.Path, err)
	}
	if len(unknown) > 0 {
		s.logger.WithField("columns", unknown).Warn("ignoring unknown columns")
	}

	table, report := database.Normalize(rows)
	if report.Duplicates > 0 || report.SkippedEmpty > 0 {
		s.logger.WithFields(logrus.Fields{
			"duplicates": report.Duplicates,
			"empty":      report.SkippedEmpty,
		}).Info("sheet normalized on load")
	}
	return table, nil
}

// Save rewrites the sheet with every column.
func (s *Store) Save(ctx context.Context, table models.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ExportWords(table, s.Path)
}
