package excel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocadrill/internal/listfield"
	"github.com/example/vocadrill/pkg/models"
)

// QCSheet is the sheet QC records are appended to
const QCSheet = "qc_log"

var qcHeader = []interface{}{
	"timestamp", "session_id", "word_id", "word", "kind", "prompt", "stem",
	"options", "correct_answers", "judge_choice", "judge_correct", "judge_score",
	"is_defect", "defect_reasons", "advisories",
}

// QCReport appends QC records to a workbook, creating it on first use
type QCReport struct {
	Path string
}

// NewQCReport creates a report writer for path
func NewQCReport(path string) *QCReport {
	return &QCReport{Path: path}
}

// Write appends records below the existing rows of the qc_log sheet.
func (r *QCReport) Write(ctx context.Context, records []models.QCRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, created, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(QCSheet)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", QCSheet, err)
	}
	next := len(rows) + 1
	if next == 1 {
		if err := setRow(f, QCSheet, next, qcHeader); err != nil {
			return err
		}
		next++
	}

	for _, rec := range records {
		if err := setRow(f, QCSheet, next, qcValues(rec)); err != nil {
			return err
		}
		next++
	}

	if created {
		err = f.SaveAs(r.Path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return fmt.Errorf("failed to save QC report: %w", err)
	}
	return nil
}

func (r *QCReport) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(r.Path); errors.Is(err, os.ErrNotExist) {
		if dir := filepath.Dir(r.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, false, fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f := excelize.NewFile()
		f.SetSheetName(DefaultSheet, QCSheet)
		return f, true, nil
	}

	f, err := excelize.OpenFile(r.Path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open QC report: %w", err)
	}
	for _, name := range f.GetSheetList() {
		if name == QCSheet {
			return f, false, nil
		}
	}
	f.Close()
	return nil, false, fmt.Errorf("QC report %s has no %s sheet", r.Path, QCSheet)
}

func qcValues(rec models.QCRecord) []interface{} {
	return []interface{}{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.SessionID,
		rec.WordID,
		rec.Word,
		string(rec.Kind),
		rec.Prompt,
		rec.Stem,
		listfield.Format(rec.Options),
		listfield.Format(rec.CorrectAnswers),
		rec.JudgeChoice,
		flag(rec.JudgeCorrect),
		rec.JudgeScore,
		flag(rec.IsDefect),
		listfield.Format(rec.DefectReasons),
		listfield.Format(rec.Advisories),
	}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
