package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocadrill/internal/database"
	"github.com/example/vocadrill/pkg/models"
)

// DefaultSheet is the sheet excelize creates in a new workbook
const DefaultSheet = "Sheet1"

var numericColumns = map[string]bool{
	"id":            true,
	"level":         true,
	"box":           true,
	"mistake_count": true,
}

// ExportWords writes the table to an xlsx or csv file chosen by extension.
// The file is written next to path first and moved into place.
func ExportWords(table models.Table, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	ext := filepath.Ext(path)
	tmp := filepath.Join(filepath.Dir(path), "."+strings.TrimSuffix(filepath.Base(path), ext)+".tmp"+ext)

	var err error
	if strings.EqualFold(ext, ".csv") {
		err = writeCSV(table, tmp)
	} else {
		err = writeWorkbook(table, tmp)
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func tableRows(table models.Table) [][]string {
	columns := database.Columns()
	rows := make([][]string, 0, len(table)+1)
	rows = append(rows, columns)
	for _, item := range table {
		raw := database.Denormalize(item)
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = raw.Get(column)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeCSV(table models.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(tableRows(table)); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return file.Close()
}

func writeWorkbook(table models.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := tableRows(table)
	header := rows[0]
	for r, row := range rows {
		values := make([]interface{}, len(row))
		for i, cell := range row {
			values[i] = cell
			if r > 0 && numericColumns[header[i]] {
				if n, err := strconv.Atoi(cell); err == nil {
					values[i] = n
				}
			}
		}
		if err := setRow(f, DefaultSheet, r+1, values); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
