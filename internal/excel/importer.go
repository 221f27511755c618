// Package excel moves the vocabulary bank between the store and xlsx or csv
// spreadsheets, and can use a spreadsheet as the store itself.
package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocadrill/internal/database"
	"github.com/example/vocadrill/pkg/models"
)

// ErrNoWordColumn is returned for sheets without a word header
var ErrNoWordColumn = errors.New("sheet has no word column")

// headerAliases maps spreadsheet headers to stored column names
var headerAliases = map[string]string{
	"part_of_speech": "pos",
	"mistakes":       "mistake_count",
	"blank":          "example_blank",
	"difficulty":     "level",
	"category":       "topic",
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath  string // Path to the Excel or CSV file
	SheetName string // Sheet to import, the first sheet when empty
	Replace   bool   // Replace the whole bank instead of merging into it
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	UnknownColumns []string
}

// ImportWords reads config.FilePath and merges it into existing. Words already
// in the bank get their content refreshed and keep their review progress.
func ImportWords(existing models.Table, config ImportConfig) (models.Table, *ImportResult, error) {
	rows, unknown, err := ReadRows(config.FilePath, config.SheetName)
	if err != nil {
		return nil, nil, err
	}

	imported, report := database.Normalize(rows)
	result := &ImportResult{
		TotalProcessed: report.Rows,
		Skipped:        report.SkippedEmpty + report.Duplicates,
		UnknownColumns: unknown,
	}

	if config.Replace {
		result.Created = len(imported)
		return imported, result, nil
	}

	merged := make(models.Table, len(existing), len(existing)+len(imported))
	copy(merged, existing)
	for _, item := range imported {
		if current := merged.FindWord(item.Word); current != nil {
			refreshContent(current, item)
			result.Updated++
			continue
		}
		if item.ID <= 0 || merged.Find(item.ID) != nil {
			item.ID = merged.MaxID() + 1
		}
		merged = append(merged, item)
		result.Created++
	}
	return merged, result, nil
}

// refreshContent copies the editable fields; id and review state stay.
func refreshContent(dst *models.VocabItem, src models.VocabItem) {
	dst.Definition = src.Definition
	dst.Example = src.Example
	dst.POS = src.POS
	dst.Topic = src.Topic
	dst.Level = src.Level
	dst.Synonyms = src.Synonyms
	dst.ExampleBlank = src.ExampleBlank
	dst.Collocations = src.Collocations
	dst.Confusables = src.Confusables
}

// ReadRows reads a header-first sheet into raw rows. Columns are matched by
// header name; headers that name no known column are returned separately.
func ReadRows(path, sheet string) ([]database.RawItem, []string, error) {
	var (
		cells [][]string
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		cells, err = readCSV(path)
	} else {
		cells, err = readWorkbook(path, sheet)
	}
	if err != nil {
		return nil, nil, err
	}
	return rowsToRaw(cells)
}

func readWorkbook(path, sheet string) ([][]string, error) {
	// Open Excel file
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowsToRaw(cells [][]string) ([]database.RawItem, []string, error) {
	if len(cells) == 0 {
		return nil, nil, ErrNoWordColumn
	}

	columns := make([]string, len(cells[0]))
	var unknown []string
	hasWord := false
	probe := database.RawItem{}
	for i, header := range cells[0] {
		name := columnName(header)
		if name == "" {
			continue
		}
		if !probe.Set(name, "") {
			unknown = append(unknown, strings.TrimSpace(header))
			continue
		}
		columns[i] = name
		hasWord = hasWord || name == "word"
	}
	if !hasWord {
		return nil, unknown, ErrNoWordColumn
	}

	raw := make([]database.RawItem, 0, len(cells)-1)
	for _, row := range cells[1:] {
		var item database.RawItem
		for i, value := range row {
			if i < len(columns) && columns[i] != "" {
				item.Set(columns[i], value)
			}
		}
		raw = append(raw, item)
	}
	return raw, unknown, nil
}

// columnName normalizes a header such as "Example Blank" to example_blank.
func columnName(header string) string {
	name := strings.ToLower(strings.TrimSpace(header))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	if alias, ok := headerAliases[name]; ok {
		return alias
	}
	return name
}
