package database

import (
	"math"
	"strconv"
	"strings"

	"github.com/example/vocadrill/internal/listfield"
	"github.com/example/vocadrill/pkg/models"
)

// RawItem is a vocabulary row exactly as a store holds it, every cell text
type RawItem struct {
	ID           string
	Word         string
	Definition   string
	Example      string
	Synonyms     string
	Topic        string
	Level        string
	Box          string
	NextReview   string
	POS          string
	MistakeCount string
	ExampleBlank string
	Collocations string
	Confusables  string
}

// NormalizeReport counts the repairs Normalize made
type NormalizeReport struct {
	Rows         int
	SkippedEmpty int
	Duplicates   int
	ReassignedID int
}

// Normalize turns raw rows into a table that satisfies the model invariants:
// non-empty unique words (first occurrence wins), unique positive ids, box in
// [0, MaxBox], non-negative mistake counts and parsed list fields.
func Normalize(rows []RawItem) (models.Table, NormalizeReport) {
	report := NormalizeReport{Rows: len(rows)}
	table := make(models.Table, 0, len(rows))
	words := make(map[string]bool, len(rows))

	for _, row := range rows {
		word := strings.TrimSpace(row.Word)
		if models.IsNullMarker(word) {
			report.SkippedEmpty++
			continue
		}
		if words[word] {
			report.Duplicates++
			continue
		}
		words[word] = true

		table = append(table, models.VocabItem{
			ID:           int64(parseNumber(row.ID)),
			Word:         word,
			Definition:   cleanText(row.Definition),
			Example:      cleanText(row.Example),
			POS:          cleanText(row.POS),
			Topic:        cleanText(row.Topic),
			Level:        parseNumber(row.Level),
			Synonyms:     parseList(row.Synonyms),
			ExampleBlank: cleanText(row.ExampleBlank),
			Collocations: parseList(row.Collocations),
			Confusables:  parseList(row.Confusables),
			Box:          clamp(parseNumber(row.Box), 0, models.MaxBox),
			MistakeCount: clamp(parseNumber(row.MistakeCount), 0, math.MaxInt32),
			NextReview:   models.ParseReviewDate(row.NextReview),
		})
	}

	// Rows without a usable id get fresh ones after the current maximum
	next := table.MaxID()
	ids := make(map[int64]bool, len(table))
	for i := range table {
		if table[i].ID <= 0 || ids[table[i].ID] {
			next++
			table[i].ID = next
			report.ReassignedID++
		}
		ids[table[i].ID] = true
	}

	return table, report
}

// Denormalize is the inverse of Normalize for writing a table back.
func Denormalize(item models.VocabItem) RawItem {
	return RawItem{
		ID:           strconv.FormatInt(item.ID, 10),
		Word:         item.Word,
		Definition:   item.Definition,
		Example:      item.Example,
		Synonyms:     listfield.Format(item.Synonyms),
		Topic:        item.Topic,
		Level:        strconv.Itoa(item.Level),
		Box:          strconv.Itoa(item.Box),
		NextReview:   item.NextReviewString(),
		POS:          item.POS,
		MistakeCount: strconv.Itoa(item.MistakeCount),
		ExampleBlank: item.ExampleBlank,
		Collocations: listfield.Format(item.Collocations),
		Confusables:  listfield.Format(item.Confusables),
	}
}

// parseList leaves empty list cells as nil slices
func parseList(s string) []string {
	items := listfield.Parse(cleanText(s))
	if len(items) == 0 {
		return nil
	}
	return items
}

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if models.IsNullMarker(s) {
		return ""
	}
	return s
}

// parseNumber reads integers written by spreadsheets ("3", "3.0", " 3 ").
// Anything unreadable is 0.
func parseNumber(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Columns returns the stored column names in table order.
func Columns() []string {
	names := make([]string, 0, len(vocabColumns))
	for _, c := range vocabColumns {
		names = append(names, c.Name)
	}
	return names
}

func (r *RawItem) field(column string) *string {
	switch strings.ToLower(strings.TrimSpace(column)) {
	case "id":
		return &r.ID
	case "word":
		return &r.Word
	case "definition":
		return &r.Definition
	case "example":
		return &r.Example
	case "synonyms":
		return &r.Synonyms
	case "topic":
		return &r.Topic
	case "level":
		return &r.Level
	case "box":
		return &r.Box
	case "next_review":
		return &r.NextReview
	case "pos":
		return &r.POS
	case "mistake_count":
		return &r.MistakeCount
	case "example_blank":
		return &r.ExampleBlank
	case "collocations":
		return &r.Collocations
	case "confusables":
		return &r.Confusables
	}
	return nil
}

// Set assigns a cell by column name and reports whether the column is known.
func (r *RawItem) Set(column, value string) bool {
	f := r.field(column)
	if f == nil {
		return false
	}
	*f = value
	return true
}

// Get returns a cell by column name, empty for unknown columns.
func (r RawItem) Get(column string) string {
	if f := r.field(column); f != nil {
		return *f
	}
	return ""
}
