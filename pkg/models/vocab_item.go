package models

import (
	"sort"
	"strings"
	"time"
)

// MaxBox is the highest repetition stage an item can reach.
const MaxBox = 5

// DateLayout is the calendar layout used for next_review in every store.
const DateLayout = "2006-01-02"

// NeverReviewed is the serialized sentinel for an item that was never scheduled.
const NeverReviewed = "0000-00-00"

// VocabItem represents one row of the vocabulary bank
type VocabItem struct {
	ID           int64     `json:"id" db:"id"`
	Word         string    `json:"word" db:"word"`
	Definition   string    `json:"definition" db:"definition"`
	Example      string    `json:"example" db:"example"`
	POS          string    `json:"pos" db:"pos"`
	Topic        string    `json:"topic" db:"topic"`
	Level        int       `json:"level" db:"level"` // 1-3 scale of difficulty
	Synonyms     []string  `json:"synonyms" db:"synonyms"`
	ExampleBlank string    `json:"example_blank" db:"example_blank"` // Sentence with a ____ placeholder
	Collocations []string  `json:"collocations" db:"collocations"`
	Confusables  []string  `json:"confusables" db:"confusables"`
	Box          int       `json:"box" db:"box"`                     // Leitner stage, 0-5
	MistakeCount int       `json:"mistake_count" db:"mistake_count"` // Never decremented
	NextReview   time.Time `json:"next_review" db:"next_review"`     // Zero value means never reviewed
}

// NormalizedPOS returns the part of speech trimmed and lower-cased.
// Spreadsheet null markers count as no part of speech.
func (v VocabItem) NormalizedPOS() string {
	pos := strings.ToLower(strings.TrimSpace(v.POS))
	if IsNullMarker(pos) {
		return ""
	}
	return pos
}

// IsNeverReviewed reports whether the item still carries the sentinel date.
func (v VocabItem) IsNeverReviewed() bool {
	return v.NextReview.IsZero()
}

// NextReviewString formats next_review for storage.
func (v VocabItem) NextReviewString() string {
	if v.NextReview.IsZero() {
		return NeverReviewed
	}
	return v.NextReview.Format(DateLayout)
}

// ParseReviewDate parses a stored next_review value. Anything that is not a
// valid calendar date, the sentinel included, maps to the zero time so the
// item is due immediately.
func ParseReviewDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsNullMarker reports whether s is one of the textual null markers that
// spreadsheets and dataframes leave behind in empty cells.
func IsNullMarker(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "none", "null", "<na>":
		return true
	}
	return false
}

// Table is the in-memory snapshot of the whole vocabulary bank
type Table []VocabItem

// Find returns a pointer into the table for the given id, or nil.
func (t Table) Find(id int64) *VocabItem {
	for i := range t {
		if t[i].ID == id {
			return &t[i]
		}
	}
	return nil
}

// FindWord looks an item up by its word, ignoring case.
func (t Table) FindWord(word string) *VocabItem {
	word = strings.TrimSpace(word)
	for i := range t {
		if strings.EqualFold(t[i].Word, word) {
			return &t[i]
		}
	}
	return nil
}

// Topics returns the distinct non-empty topics in alphabetical order.
func (t Table) Topics() []string {
	seen := make(map[string]bool)
	topics := make([]string, 0)
	for _, item := range t {
		if item.Topic == "" || seen[item.Topic] {
			continue
		}
		seen[item.Topic] = true
		topics = append(topics, item.Topic)
	}
	sort.Strings(topics)
	return topics
}

// MaxID returns the largest id in the table, 0 for an empty table.
func (t Table) MaxID() int64 {
	var max int64
	for _, item := range t {
		if item.ID > max {
			max = item.ID
		}
	}
	return max
}
