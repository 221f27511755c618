package spaced_repetition

import (
	"sort"

	"github.com/example/vocadrill/pkg/models"
)

// EmptyReason explains why no item was selected
type EmptyReason string

const (
	// ReasonNone means an item was selected
	ReasonNone EmptyReason = ""
	// ReasonNoItems means the table itself is empty
	ReasonNoItems EmptyReason = "no items"
	// ReasonNothingDue means the filters left nothing to study today
	ReasonNothingDue EmptyReason = "nothing due"
	// ReasonNoMistakes means mistakes-only mode found no missed items
	ReasonNoMistakes EmptyReason = "no mistakes"
)

// AdvisoryNoMistakes is raised when mistakes-only mode has nothing to review.
const AdvisoryNoMistakes = "No historical mistakes found (box 0 and mistake count > 0)."

// Selection is the outcome of NextDue
type Selection struct {
	ItemID     int64
	Found      bool
	Reason     EmptyReason
	Advisory   string
	Candidates int
}

// NextDue picks the next item to study, uniformly at random among the candidates.
func (l *Leitner) NextDue(table models.Table, cfg models.SessionConfig) Selection {
	if len(table) == 0 {
		return Selection{Reason: ReasonNoItems}
	}

	candidates := l.candidates(table, cfg)
	if len(candidates) == 0 {
		if cfg.Mode == models.ModeMistakesOnly {
			return Selection{Reason: ReasonNoMistakes, Advisory: AdvisoryNoMistakes}
		}
		return Selection{Reason: ReasonNothingDue}
	}

	picked := candidates[l.rng.Intn(len(candidates))]
	return Selection{
		ItemID:     table[picked].ID,
		Found:      true,
		Candidates: len(candidates),
	}
}

// DueItems returns every item NextDue could pick, ordered by id.
func (l *Leitner) DueItems(table models.Table, cfg models.SessionConfig) []models.VocabItem {
	indexes := l.candidates(table, cfg)
	items := make([]models.VocabItem, 0, len(indexes))
	for _, i := range indexes {
		items = append(items, table[i])
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items
}

// candidates returns table indexes passing the level, topic and mode filters.
func (l *Leitner) candidates(table models.Table, cfg models.SessionConfig) []int {
	today := l.Today()
	allTopics := cfg.AllTopicsSelected()

	result := make([]int, 0)
	for i, item := range table {
		if item.Level < cfg.MinLevel || item.Level > cfg.MaxLevel {
			continue
		}
		if !allTopics && item.Topic != cfg.Topic {
			continue
		}

		switch cfg.Mode {
		case models.ModeMistakesOnly:
			if item.Box != 0 || item.MistakeCount <= 0 {
				continue
			}
		default:
			// The never-reviewed sentinel is the zero time and always qualifies
			if item.NextReview.After(today) {
				continue
			}
		}
		result = append(result, i)
	}
	return result
}
