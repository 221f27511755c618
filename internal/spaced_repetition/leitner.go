package spaced_repetition

import (
	"math/rand"
	"time"

	"github.com/example/vocadrill/pkg/models"
)

// Leitner implements a box-based spaced repetition schedule.
// An item in box n comes back after 2^n days; a miss sends it to box 0.
type Leitner struct {
	// Highest box an item can reach
	MaxBox int
	// Returns the current time, truncated to a calendar day by the scheduler
	Clock func() time.Time

	rng *rand.Rand
}

// NewLeitner creates a scheduler with the default five boxes.
// rng drives candidate selection and must not be shared across goroutines.
func NewLeitner(rng *rand.Rand) *Leitner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Leitner{
		MaxBox: models.MaxBox,
		Clock:  time.Now,
		rng:    rng,
	}
}

// Today returns the current local calendar day as a UTC midnight, the
// same representation ParseReviewDate produces.
func (l *Leitner) Today() time.Time {
	now := l.Clock()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// Interval returns the number of days an item waits after reaching box.
func (l *Leitner) Interval(box int) int {
	if box <= 0 {
		return 0
	}
	return 1 << uint(box)
}

// Advance moves the item to its next state after a response.
func (l *Leitner) Advance(item *models.VocabItem, correct bool) {
	today := l.Today()

	if correct {
		newBox := item.Box + 1
		if newBox > l.MaxBox {
			newBox = l.MaxBox
		}
		if newBox < 1 {
			newBox = 1
		}
		item.Box = newBox
		item.NextReview = today.AddDate(0, 0, l.Interval(newBox))
		return
	}

	// A miss restarts the schedule and stays due today
	item.Box = 0
	item.NextReview = today
	item.MistakeCount++
}

// Mastered reports whether the item reached the last box.
func (l *Leitner) Mastered(item models.VocabItem) bool {
	return item.Box >= l.MaxBox
}

// Reset wipes the review state of every item.
func (l *Leitner) Reset(table models.Table) {
	for i := range table {
		table[i].Box = 0
		table[i].MistakeCount = 0
		table[i].NextReview = time.Time{}
	}
}
