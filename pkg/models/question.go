package models

// QuestionKind is the flavour of a generated multiple-choice question
type QuestionKind string

const (
	// KindSynonym asks for a synonym of the target word
	KindSynonym QuestionKind = "synonym"
	// KindBlank asks to fill a blank in the example sentence
	KindBlank QuestionKind = "blank"
)

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Question is a fully built multiple-choice question
type Question struct {
	Kind           QuestionKind `json:"kind"`
	ItemID         int64        `json:"item_id"`
	TargetWord     string       `json:"target_word"`
	Prompt         string       `json:"prompt"`
	Stem           string       `json:"stem"`            // Blank sentence, empty for synonym questions
	Options        []string     `json:"options"`         // Exactly OptionCount distinct strings
	CorrectAnswers []string     `json:"correct_answers"` // May hold synonyms that are not displayed
	DisplayAnswer  string       `json:"display_answer"`  // The correct string present in Options
}

// Accepts reports whether chosen is one of the correct answers.
func (q Question) Accepts(chosen string) bool {
	for _, answer := range q.CorrectAnswers {
		if answer == chosen {
			return true
		}
	}
	return false
}
