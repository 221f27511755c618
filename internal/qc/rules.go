package qc

import (
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/example/vocadrill/internal/quiz"
	"github.com/example/vocadrill/pkg/models"
)

// Defect reasons and advisories written to the QC log.
const (
	ReasonDuplicateOptions = "duplicate options"
	ReasonAnswerMissing    = "answer missing"
	ReasonPlaceholders     = "placeholder options"
	ReasonBadOptionLength  = "bad option length"
	ReasonNoBlank          = "stem has no blank"
	ReasonNoConfusables    = "no confusables"
	ReasonConfusableIsWord = "confusables contain the word"
	ReasonJudgeUnavailable = "judge unavailable"
	ReasonJudgeDisagrees   = "judge disagrees"
	ReasonLowScore         = "low judge score"
	AdvisoryManySynonyms   = "ambiguous: many synonyms"
	AdvisoryJudgeDisabled  = "judge disabled"
)

const (
	// BlankMarker must appear in every blank stem
	BlankMarker = "____"
	// MaxOptionLength is counted in runes
	MaxOptionLength       = 60
	ManySynonymsThreshold = 6
	// LowScore and below is a defect
	LowScore = 2
)

// Inspect applies the structural rules to q built for target.
func Inspect(q models.Question, target models.VocabItem) (defects, advisories []string) {
	if len(lo.Uniq(q.Options)) != len(q.Options) {
		defects = append(defects, ReasonDuplicateOptions)
	}
	if !lo.Contains(q.Options, q.DisplayAnswer) || !q.Accepts(q.DisplayAnswer) {
		defects = append(defects, ReasonAnswerMissing)
	}
	if lo.SomeBy(q.Options, quiz.IsPlaceholder) {
		defects = append(defects, ReasonPlaceholders)
	}
	if lo.SomeBy(q.Options, badLength) {
		defects = append(defects, ReasonBadOptionLength)
	}

	switch q.Kind {
	case models.KindSynonym:
		if len(lo.Compact(target.Synonyms)) >= ManySynonymsThreshold {
			advisories = append(advisories, AdvisoryManySynonyms)
		}
	case models.KindBlank:
		if !strings.Contains(q.Stem, BlankMarker) {
			defects = append(defects, ReasonNoBlank)
		}
		confusables := lo.Filter(target.Confusables, func(s string, _ int) bool {
			return strings.TrimSpace(s) != ""
		})
		if len(confusables) == 0 {
			defects = append(defects, ReasonNoConfusables)
		}
		word := strings.TrimSpace(target.Word)
		if lo.ContainsBy(confusables, func(s string) bool { return strings.EqualFold(strings.TrimSpace(s), word) }) {
			defects = append(defects, ReasonConfusableIsWord)
		}
	}
	return defects, advisories
}

func badLength(option string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(option))
	return n == 0 || n > MaxOptionLength
}
