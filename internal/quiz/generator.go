package quiz

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/example/vocadrill/pkg/models"
)

const (
	synonymPrompt = "What is a synonym for: %s?"
	blankPrompt   = "Fill in the blank with the best word:"

	// wrongOptionCount is the number of distractors next to the correct option
	wrongOptionCount = models.OptionCount - 1
)

// Generator builds multiple-choice questions from the vocabulary bank
type Generator struct {
	// StrictAnswers accepts only the displayed correct option instead of
	// every synonym of the target word
	StrictAnswers bool

	rng *rand.Rand
}

// NewGenerator creates a generator drawing all its choices from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate builds a question for target using pool for distractors.
// It never fails: sparse data falls back to simpler questions or placeholders.
func (g *Generator) Generate(target models.VocabItem, pool models.Table) models.Question {
	canBlank := UsableStem(target.ExampleBlank)

	kind := models.KindSynonym
	if g.rng.Intn(2) == 1 {
		kind = models.KindBlank
	}
	if kind == models.KindBlank && !canBlank {
		kind = models.KindSynonym
	}

	if kind == models.KindSynonym {
		synonyms := cleanList(target.Synonyms)
		if len(synonyms) == 0 {
			if canBlank {
				return g.blankQuestion(target, pool)
			}
			synonyms = []string{strings.TrimSpace(target.Word)}
		}
		return g.synonymQuestion(target, pool, synonyms)
	}

	return g.blankQuestion(target, pool)
}

// IsCorrect is the only grading rule: the choice must be a correct answer.
func IsCorrect(q models.Question, chosen string) bool {
	return q.Accepts(chosen)
}

// UsableStem reports whether a blank sentence can carry a question.
func UsableStem(stem string) bool {
	return !models.IsNullMarker(stem)
}

func (g *Generator) synonymQuestion(target models.VocabItem, pool models.Table, synonyms []string) models.Question {
	word := strings.TrimSpace(target.Word)
	correctOption := synonyms[g.rng.Intn(len(synonyms))]

	correctAnswers := synonyms
	if g.StrictAnswers {
		correctAnswers = []string{correctOption}
	}

	// Distractors never include any synonym of the target, strict or not
	excluded := make(map[string]bool, len(synonyms))
	for _, s := range synonyms {
		excluded[s] = true
	}

	candidates := otherItems(pool, target.ID)
	if pos := target.NormalizedPOS(); pos != "" {
		samePOS := lo.Filter(candidates, func(item models.VocabItem, _ int) bool {
			return item.NormalizedPOS() == pos
		})
		if len(samePOS) > 0 {
			candidates = samePOS
		}
	}

	wrongPool := make([]string, 0)
	for _, item := range candidates {
		for _, s := range cleanList(item.Synonyms) {
			if !excluded[s] {
				wrongPool = append(wrongPool, s)
			}
		}
	}
	wrongPool = lo.Uniq(wrongPool)

	options := newOptionSet(correctOption)
	for _, s := range g.sample(wrongPool, wrongOptionCount) {
		options.add(s)
	}
	options.padLetters()

	return models.Question{
		Kind:           models.KindSynonym,
		ItemID:         target.ID,
		TargetWord:     word,
		Prompt:         fmt.Sprintf(synonymPrompt, word),
		Options:        g.shuffled(options.items),
		CorrectAnswers: append([]string(nil), correctAnswers...),
		DisplayAnswer:  correctOption,
	}
}

func (g *Generator) blankQuestion(target models.VocabItem, pool models.Table) models.Question {
	word := strings.TrimSpace(target.Word)
	options := newOptionSet(word)

	for _, c := range cleanList(target.Confusables) {
		if options.full() {
			break
		}
		if c != word {
			options.add(c)
		}
	}

	if !options.full() {
		candidates := otherItems(pool, target.ID)
		if topic := strings.TrimSpace(target.Topic); topic != "" {
			sameTopic := lo.Filter(candidates, func(item models.VocabItem, _ int) bool {
				return strings.TrimSpace(item.Topic) == topic
			})
			if len(sameTopic) > 0 {
				candidates = sameTopic
			}
		}
		if pos := target.NormalizedPOS(); pos != "" {
			samePOS := lo.Filter(candidates, func(item models.VocabItem, _ int) bool {
				return item.NormalizedPOS() == pos
			})
			if len(samePOS) > 0 {
				candidates = samePOS
			}
		}

		filler := make([]string, 0, len(candidates))
		for _, item := range candidates {
			w := strings.TrimSpace(item.Word)
			if w != "" && w != word {
				filler = append(filler, w)
			}
		}
		for _, w := range g.shuffled(lo.Uniq(filler)) {
			if options.full() {
				break
			}
			options.add(w)
		}
	}
	options.padNumbers()

	return models.Question{
		Kind:           models.KindBlank,
		ItemID:         target.ID,
		TargetWord:     word,
		Prompt:         blankPrompt,
		Stem:           target.ExampleBlank,
		Options:        g.shuffled(options.items),
		CorrectAnswers: []string{word},
		DisplayAnswer:  word,
	}
}

// sample returns n distinct elements of items chosen uniformly, or all of
// them in random order when there are fewer than n.
func (g *Generator) sample(items []string, n int) []string {
	picked := append([]string(nil), items...)
	if n > len(picked) {
		n = len(picked)
	}
	for i := 0; i < n; i++ {
		j := i + g.rng.Intn(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	return picked[:n]
}

func (g *Generator) shuffled(items []string) []string {
	out := append([]string(nil), items...)
	g.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func otherItems(pool models.Table, targetID int64) []models.VocabItem {
	return lo.Filter(pool, func(item models.VocabItem, _ int) bool {
		return item.ID != targetID
	})
}

// cleanList drops blank entries and duplicates, keeping source order.
func cleanList(items []string) []string {
	return lo.Uniq(lo.Filter(items, func(s string, _ int) bool {
		return strings.TrimSpace(s) != ""
	}))
}
