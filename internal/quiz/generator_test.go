package quiz

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocadrill/pkg/models"
)

func newTestGenerator(seed int64) *Generator {
	return NewGenerator(rand.New(rand.NewSource(seed)))
}

func verbPool() models.Table {
	return models.Table{
		{ID: 1, Word: "ameliorate", POS: "verb", Topic: "Social Science", Level: 3, Synonyms: []string{"improve", "better"}},
		{ID: 2, Word: "abandon", POS: "Verb ", Topic: "History", Level: 1, Synonyms: []string{"desert", "forsake", "leave"}},
		{ID: 3, Word: "bolster", POS: "verb", Topic: "Business", Level: 2, Synonyms: []string{"support", "reinforce", "strengthen"}},
		{ID: 4, Word: "curtail", POS: "VERB", Topic: "Business", Level: 2, Synonyms: []string{"reduce", "limit", "restrict"}},
		{ID: 5, Word: "deplete", POS: "verb", Topic: "Environment", Level: 2, Synonyms: []string{"exhaust", "drain", "consume"}},
		{ID: 6, Word: "emulate", POS: "verb", Topic: "Education", Level: 3, Synonyms: []string{"imitate", "copy", "mirror"}},
		{ID: 7, Word: "candid", POS: "adjective", Topic: "Social Science", Level: 2, Synonyms: []string{"frank", "honest", "open"}},
		{ID: 8, Word: "dearth", POS: "noun", Topic: "Environment", Level: 3, Synonyms: []string{"lack", "scarcity", "shortage"}},
	}
}

func assertWellFormed(t *testing.T, q models.Question) {
	t.Helper()
	require.Len(t, q.Options, models.OptionCount)
	seen := make(map[string]bool)
	for _, o := range q.Options {
		assert.NotEmpty(t, o)
		assert.False(t, seen[o], "duplicate option %q in %v", o, q.Options)
		seen[o] = true
	}
	require.NotEmpty(t, q.CorrectAnswers)
	assert.Contains(t, q.Options, q.DisplayAnswer)
	assert.Contains(t, q.CorrectAnswers, q.DisplayAnswer)
	assert.True(t, IsCorrect(q, q.DisplayAnswer))
}

func TestGenerate_AmeliorateScenario(t *testing.T) {
	pool := verbPool()
	verbSynonyms := make(map[string]bool)
	for _, item := range pool[1:6] {
		for _, s := range item.Synonyms {
			verbSynonyms[s] = true
		}
	}

	for seed := int64(0); seed < 50; seed++ {
		q := newTestGenerator(seed).Generate(pool[0], pool)

		assertWellFormed(t, q)
		assert.Equal(t, models.KindSynonym, q.Kind)
		assert.ElementsMatch(t, []string{"improve", "better"}, q.CorrectAnswers)
		assert.Empty(t, q.Stem)
		assert.Equal(t, "What is a synonym for: ameliorate?", q.Prompt)

		correctShown := 0
		for _, o := range q.Options {
			assert.False(t, IsPlaceholder(o), "unexpected placeholder %q", o)
			if o == "improve" || o == "better" {
				correctShown++
				continue
			}
			assert.True(t, verbSynonyms[o], "distractor %q is not a verb synonym", o)
		}
		assert.Equal(t, 1, correctShown)
	}
}

func TestGenerate_EmptySynonymsAndNoStemAsksForTheWordItself(t *testing.T) {
	pool := verbPool()
	target := models.VocabItem{ID: 99, Word: "obfuscate", POS: "verb", Level: 3}
	pool = append(pool, target)

	for seed := int64(0); seed < 30; seed++ {
		q := newTestGenerator(seed).Generate(target, pool)

		assertWellFormed(t, q)
		assert.Equal(t, models.KindSynonym, q.Kind)
		assert.Equal(t, []string{"obfuscate"}, q.CorrectAnswers)
		for _, o := range q.Options {
			assert.False(t, IsPlaceholder(o))
		}
	}
}

func TestGenerate_NullLikeStemForcesSynonym(t *testing.T) {
	pool := verbPool()
	for _, stem := range []string{"", "  ", "nan", "None", "NULL"} {
		target := pool[0]
		target.ExampleBlank = stem
		for seed := int64(0); seed < 10; seed++ {
			q := newTestGenerator(seed).Generate(target, pool)
			assert.Equal(t, models.KindSynonym, q.Kind, "stem %q", stem)
		}
	}
}

func TestGenerate_KindIsDrawnFromBoth(t *testing.T) {
	pool := verbPool()
	target := pool[0]
	target.ExampleBlank = "The new policy should ____ living conditions."

	kinds := make(map[models.QuestionKind]int)
	for seed := int64(0); seed < 200; seed++ {
		q := newTestGenerator(seed).Generate(target, pool)
		assertWellFormed(t, q)
		kinds[q.Kind]++
	}
	assert.Greater(t, kinds[models.KindSynonym], 50)
	assert.Greater(t, kinds[models.KindBlank], 50)
}

func TestGenerate_SynonymPlaceholdersWhenPoolIsThin(t *testing.T) {
	target := models.VocabItem{ID: 1, Word: "lucid", Synonyms: []string{"clear"}}
	other := models.VocabItem{ID: 2, Word: "opaque", Synonyms: []string{"murky", "clear"}}

	q := newTestGenerator(1).Generate(target, models.Table{target, other})
	assertWellFormed(t, q)
	assert.ElementsMatch(t, []string{"clear", "murky", "Option A", "Option B"}, q.Options)
}

func TestGenerate_SynonymPlaceholdersSkipUsedLabels(t *testing.T) {
	target := models.VocabItem{ID: 1, Word: "odd", Synonyms: []string{"Option A"}}

	q := newTestGenerator(3).Generate(target, models.Table{target})
	assertWellFormed(t, q)
	assert.ElementsMatch(t, []string{"Option A", "Option B", "Option C", "Option D"}, q.Options)
}

func TestGenerate_SynonymFallsBackToFullPoolWithoutPOSMatch(t *testing.T) {
	target := models.VocabItem{ID: 1, Word: "swiftly", POS: "adverb", Synonyms: []string{"quickly"}}
	pool := models.Table{
		target,
		{ID: 2, Word: "candid", POS: "adjective", Synonyms: []string{"frank", "honest"}},
		{ID: 3, Word: "dearth", POS: "noun", Synonyms: []string{"lack"}},
	}

	q := newTestGenerator(5).Generate(target, pool)
	assertWellFormed(t, q)
	assert.ElementsMatch(t, []string{"quickly", "frank", "honest", "lack"}, q.Options)
}

func TestGenerate_DistractorsNeverLeakSynonyms(t *testing.T) {
	target := models.VocabItem{ID: 1, Word: "big", POS: "adj", Synonyms: []string{"large", "huge", "vast"}}
	pool := models.Table{
		target,
		{ID: 2, Word: "enormous", POS: "adj", Synonyms: []string{"huge", "vast", "giant"}},
		{ID: 3, Word: "tiny", POS: "adj", Synonyms: []string{"small", "large", "minute", "wee"}},
	}

	for seed := int64(0); seed < 50; seed++ {
		q := newTestGenerator(seed).Generate(target, pool)
		assertWellFormed(t, q)
		shown := 0
		for _, o := range q.Options {
			if o == "large" || o == "huge" || o == "vast" {
				shown++
			}
		}
		assert.Equal(t, 1, shown, "options %v", q.Options)
	}
}

func TestGenerate_StrictAnswers(t *testing.T) {
	pool := verbPool()
	g := newTestGenerator(11)
	g.StrictAnswers = true

	q := g.Generate(pool[0], pool)
	assertWellFormed(t, q)
	assert.Equal(t, []string{q.DisplayAnswer}, q.CorrectAnswers)

	other := "improve"
	if q.DisplayAnswer == "improve" {
		other = "better"
	}
	assert.False(t, IsCorrect(q, other))
}

func TestIsCorrect_AcceptsUndisplayedSynonyms(t *testing.T) {
	pool := verbPool()
	q := newTestGenerator(2).Generate(pool[0], pool)

	assert.True(t, IsCorrect(q, "improve"))
	assert.True(t, IsCorrect(q, "better"))
	assert.False(t, IsCorrect(q, "desert"))
	assert.False(t, IsCorrect(q, ""))
}

func blankTarget() models.VocabItem {
	return models.VocabItem{
		ID:           1,
		Word:         "affect",
		POS:          "verb",
		Topic:        "Science",
		ExampleBlank: "Temperature can ____ the rate of a reaction.",
	}
}

func TestGenerate_BlankUsesConfusablesFirst(t *testing.T) {
	target := blankTarget()
	target.Confusables = []string{"effect", "affect", "", "effect", "infect", "afflict", "inflect"}
	pool := models.Table{target, {ID: 2, Word: "catalyze", POS: "verb", Topic: "Science"}}

	for seed := int64(0); seed < 20; seed++ {
		q := newTestGenerator(seed).Generate(target, pool)
		assertWellFormed(t, q)
		assert.Equal(t, models.KindBlank, q.Kind)
		assert.Equal(t, []string{"affect"}, q.CorrectAnswers)
		assert.Equal(t, target.ExampleBlank, q.Stem)
		assert.Equal(t, "Fill in the blank with the best word:", q.Prompt)
		assert.ElementsMatch(t, []string{"affect", "effect", "infect", "afflict"}, q.Options)
	}
}

func TestGenerate_BlankFillerNarrowsByTopicThenPOS(t *testing.T) {
	target := blankTarget()
	target.Confusables = []string{"effect"}
	pool := models.Table{
		target,
		{ID: 2, Word: "catalyze", POS: "verb", Topic: "Science"},
		{ID: 3, Word: "dissolve", POS: " Verb", Topic: "Science"},
		{ID: 4, Word: "molecule", POS: "noun", Topic: "Science"},
		{ID: 5, Word: "negotiate", POS: "verb", Topic: "Business"},
		{ID: 6, Word: "effect", POS: "noun", Topic: "Science"},
	}

	for seed := int64(0); seed < 20; seed++ {
		q := newTestGenerator(seed).Generate(target, pool)
		assertWellFormed(t, q)
		assert.ElementsMatch(t, []string{"affect", "effect", "catalyze", "dissolve"}, q.Options)
	}
}

func TestGenerate_BlankFillerIgnoresEmptyNarrowing(t *testing.T) {
	target := blankTarget()
	target.Topic = "Astronomy"
	pool := models.Table{
		target,
		{ID: 2, Word: "negotiate", POS: "verb", Topic: "Business"},
		{ID: 3, Word: "ledger", POS: "noun", Topic: "Business"},
		{ID: 4, Word: "migrate", POS: "verb", Topic: "History"},
		{ID: 5, Word: "conquer", POS: "verb", Topic: "History"},
	}

	q := newTestGenerator(4).Generate(target, pool)
	assertWellFormed(t, q)
	assert.ElementsMatch(t, []string{"affect", "negotiate", "migrate", "conquer"}, q.Options)
}

func TestGenerate_BlankPadsWithNumberedOptions(t *testing.T) {
	target := blankTarget()

	q := newTestGenerator(8).Generate(target, models.Table{target})
	assertWellFormed(t, q)
	assert.ElementsMatch(t, []string{"affect", "Option 1", "Option 2", "Option 3"}, q.Options)

	target.Confusables = []string{"Option 2"}
	q = newTestGenerator(8).Generate(target, models.Table{target})
	assertWellFormed(t, q)
	assert.ElementsMatch(t, []string{"affect", "Option 2", "Option 3", "Option 4"}, q.Options)
}

func TestGenerate_EmptySynonymsFallBackToBlank(t *testing.T) {
	target := blankTarget()

	for seed := int64(0); seed < 20; seed++ {
		q := newTestGenerator(seed).Generate(target, verbPool())
		assert.Equal(t, models.KindBlank, q.Kind)
		assert.Contains(t, q.Options, "affect")
	}
}

func TestGenerate_DeterministicForSeed(t *testing.T) {
	pool := verbPool()
	target := pool[0]
	target.ExampleBlank = "Reforms helped ____ the situation."

	for seed := int64(0); seed < 10; seed++ {
		a := newTestGenerator(seed).Generate(target, pool)
		b := newTestGenerator(seed).Generate(target, pool)
		assert.Equal(t, a, b)
	}
}

// Random banks with missing fields still yield well-formed questions.
func TestGenerate_RandomBanksAreWellFormed(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	words := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta", "iota", "kappa"}
	posTags := []string{"", "verb", "noun", "adj", "nan"}
	topics := []string{"", "Science", "History"}

	for round := 0; round < 300; round++ {
		size := 1 + rng.Intn(len(words))
		table := make(models.Table, 0, size)
		for i := 0; i < size; i++ {
			item := models.VocabItem{
				ID:    int64(i + 1),
				Word:  words[i],
				POS:   posTags[rng.Intn(len(posTags))],
				Topic: topics[rng.Intn(len(topics))],
				Level: 1 + rng.Intn(3),
			}
			for s := rng.Intn(4); s > 0; s-- {
				item.Synonyms = append(item.Synonyms, fmt.Sprintf("syn%d", rng.Intn(12)))
			}
			for c := rng.Intn(3); c > 0; c-- {
				item.Confusables = append(item.Confusables, words[rng.Intn(len(words))])
			}
			if rng.Intn(2) == 0 {
				item.ExampleBlank = "Fill ____ here."
			}
			table = append(table, item)
		}

		target := table[rng.Intn(len(table))]
		q := newTestGenerator(int64(round)).Generate(target, table)
		assertWellFormed(t, q)
		if q.Kind == models.KindBlank {
			assert.Equal(t, []string{target.Word}, q.CorrectAnswers)
			assert.Contains(t, q.Options, target.Word)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("Option A"))
	assert.True(t, IsPlaceholder("Option 3"))
	assert.False(t, IsPlaceholder("Optional"))
	assert.False(t, IsPlaceholder("option a"))
	assert.False(t, IsPlaceholder("Option AB"))
}
