package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReviewDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"date", "2024-03-15", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"timestamp suffix", "2024-03-15 00:00:00", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"sentinel", NeverReviewed, time.Time{}},
		{"garbage", "tomorrow", time.Time{}},
		{"empty", "", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseReviewDate(tt.in)))
		})
	}
}

func TestVocabItem_NextReviewString(t *testing.T) {
	var item VocabItem
	assert.True(t, item.IsNeverReviewed())
	assert.Equal(t, NeverReviewed, item.NextReviewString())

	item.NextReview = time.Date(2024, time.January, 2, 0, 0, 0, 0, time.Local)
	assert.False(t, item.IsNeverReviewed())
	assert.Equal(t, "2024-01-02", item.NextReviewString())
}

func TestVocabItem_NormalizedPOS(t *testing.T) {
	assert.Equal(t, "verb", VocabItem{POS: " Verb "}.NormalizedPOS())
	assert.Equal(t, "", VocabItem{POS: "NaN"}.NormalizedPOS())
}

func TestIsNullMarker(t *testing.T) {
	for _, s := range []string{"", "  ", "nan", "NaN", "None", "null", "<NA>"} {
		assert.True(t, IsNullMarker(s), s)
	}
	assert.False(t, IsNullMarker("nana"))
}

func TestTable_Helpers(t *testing.T) {
	table := Table{
		{ID: 3, Word: "bolster", Topic: "academic"},
		{ID: 7, Word: "Abandon", Topic: "daily"},
		{ID: 5, Word: "ameliorate", Topic: "academic"},
		{ID: 6, Word: "quell"},
	}

	require.NotNil(t, table.Find(7))
	assert.Equal(t, "Abandon", table.Find(7).Word)
	assert.Nil(t, table.Find(99))

	table.Find(5).Box = 2
	assert.Equal(t, 2, table[2].Box)

	require.NotNil(t, table.FindWord(" abandon"))
	assert.Equal(t, int64(7), table.FindWord("abandon").ID)
	assert.Nil(t, table.FindWord("missing"))

	assert.Equal(t, []string{"academic", "daily"}, table.Topics())
	assert.Equal(t, int64(7), table.MaxID())
	assert.Equal(t, int64(0), Table{}.MaxID())
}

func TestParseStudyMode(t *testing.T) {
	mode, err := ParseStudyMode("mistakes-only")
	require.NoError(t, err)
	assert.Equal(t, ModeMistakesOnly, mode)

	_, err = ParseStudyMode("cram")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestSessionConfig_Validate(t *testing.T) {
	cfg := DefaultSessionConfig()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.AllTopicsSelected())

	cfg.Topic = "academic"
	assert.False(t, cfg.AllTopicsSelected())

	bad := cfg
	bad.MinLevel, bad.MaxLevel = 3, 1
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = cfg
	bad.Goal = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestSessionStats_Score(t *testing.T) {
	var stats SessionStats
	assert.Equal(t, 0, stats.Score())

	stats.Record(true)
	stats.Record(true)
	stats.Record(false)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Correct)
	assert.Equal(t, 1, stats.Wrong)
	assert.Equal(t, 66, stats.Score())
}

func TestQuestion_Accepts(t *testing.T) {
	q := Question{CorrectAnswers: []string{"improve", "better"}}
	assert.True(t, q.Accepts("better"))
	assert.False(t, q.Accepts("Better"))
	assert.False(t, q.Accepts("worse"))
}
