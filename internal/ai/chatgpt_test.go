package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocadrill/pkg/models"
)

func chatReply(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *ChatGPT {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: 3,
		Timeout:    time.Second,
		Backoff:    time.Millisecond,
	}, nil)
	require.NoError(t, err)
	return client
}

var sampleQuestion = models.Question{
	Kind:           models.KindSynonym,
	TargetWord:     "ameliorate",
	Prompt:         "What is a synonym for: ameliorate?",
	Options:        []string{"desert", "improve", "frank", "support"},
	CorrectAnswers: []string{"improve", "better"},
	DisplayAnswer:  "improve",
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNew_AppliesDefaults(t *testing.T) {
	c, err := New(Config{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ChatModel, c.config.ChatModel)
	assert.Equal(t, 3, c.config.MaxRetries)
	assert.Equal(t, time.Second, c.config.Backoff)
}

func TestJudge_ParsesVerdict(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(chatReply(`{"choice": "Improve", "score": 9, "comment": "clear"}`))
	})

	v, err := client.Judge(context.Background(), sampleQuestion)
	require.NoError(t, err)
	assert.Equal(t, "improve", v.Choice, "choice is matched back to the option text")
	assert.Equal(t, 5, v.Score)
	assert.Equal(t, "clear", v.Comment)
	assert.Equal(t, "gpt-4o-mini", body["model"])
}

func TestJudge_RejectsUnknownChoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatReply(`{"choice": "better", "score": 3}`))
	})

	_, err := client.Judge(context.Background(), sampleQuestion)
	assert.ErrorIs(t, err, ErrInvalidVerdict)
}

func TestJudge_RetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(chatReply("```json\n{\"choice\": \"improve\", \"score\": 4}\n```"))
	})

	v, err := client.Judge(context.Background(), sampleQuestion)
	require.NoError(t, err)
	assert.Equal(t, "improve", v.Choice)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestJudge_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Judge(context.Background(), sampleQuestion)
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestJudge_StopsOnCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client.config.Backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Judge(ctx, sampleQuestion)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSpeech_ReturnsAudio(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "lucid", req["input"])
		assert.Equal(t, "alloy", req["voice"])
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-fake-mp3"))
	})

	audio, err := client.Speech(context.Background(), "lucid")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-fake-mp3"), audio)
}

func TestParseVerdict(t *testing.T) {
	options := []string{"a", "b", "c", "d"}

	v, err := parseVerdict(`{"choice": " c ", "score": 0}`, options)
	require.NoError(t, err)
	assert.Equal(t, "c", v.Choice)
	assert.Equal(t, 1, v.Score)

	_, err = parseVerdict("I pick c", options)
	assert.ErrorIs(t, err, ErrInvalidVerdict)
}

func TestJudgePrompt_IncludesStemAndOptions(t *testing.T) {
	q := models.Question{
		Prompt:  "Fill in the blank with the best word:",
		Stem:    "New evidence will ____ the theory.",
		Options: []string{"bolster", "bluster", "holster", "lucid"},
	}
	prompt := judgePrompt(q)
	assert.Contains(t, prompt, q.Stem)
	assert.Contains(t, prompt, "4. lucid")
}
