package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/example/vocadrill/pkg/models"
)

// ErrInvalidVerdict is returned when the model reply cannot be used
var ErrInvalidVerdict = errors.New("invalid judge verdict")

const judgeSystemPrompt = `You review multiple-choice vocabulary questions for English learners.
Answer the question by picking exactly one of the given options, copied verbatim.
Then rate the question quality from 1 to 5: 5 means exactly one option is clearly
correct and the distractors are plausible; 1 means the question is broken.
Reply with a JSON object: {"choice": "<option>", "score": <1-5>, "comment": "<short reason>"}.`

// Judge asks the chat model to answer and rate q. The choice is always one
// of q.Options; anything else is ErrInvalidVerdict.
func (c *ChatGPT) Judge(ctx context.Context, q models.Question) (models.Verdict, error) {
	req := openai.ChatCompletionRequest{
		Model: c.config.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: judgeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: judgePrompt(q)},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	content, err := c.complete(ctx, req)
	if err != nil {
		return models.Verdict{}, err
	}
	return parseVerdict(content, q.Options)
}

func judgePrompt(q models.Question) string {
	var b strings.Builder
	b.WriteString(q.Prompt)
	b.WriteByte('\n')
	if q.Stem != "" {
		b.WriteString(q.Stem)
		b.WriteByte('\n')
	}
	b.WriteString("Options:\n")
	for i, option := range q.Options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, option)
	}
	return b.String()
}

func parseVerdict(content string, options []string) (models.Verdict, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var v models.Verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &v); err != nil {
		return models.Verdict{}, fmt.Errorf("%w: %v", ErrInvalidVerdict, err)
	}

	choice := strings.TrimSpace(v.Choice)
	matched := ""
	for _, option := range options {
		if strings.EqualFold(option, choice) {
			matched = option
			break
		}
	}
	if matched == "" {
		return models.Verdict{}, fmt.Errorf("%w: choice %q is not an option", ErrInvalidVerdict, v.Choice)
	}
	v.Choice = matched

	if v.Score < 1 {
		v.Score = 1
	}
	if v.Score > 5 {
		v.Score = 5
	}
	return v, nil
}
