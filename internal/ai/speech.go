package ai

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

// Speech renders text as mp3 audio.
func (c *ChatGPT) Speech(ctx context.Context, text string) ([]byte, error) {
	var audio []byte
	err := c.doWithRetry(ctx, func(ctx context.Context) error {
		resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(c.config.SpeechModel),
			Input:          text,
			Voice:          openai.SpeechVoice(c.config.Voice),
			ResponseFormat: openai.SpeechResponseFormatMp3,
		})
		if err != nil {
			return err
		}
		defer resp.Close()

		audio, err = io.ReadAll(resp)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render speech: %w", err)
	}
	return audio, nil
}
