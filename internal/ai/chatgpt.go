// Package ai wraps the OpenAI-compatible endpoints used by the quality
// judge and the pronunciation audio.
package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// ErrNoAPIKey is returned by New when no key is configured
var ErrNoAPIKey = errors.New("ai api key is not set")

// Config holds the AI provider configuration.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	ChatModel   string        `mapstructure:"chat_model"`
	SpeechModel string        `mapstructure:"speech_model"`
	Voice       string        `mapstructure:"voice"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"` // Per attempt
	Backoff     time.Duration `mapstructure:"backoff"` // First retry wait, doubled on every retry
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "https://api.openai.com/v1",
		ChatModel:   "gpt-4o-mini",
		SpeechModel: string(openai.TTSModel1),
		Voice:       string(openai.VoiceAlloy),
		MaxRetries:  3,
		Timeout:     30 * time.Second,
		Backoff:     time.Second,
	}
}

// ChatGPT represents a client for the OpenAI API
type ChatGPT struct {
	client *openai.Client
	config Config
	logger logrus.FieldLogger
}

// New creates a new client. Unset values fall back to DefaultConfig.
func New(cfg Config, logger logrus.FieldLogger) (*ChatGPT, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	defaults := DefaultConfig()
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaults.Backoff
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defaults.ChatModel
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = defaults.SpeechModel
	}
	if cfg.Voice == "" {
		cfg.Voice = defaults.Voice
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &ChatGPT{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger.WithField("component", "ai"),
	}, nil
}

// complete runs one chat completion and returns the first choice.
func (c *ChatGPT) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var result string
	err := c.doWithRetry(ctx, func(ctx context.Context) error {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}
	return result, nil
}

// doWithRetry executes fn with a per-attempt timeout and exponential backoff.
func (c *ChatGPT) doWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt < c.config.MaxRetries-1 {
			waitTime := time.Duration(math.Pow(2, float64(attempt))) * c.config.Backoff
			c.logger.WithFields(logrus.Fields{
				"attempt":   attempt + 1,
				"wait_time": waitTime,
			}).WithError(err).Debug("AI request failed, retrying")
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
