// Package audio renders word pronunciations and caches them on disk.
package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned when nothing is cached and no provider is set
var ErrUnavailable = errors.New("speech unavailable")

// SpeechProvider turns text into mp3 audio
type SpeechProvider interface {
	Speech(ctx context.Context, text string) ([]byte, error)
}

// Renderer returns cached audio or asks the provider and caches the result.
// Failures are never cached.
type Renderer struct {
	cacheDir string
	voice    string
	provider SpeechProvider
	logger   logrus.FieldLogger
	mu       sync.Mutex
}

// NewRenderer creates a renderer. provider may be nil, in which case only
// cached audio is served.
func NewRenderer(cacheDir, voice string, provider SpeechProvider, logger logrus.FieldLogger) *Renderer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Renderer{
		cacheDir: cacheDir,
		voice:    voice,
		provider: provider,
		logger:   logger.WithField("component", "audio"),
	}
}

func (r *Renderer) cacheKey(text string) string {
	h := sha256.Sum256([]byte(r.voice + ":" + text))
	return hex.EncodeToString(h[:16])
}

// CachePath is where the audio for text is stored.
func (r *Renderer) CachePath(text string) string {
	return filepath.Join(r.cacheDir, r.cacheKey(normalize(text))+".mp3")
}

// Render returns mp3 audio for word.
func (r *Renderer) Render(ctx context.Context, word string) ([]byte, error) {
	text := normalize(word)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrUnavailable)
	}

	path := r.CachePath(text)
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check cache after acquiring lock
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	}

	if r.provider == nil {
		return nil, fmt.Errorf("%w for %q", ErrUnavailable, text)
	}

	data, err := r.provider.Speech(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to render %q: %w", text, err)
	}

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		r.logger.WithError(err).Warn("audio cache unavailable")
		return data, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.logger.WithError(err).WithField("path", path).Warn("failed to cache audio")
	}
	return data, nil
}

func normalize(text string) string {
	return strings.TrimSpace(text)
}
