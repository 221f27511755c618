package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/jmoiron/sqlx"

	"github.com/example/vocadrill/internal/ai"
	"github.com/example/vocadrill/internal/audio"
	"github.com/example/vocadrill/internal/config"
	"github.com/example/vocadrill/internal/database"
	"github.com/example/vocadrill/internal/excel"
	"github.com/example/vocadrill/internal/session"
	"github.com/example/vocadrill/internal/spaced_repetition"
)

// backend is the opened item store; db is nil for spreadsheet stores
type backend struct {
	store session.Store
	db    *sqlx.DB
}

func (b *backend) Close() {
	if b.db != nil {
		b.db.Close()
	}
}

func openBackend(ctx context.Context, c *config.Config) (*backend, error) {
	switch c.Database.Driver {
	case database.DriverSQLite, database.DriverPostgres:
		db, err := database.Connect(ctx, c.Database.Driver, c.Database.DSN)
		if err != nil {
			return nil, err
		}
		return &backend{store: database.NewVocabRepository(db, logger), db: db}, nil
	case "xlsx", "csv":
		return &backend{store: excel.NewStore(c.Database.DSN, logger)}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", c.Database.Driver)
	}
}

// newAIClient returns nil without an error when no key is configured
func newAIClient(c *config.Config) (*ai.ChatGPT, error) {
	client, err := ai.New(c.AI, logger)
	if errors.Is(err, ai.ErrNoAPIKey) {
		return nil, nil
	}
	return client, err
}

func newRenderer(c *config.Config) *audio.Renderer {
	var provider audio.SpeechProvider
	client, err := newAIClient(c)
	if err != nil {
		logger.WithError(err).Warn("speech provider unavailable")
	} else if client != nil {
		provider = client
	}
	return audio.NewRenderer(c.Audio.CacheDir, c.AI.Voice, provider, logger)
}

func newLeitner(seed int64) *spaced_repetition.Leitner {
	return spaced_repetition.NewLeitner(rand.New(rand.NewSource(seed)))
}
