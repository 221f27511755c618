package models

import (
	"fmt"
	"strings"
)

// StudyMode selects which items a session draws from
type StudyMode string

const (
	// ModeStandard studies new items and items whose interval elapsed
	ModeStandard StudyMode = "standard"
	// ModeMistakesOnly reviews items answered wrong and not yet recovered
	ModeMistakesOnly StudyMode = "mistakes-only"
)

// AllTopics disables the topic filter.
const AllTopics = "all"

// ParseStudyMode accepts the canonical names and the labels of the setup screen.
func ParseStudyMode(s string) (StudyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "standard study", "standard study (srs)", "srs":
		return ModeStandard, nil
	case "mistakes-only", "mistakes", "review mistakes only":
		return ModeMistakesOnly, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, s)
	}
}

// SessionConfig holds the filters chosen on the setup screen
type SessionConfig struct {
	Topic    string    `json:"topic" mapstructure:"topic"`
	MinLevel int       `json:"min_level" mapstructure:"min_level"`
	MaxLevel int       `json:"max_level" mapstructure:"max_level"`
	Goal     int       `json:"goal" mapstructure:"goal"`
	Mode     StudyMode `json:"mode" mapstructure:"mode"`
}

// DefaultSessionConfig mirrors the defaults of the setup screen
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Topic:    AllTopics,
		MinLevel: 1,
		MaxLevel: 3,
		Goal:     10,
		Mode:     ModeStandard,
	}
}

// AllTopicsSelected reports whether the topic filter is disabled.
func (c SessionConfig) AllTopicsSelected() bool {
	topic := strings.TrimSpace(c.Topic)
	return topic == "" || strings.EqualFold(topic, AllTopics)
}

// Validate checks the ranges of the configuration.
func (c SessionConfig) Validate() error {
	if c.MinLevel > c.MaxLevel {
		return fmt.Errorf("%w: min level %d is above max level %d", ErrInvalidConfig, c.MinLevel, c.MaxLevel)
	}
	if c.Goal <= 0 {
		return fmt.Errorf("%w: goal must be positive, got %d", ErrInvalidConfig, c.Goal)
	}
	if c.Mode != ModeStandard && c.Mode != ModeMistakesOnly {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, c.Mode)
	}
	return nil
}

// SessionStats are the running counters of one session. They are never persisted.
type SessionStats struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Total   int `json:"total"`
}

// Record counts one response.
func (s *SessionStats) Record(correct bool) {
	if correct {
		s.Correct++
	} else {
		s.Wrong++
	}
	s.Total++
}

// Score returns the share of correct answers as a whole percentage.
func (s SessionStats) Score() int {
	if s.Total == 0 {
		return 0
	}
	return s.Correct * 100 / s.Total
}
