package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/vocadrill/internal/ai"
	"github.com/example/vocadrill/internal/qc"
	"github.com/example/vocadrill/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. VOCADRILL_SESSION_GOAL
const EnvPrefix = "VOCADRILL"

// Config holds all configuration for our application
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Session  SessionConfig  `mapstructure:"session"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	QC       qc.Config      `mapstructure:"qc"`
	AI       ai.Config      `mapstructure:"ai"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Remind   RemindConfig   `mapstructure:"remind"`
}

// DatabaseConfig selects the item store. Driver is sqlite3, postgres, xlsx or csv.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SessionConfig holds the default drill filters
type SessionConfig struct {
	Topic    string `mapstructure:"topic"`
	Goal     int    `mapstructure:"goal"`
	MinLevel int    `mapstructure:"min_level"`
	MaxLevel int    `mapstructure:"max_level"`
	Mode     string `mapstructure:"mode"`
	Seed     int64  `mapstructure:"seed"` // 0 seeds from the clock
}

// QuizConfig holds question generation options
type QuizConfig struct {
	StrictAnswers bool `mapstructure:"strict_answers"`
}

// AudioConfig holds pronunciation settings
type AudioConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CacheDir string `mapstructure:"cache_dir"`
}

// RemindConfig holds the daily reminder settings
type RemindConfig struct {
	At string `mapstructure:"at"`
}

// Load reads .env, the config file and environment variables into the
// global viper instance, so flags bound to it take precedence.
// configFile may be empty to search the default locations.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}
	return load(viper.GetViper(), configFile)
}

func load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("vocadrill")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "vocadrill"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.QC.StrictAnswers = config.Quiz.StrictAnswers

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", filepath.Join("data", "vocab.db"))

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	session := models.DefaultSessionConfig()
	v.SetDefault("session.topic", session.Topic)
	v.SetDefault("session.goal", session.Goal)
	v.SetDefault("session.min_level", session.MinLevel)
	v.SetDefault("session.max_level", session.MaxLevel)
	v.SetDefault("session.mode", string(session.Mode))
	v.SetDefault("session.seed", 0)

	v.SetDefault("quiz.strict_answers", false)

	qcDefaults := qc.DefaultConfig()
	v.SetDefault("qc.count", qcDefaults.Count)
	v.SetDefault("qc.seed", qcDefaults.Seed)
	v.SetDefault("qc.judge", false)
	v.SetDefault("qc.output", "")

	aiDefaults := ai.DefaultConfig()
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", aiDefaults.BaseURL)
	v.SetDefault("ai.chat_model", aiDefaults.ChatModel)
	v.SetDefault("ai.speech_model", aiDefaults.SpeechModel)
	v.SetDefault("ai.voice", aiDefaults.Voice)
	v.SetDefault("ai.max_retries", aiDefaults.MaxRetries)
	v.SetDefault("ai.timeout", aiDefaults.Timeout)
	v.SetDefault("ai.backoff", aiDefaults.Backoff)

	v.SetDefault("audio.enabled", false)
	v.SetDefault("audio.cache_dir", filepath.Join("data", "audio"))

	v.SetDefault("remind.at", "09:00")
}

// SessionDefaults converts the session section into a validated
// models.SessionConfig.
func (c *Config) SessionDefaults() (models.SessionConfig, error) {
	mode, err := models.ParseStudyMode(c.Session.Mode)
	if err != nil {
		return models.SessionConfig{}, err
	}
	cfg := models.SessionConfig{
		Topic:    c.Session.Topic,
		MinLevel: c.Session.MinLevel,
		MaxLevel: c.Session.MaxLevel,
		Goal:     c.Session.Goal,
		Mode:     mode,
	}
	if err := cfg.Validate(); err != nil {
		return models.SessionConfig{}, err
	}
	return cfg, nil
}

// Seed returns the configured seed or one derived from the clock.
func Seed(configured int64) int64 {
	if configured != 0 {
		return configured
	}
	return time.Now().UnixNano()
}
