package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppName directory name under the XDG base directories
const AppName = "stashbot"

// ErrMissingToken is returned when the bot is started without a token
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is required")

// Config application configuration
type Config struct {
	// Telegram
	TelegramToken        string `env:"TELEGRAM_BOT_TOKEN"`
	DeleteSecretMessages bool   `env:"DELETE_SECRET_MESSAGES" envDefault:"true"`
	CommandPrefix        string `env:"COMMAND_PREFIX" envDefault:"/"`

	// Database (defaults to the XDG data directory)
	DatabasePath    string        `env:"DATABASE_PATH"`
	NoteDedupWindow time.Duration `env:"NOTE_DEDUP_WINDOW" envDefault:"1h"`

	// Categorization
	RulesPath        string `env:"RULES_PATH"` // optional YAML override
	MaxContentLength int    `env:"MAX_CONTENT_LENGTH" envDefault:"10000"`

	// OCR
	MaxImageSize   int64  `env:"MAX_IMAGE_SIZE" envDefault:"10485760"`
	OCRLanguage    string `env:"OCR_LANGUAGE" envDefault:"eng"`
	OCRConcurrency int    `env:"OCR_CONCURRENCY" envDefault:"2"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// DefaultDatabasePath returns the database location under XDG_DATA_HOME
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, AppName, "stash.db")
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.MaxContentLength <= 0:
		return fmt.Errorf("MAX_CONTENT_LENGTH must be positive, got %d", c.MaxContentLength)
	case c.NoteDedupWindow <= 0:
		return fmt.Errorf("NOTE_DEDUP_WINDOW must be positive, got %s", c.NoteDedupWindow)
	case c.MaxImageSize <= 0:
		return fmt.Errorf("MAX_IMAGE_SIZE must be positive, got %d", c.MaxImageSize)
	case c.OCRConcurrency <= 0:
		return fmt.Errorf("OCR_CONCURRENCY must be positive, got %d", c.OCRConcurrency)
	case c.CommandPrefix == "":
		return errors.New("COMMAND_PREFIX must not be empty")
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// ValidateBot checks the settings only the bot needs
func (c *Config) ValidateBot() error {
	if c.TelegramToken == "" {
		return ErrMissingToken
	}
	return nil
}
