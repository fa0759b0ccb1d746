// Package config reads the daemon's environment configuration. Values come
// from the process environment, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habitrack/internal/keyring"
	"github.com/julianstephens/habitrack/internal/logger"
)

// Config holds settings that belong to the machine running the daemon rather
// than to the habit database.
type Config struct {
	TelegramToken  string `env:"HABITRACK_TG_TOKEN"`
	TelegramChatID int64  `env:"HABITRACK_TG_CHAT_ID"`
	TrayEnabled    bool   `env:"HABITRACK_TRAY" envDefault:"true"`

	// ReminderRefresh is how often the daemon rebuilds reminder jobs from
	// storage to pick up edits made by other processes.
	ReminderRefresh time.Duration `env:"HABITRACK_REMINDER_REFRESH" envDefault:"5m"`
	LogLevel        string        `env:"HABITRACK_LOG_LEVEL"`
}

// lookupSecret is replaced in tests
var lookupSecret = keyring.Get

// Load reads envFile when it exists, then parses the environment. Variables
// already set in the environment win over the file. When no Telegram token
// is set the keyring is consulted.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			logger.Debug("No env file, using environment variables", "path", envFile)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.TelegramToken == "" {
		token, err := lookupSecret(keyring.SecretTelegram)
		switch {
		case err == nil:
			cfg.TelegramToken = token
		case errors.Is(err, keyring.ErrNotFound):
		default:
			logger.Debug("Keyring lookup failed", "secret", keyring.SecretTelegram, "error", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations the env parser cannot express.
func (c Config) Validate() error {
	if c.ReminderRefresh < 0 {
		return fmt.Errorf("HABITRACK_REMINDER_REFRESH must not be negative, got %s", c.ReminderRefresh)
	}
	if c.TelegramChatID != 0 && c.TelegramToken == "" {
		return errors.New("HABITRACK_TG_CHAT_ID is set but no telegram token was found in HABITRACK_TG_TOKEN or the keyring")
	}
	return nil
}

// TelegramEnabled reports whether both halves of the Telegram setup are present.
func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
