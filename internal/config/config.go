// Package config loads runtime settings from the environment.
//
// A .env file in the working directory is read first when present, then the
// process environment is parsed into Config with caarlos0/env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	AdminIDs         []int64 `env:"TELEGRAM_ADMIN_IDS" envSeparator:","`
	LogChatID        int64   `env:"LOG_CHAT_ID"` // optional chat receiving every action

	DataDir   string `env:"DATA_DIR"   envDefault:"data"`
	DBPath    string `env:"DB_PATH"`    // defaults to <DATA_DIR>/activity.db
	BackupDir string `env:"BACKUP_DIR" envDefault:"backups"`

	// StrictIndex makes the store report bad indices instead of ignoring them
	StrictIndex bool `env:"STRICT_INDEX" envDefault:"false"`

	// HTTP API, disabled when HTTPAddr is empty
	HTTPAddr    string `env:"HTTP_ADDR"`
	WebAPIToken string `env:"WEB_API_TOKEN"`

	Log LogConfig
}

// LogConfig controls the rolling log file
type LogConfig struct {
	File       string `env:"LOG_FILE"         envDefault:"logs/anime_bot.log"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB"  envDefault:"10"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS"  envDefault:"7"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
	Compress   bool   `env:"LOG_COMPRESS"     envDefault:"false"`
}

// Load reads .env (if any) and parses the environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}
	return Parse()
}

// Parse maps the current environment onto a Config without reading .env
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "activity.db")
	}
	return cfg, nil
}

// IsAdmin reports whether userID may use admin commands
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.AdminIDs, userID)
}

// HTTPEnabled reports whether the HTTP API should be served
func (c *Config) HTTPEnabled() bool {
	return c.HTTPAddr != ""
}
