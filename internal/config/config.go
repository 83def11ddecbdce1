// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxAttachmentMB is the attachment size ceiling when unset.
const DefaultMaxAttachmentMB = 10

// Config holds all configuration for the application.
type Config struct {
	DatabasePath    string
	ListenAddr      string
	LogLevel        string
	SyncEnabled     bool
	SyncURL         string
	SyncInterval    time.Duration
	MaxAttachmentMB int64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: os.Getenv("FINBOOK_DB_PATH"),
		ListenAddr:   os.Getenv("FINBOOK_LISTEN_ADDR"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		SyncURL:      os.Getenv("SYNC_URL"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "finbook.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8990"
	}

	cfg.SyncEnabled = os.Getenv("SYNC_ENABLED") == "true"

	cfg.SyncInterval = 15 * time.Minute
	if minStr := os.Getenv("SYNC_INTERVAL_MINUTES"); minStr != "" {
		if m, err := strconv.Atoi(minStr); err == nil && m > 0 {
			cfg.SyncInterval = time.Duration(m) * time.Minute
		}
	}

	cfg.MaxAttachmentMB = DefaultMaxAttachmentMB
	if mbStr := os.Getenv("MAX_ATTACHMENT_MB"); mbStr != "" {
		if mb, err := strconv.ParseInt(mbStr, 10, 64); err == nil && mb > 0 {
			cfg.MaxAttachmentMB = mb
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that the configuration is internally consistent.
func (c *Config) validate() error {
	var errs []string

	if c.SyncEnabled && strings.TrimSpace(c.SyncURL) == "" {
		errs = append(errs, "SYNC_URL is required when SYNC_ENABLED=true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// MaxAttachmentBytes returns the attachment size ceiling in bytes.
func (c *Config) MaxAttachmentBytes() int64 {
	return c.MaxAttachmentMB * 1024 * 1024
}
