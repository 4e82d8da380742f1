// Package config reads ~/.chats/config.toml and the CHATS_* environment
// variables that override it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. CHATS_LOG_LEVEL.
const EnvPrefix = "chats"

// Config represents the global ~/.chats/config.toml.
type Config struct {
	DefaultSession  string `toml:"default_session" envconfig:"DEFAULT_SESSION"`
	LogLevel        string `toml:"log_level" envconfig:"LOG_LEVEL"`
	DedupeReceipts  bool   `toml:"dedupe_receipts" envconfig:"DEDUPE_RECEIPTS"`
	LoadConcurrency int    `toml:"load_concurrency" envconfig:"LOAD_CONCURRENCY"`
}

// Load reads config from the given path. Returns nil and an error if the
// file is missing.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Resolve loads path if it exists and applies environment overrides on
// top. A missing file is not an error.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = &Config{}
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Level is the console log level. Unset or unknown values mean info.
func (c *Config) Level() zapcore.Level {
	if c == nil || c.LogLevel == "" {
		return zapcore.InfoLevel
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
