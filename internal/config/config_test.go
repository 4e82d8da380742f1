package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := &Config{DefaultSession: "work", LogLevel: "debug", DedupeReceipts: true, LoadConcurrency: 4}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", *loaded, *cfg)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Save(path, &Config{DefaultSession: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestResolveMissingFile(t *testing.T) {
	cfg, err := Resolve(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if *cfg != (Config{}) {
		t.Errorf("Resolve() = %+v, want zero config", *cfg)
	}
}

func TestResolveEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, &Config{DefaultSession: "home", LogLevel: "warn", LoadConcurrency: 2}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHATS_DEFAULT_SESSION", "work")
	t.Setenv("CHATS_DEDUPE_RECEIPTS", "true")

	cfg, err := Resolve(path)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.DefaultSession != "work" {
		t.Errorf("DefaultSession = %q, want work", cfg.DefaultSession)
	}
	if !cfg.DedupeReceipts {
		t.Error("DedupeReceipts = false, want true")
	}
	// Untouched by the environment.
	if cfg.LogLevel != "warn" || cfg.LoadConcurrency != 2 {
		t.Errorf("file values lost: %+v", *cfg)
	}
}

func TestResolveBadEnv(t *testing.T) {
	t.Setenv("CHATS_LOAD_CONCURRENCY", "many")
	if _, err := Resolve(filepath.Join(t.TempDir(), "config.toml")); err == nil {
		t.Error("Resolve() expected error for non-numeric CHATS_LOAD_CONCURRENCY")
	}
}

func TestResolveMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_session = [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(path); err == nil {
		t.Error("Resolve() expected error for malformed file")
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"chatty", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		if got := cfg.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	var nilCfg *Config
	if got := nilCfg.Level(); got != zapcore.InfoLevel {
		t.Errorf("nil Level() = %v, want info", got)
	}
}
