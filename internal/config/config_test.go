package config_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/PabloGalante/serene/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERENE_CONFIG", "")
	t.Setenv("SERENE_STORAGE_BACKEND", "")
	t.Setenv("SERENE_AI_BACKEND", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mode != config.ModeLocal || cfg.StorageBackend != "memory" || cfg.AIBackend != "mock" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ReminderInterval != time.Minute {
		t.Errorf("expected 1m reminder interval, got %s", cfg.ReminderInterval)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "serene.toml")
	content := `
port = "9000"
storage_backend = "sqlite"
sqlite_path = "/tmp/serene-test.db"
timezone = "UTC"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SERENE_CONFIG", path)
	t.Setenv("SERENE_PORT", "9100")
	t.Setenv("SERENE_STORAGE_BACKEND", "")
	t.Setenv("SERENE_AI_BACKEND", "")
	t.Setenv("SERENE_REMINDER_INTERVAL", "30")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("env should override file, got port %s", cfg.Port)
	}
	if cfg.StorageBackend != "sqlite" || cfg.SQLitePath != "/tmp/serene-test.db" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.ReminderInterval != 30*time.Second {
		t.Errorf("expected 30s, got %s", cfg.ReminderInterval)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("expected UTC location, got %v, %v", loc, err)
	}
}

func TestLoadAllowedOrigins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERENE_CONFIG", "")
	t.Setenv("SERENE_ALLOWED_ORIGINS", " https://app.serene.dev, ,http://localhost:5173 ")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{"https://app.serene.dev", "http://localhost:5173"}
	if !slices.Equal(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %q, want %q", cfg.AllowedOrigins, want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SERENE_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SERENE_CONFIG", "")
	t.Setenv("SERENE_LOG_LEVEL", "")
	t.Setenv("SERENE_STORAGE_BACKEND", "")
	t.Setenv("SERENE_AI_BACKEND", "")
	os.Unsetenv("SERENE_LOG_LEVEL")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected level from .env, got %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"firestore without project", func(c *config.Config) { c.StorageBackend = "firestore" }},
		{"unknown storage", func(c *config.Config) { c.StorageBackend = "redis" }},
		{"openai without key", func(c *config.Config) { c.AIBackend = "openai" }},
		{"gemini without credentials", func(c *config.Config) { c.AIBackend = "gemini" }},
		{"bad timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := config.Defaults().Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
}
