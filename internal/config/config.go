package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode `toml:"mode"`

	Port     string `toml:"port"`
	LogLevel string `toml:"log_level"`
	Timezone string `toml:"timezone"`

	// AllowedOrigins may open the chat websocket from another origin.
	AllowedOrigins []string `toml:"allowed_origins"`

	StorageBackend string `toml:"storage_backend"` // "memory", "sqlite" or "firestore"
	SQLitePath     string `toml:"sqlite_path"`

	GCPProjectID string `toml:"gcp_project"`
	GCPLocation  string `toml:"gcp_location"`

	AIBackend    string `toml:"ai_backend"` // "mock", "gemini" or "openai"
	ModelName    string `toml:"model_name"`
	GeminiAPIKey string `toml:"gemini_api_key"`

	OpenAIBaseURL string `toml:"openai_base_url"`
	OpenAIAPIKey  string `toml:"openai_api_key"`
	OpenAIModel   string `toml:"openai_model"`

	EncryptSensitive bool   `toml:"encrypt_sensitive"`
	KeyPath          string `toml:"key_path"`

	RemindersEnabled bool          `toml:"reminders_enabled"`
	ReminderUser     string        `toml:"reminder_user"`
	ReminderInterval time.Duration `toml:"-"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// getListEnv splits a comma-separated variable, dropping blank items.
func getListEnv(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Mode:             ModeLocal,
		Port:             "8080",
		LogLevel:         "info",
		StorageBackend:   "memory",
		SQLitePath:       filepath.Join(dataDir, "serene.db"),
		GCPLocation:      "us-central1",
		AIBackend:        "mock",
		ModelName:        "gemini-2.5-flash",
		OpenAIBaseURL:    "https://api.openai.com/v1",
		OpenAIModel:      "gpt-4o-mini",
		KeyPath:          filepath.Join(dataDir, "master.key"),
		RemindersEnabled: false,
		ReminderUser:     "local",
		ReminderInterval: time.Minute,
	}
}

// Load builds the config from, in increasing priority: defaults, the TOML
// file named by SERENE_CONFIG, and environment variables. Variables found in
// .env.local or .env are loaded first unless already set.
func Load() (*Config, error) {
	if err := loadDotEnv(".env.local", ".env"); err != nil {
		return nil, err
	}

	cfg := Defaults()

	if path := os.Getenv("SERENE_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	switch getEnv("SERENE_MODE", string(cfg.Mode)) {
	case "gcp":
		cfg.Mode = ModeGCP
	default:
		cfg.Mode = ModeLocal
	}

	cfg.Port = getEnv("SERENE_PORT", getEnv("PORT", cfg.Port))
	cfg.LogLevel = getEnv("SERENE_LOG_LEVEL", cfg.LogLevel)
	cfg.Timezone = getEnv("SERENE_TIMEZONE", cfg.Timezone)
	cfg.AllowedOrigins = getListEnv("SERENE_ALLOWED_ORIGINS", cfg.AllowedOrigins)

	cfg.StorageBackend = getEnv("SERENE_STORAGE_BACKEND", cfg.StorageBackend)
	cfg.SQLitePath = getEnv("SERENE_SQLITE_PATH", cfg.SQLitePath)

	cfg.GCPProjectID = getEnv("SERENE_GCP_PROJECT", cfg.GCPProjectID)
	cfg.GCPLocation = getEnv("SERENE_GCP_LOCATION", cfg.GCPLocation)

	cfg.AIBackend = getEnv("SERENE_AI_BACKEND", cfg.AIBackend)
	cfg.ModelName = getEnv("SERENE_MODEL_NAME", cfg.ModelName)
	cfg.GeminiAPIKey = getEnv("SERENE_GEMINI_API_KEY", getEnv("GEMINI_API_KEY", cfg.GeminiAPIKey))

	cfg.OpenAIBaseURL = getEnv("SERENE_OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIAPIKey = getEnv("SERENE_OPENAI_API_KEY", getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey))
	cfg.OpenAIModel = getEnv("SERENE_OPENAI_MODEL", cfg.OpenAIModel)

	cfg.EncryptSensitive = getBoolEnv("SERENE_ENCRYPT_SENSITIVE", cfg.EncryptSensitive)
	cfg.KeyPath = getEnv("SERENE_KEY_PATH", cfg.KeyPath)

	cfg.RemindersEnabled = getBoolEnv("SERENE_REMINDERS", cfg.RemindersEnabled)
	cfg.ReminderUser = getEnv("SERENE_REMINDER_USER", cfg.ReminderUser)
	interval, err := getDurationEnv("SERENE_REMINDER_INTERVAL", cfg.ReminderInterval)
	if err != nil {
		return nil, err
	}
	cfg.ReminderInterval = interval

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "memory", "sqlite":
	case "firestore":
		if c.GCPProjectID == "" {
			return errors.New("SERENE_GCP_PROJECT is required for the firestore storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	switch c.AIBackend {
	case "mock":
	case "gemini":
		if c.GCPProjectID == "" && c.GeminiAPIKey == "" {
			return errors.New("gemini backend needs SERENE_GCP_PROJECT or SERENE_GEMINI_API_KEY")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return errors.New("SERENE_OPENAI_API_KEY is required for the openai backend")
		}
	default:
		return fmt.Errorf("unknown ai backend %q", c.AIBackend)
	}

	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return errors.New("SERENE_GCP_PROJECT must be set in gcp mode")
	}
	if c.ReminderInterval <= 0 {
		return errors.New("reminder interval must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the calendar used for day keys and feed labels.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".serene"
	}
	return filepath.Join(home, ".config", "serene")
}
