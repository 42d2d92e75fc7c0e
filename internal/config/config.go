// Package config reads process configuration from the environment, an
// optional .env file and an optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings is returned for a settings file that parses but holds
// unusable values.
var ErrInvalidSettings = errors.New("invalid settings")

// Locales are the locales track resources exist for, preferred first.
var Locales = []language.Tag{language.English, language.Spanish}

var localeMatcher = language.NewMatcher(Locales)

type Config struct {
	Environment string
	LogLevel    slog.Level
	LogFile     string

	// DataDir overrides the embedded resources when set.
	DataDir string

	SaveBackend string
	SaveFile    string
	RedisURL    string
	PostgresDSN string

	SpectateAddr string
	Telemetry    bool

	SettingsFile string
	Settings     Settings
}

// Settings are the player-facing options kept in the YAML settings file.
type Settings struct {
	Locale    string            `yaml:"locale"`
	TickRate  int               `yaml:"tick_rate"`
	KeyHoldMS int               `yaml:"key_hold_ms"`
	Palette   map[string]string `yaml:"palette"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Locale:    "en",
		TickRate:  120,
		KeyHoldMS: 150,
	}
}

// Load reads .env (when present), the environment and the settings file.
func Load() (*Config, error) {
	// A missing .env is fine: variables may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		LogFile:      getEnv("LOG_FILE", "sagequest.log"),
		DataDir:      os.Getenv("DATA_DIR"),
		SaveBackend:  getEnv("SAVE_BACKEND", "file"),
		SaveFile:     getEnv("SAVE_FILE", "saves/saves.json"),
		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		SpectateAddr: os.Getenv("SPECTATE_ADDR"),
		Telemetry:    parseBool(getEnv("TELEMETRY", "false")),
		SettingsFile: getEnv("SETTINGS_FILE", "settings.yaml"),
	}

	settings, err := LoadSettings(cfg.SettingsFile)
	if err != nil {
		return nil, err
	}
	cfg.Settings = settings
	return cfg, nil
}

// LoadSettings reads a YAML settings file over the defaults. A missing file
// yields the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}

	locale, err := ParseLocale(s.Locale)
	if err != nil {
		return s, err
	}
	s.Locale = locale
	if s.TickRate <= 0 {
		return s, fmt.Errorf("%w: tick_rate must be positive, got %d", ErrInvalidSettings, s.TickRate)
	}
	if s.KeyHoldMS < 0 {
		return s, fmt.Errorf("%w: key_hold_ms must not be negative, got %d", ErrInvalidSettings, s.KeyHoldMS)
	}
	return s, nil
}

// ParseLocale maps a BCP 47 tag onto a supported locale ("en" or "es").
func ParseLocale(tag string) (string, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("%w: locale %q: %v", ErrInvalidSettings, tag, err)
	}
	_, idx, conf := localeMatcher.Match(t)
	if conf == language.No {
		return "", fmt.Errorf("%w: unsupported locale %q", ErrInvalidSettings, tag)
	}
	base, _ := Locales[idx].Base()
	return base.String(), nil
}

// KeyHoldTicks converts the key hold time into loop ticks, at least one.
func (s Settings) KeyHoldTicks() int {
	ticks := s.KeyHoldMS * s.TickRate / 1000
	if ticks < 1 {
		return 1
	}
	return ticks
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
