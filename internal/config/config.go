// Package config handles configuration loading for the debit note service.
// It supports YAML config files, an optional .env file and environment
// variable overrides.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DEBITNOTE_PDF_ENDPOINT.
const EnvPrefix = "DEBITNOTE"

// Config represents the complete application configuration.
type Config struct {
	PDF      PDFConfig     `mapstructure:"pdf"      yaml:"pdf"`
	API      APIConfig     `mapstructure:"api"      yaml:"api"`
	Session  SessionConfig `mapstructure:"session"  yaml:"session"`
	Output   OutputConfig  `mapstructure:"output"   yaml:"output"`
	Form     FormConfig    `mapstructure:"form"     yaml:"form"`
	Logging  LoggingConfig `mapstructure:"logging"  yaml:"logging"`
	Timezone string        `mapstructure:"timezone" yaml:"timezone"` // IANA name used for date_issued
}

// PDFConfig holds settings for the remote PDF generation endpoint.
type PDFConfig struct {
	Endpoint  string        `mapstructure:"endpoint"   yaml:"endpoint"`
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"`
	MaxBytes  int64         `mapstructure:"max_bytes"  yaml:"max_bytes"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`

	// Outbound pacing: bursts of RateBurst requests, one more every
	// RateInterval. A zero RateBurst disables pacing.
	RateBurst    int           `mapstructure:"rate_burst"    yaml:"rate_burst"`
	RateInterval time.Duration `mapstructure:"rate_interval" yaml:"rate_interval"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns the host:port the server listens on.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// SessionConfig controls how many form sessions are kept and for how long.
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"              yaml:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
	MaxSessions     int           `mapstructure:"max_sessions"     yaml:"max_sessions"`    // zero means unbounded
	CreateBurst     int           `mapstructure:"create_burst"     yaml:"create_burst"`    // zero disables pacing
	CreateInterval  time.Duration `mapstructure:"create_interval"  yaml:"create_interval"` // one new session per interval after a burst
}

// OutputConfig holds where the CLI writes generated documents.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// FormConfig holds form defaults.
type FormConfig struct {
	DefaultRate float64 `mapstructure:"default_rate" yaml:"default_rate"` // percent
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.debitnote/config.yaml (home directory)
//  3. /etc/debitnote/config.yaml (system)
//
// A .env file in the working directory is loaded first, if present.
// Environment variables override config file values.
// Format: DEBITNOTE_<SECTION>_<KEY>, e.g., DEBITNOTE_PDF_ENDPOINT
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".debitnote"))
	v.AddConfigPath("/etc/debitnote")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads ./.env into the process environment. A missing file is
// not an error.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}
}

// viperDefaults returns a viper instance holding only the defaults.
func viperDefaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// PDF endpoint defaults
	v.SetDefault("pdf.endpoint", "https://utilitycoverapi.vercel.app/generate-debit-note")
	v.SetDefault("pdf.timeout", 60*time.Second)
	v.SetDefault("pdf.max_bytes", 20<<20)
	v.SetDefault("pdf.user_agent", "debitnote/1.0")
	v.SetDefault("pdf.rate_burst", 5)
	v.SetDefault("pdf.rate_interval", time.Second)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Sessions live about as long as a browser tab would
	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.cleanup_interval", 5*time.Minute)
	v.SetDefault("session.max_sessions", 10000)
	v.SetDefault("session.create_burst", 30)
	v.SetDefault("session.create_interval", 200*time.Millisecond)

	v.SetDefault("output.dir", ".")
	v.SetDefault("form.default_rate", 3.5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("timezone", "Africa/Nairobi")
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PDF.Endpoint) == "" {
		return errors.New("pdf.endpoint must not be empty")
	}
	if c.PDF.Timeout < 0 {
		return fmt.Errorf("pdf.timeout must not be negative, got %s", c.PDF.Timeout)
	}
	if c.PDF.MaxBytes <= 0 {
		return fmt.Errorf("pdf.max_bytes must be positive, got %d", c.PDF.MaxBytes)
	}
	if c.PDF.RateBurst < 0 || c.PDF.RateInterval < 0 {
		return errors.New("pdf.rate_burst and pdf.rate_interval must not be negative")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.MaxSessions < 0 {
		return fmt.Errorf("session.max_sessions must not be negative, got %d", c.Session.MaxSessions)
	}
	if c.Session.CreateBurst < 0 || c.Session.CreateInterval < 0 {
		return errors.New("session.create_burst and session.create_interval must not be negative")
	}
	if c.Form.DefaultRate < 0 {
		return fmt.Errorf("form.default_rate must not be negative, got %v", c.Form.DefaultRate)
	}
	return nil
}

// ParseLevel maps a logging level name onto slog.Level. Unknown names fall
// back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w according to lc.
func NewLogger(lc LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(lc.Level)}
	if strings.EqualFold(lc.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetupLogging installs a logger built from lc as the process default.
func SetupLogging(lc LoggingConfig) *slog.Logger {
	logger := NewLogger(lc, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
