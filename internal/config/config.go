package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Defaults used by Normalize.
const (
	DefaultListen        = ":8080"
	DefaultAPIURL        = "http://127.0.0.1:8000"
	DefaultDBPath        = "portal.db"
	DefaultLogLevel      = "info"
	DefaultTimeout       = 10 * time.Second
	DefaultSlowQuery     = 50 * time.Millisecond
	DefaultPurgeSchedule = "@every 1h"
	DefaultEmailFrom     = "Llave de Sol <no-responder@llavedesol.cl>"
	DefaultInbox         = "contacto@llavedesol.cl"
	DefaultHost          = "llavedesol.cl"
)

// AuthConfig holds the secrets protecting browser sessions.
type AuthConfig struct {
	// SessionSecret derives the key that seals backend tokens at rest.
	SessionSecret string `yaml:"session_secret"`
	// CSRFKey is the 32-byte key for form tokens.
	CSRFKey string `yaml:"csrf_key"`
}

// EmailConfig configures outbound notifications. An empty ResendKey disables delivery.
type EmailConfig struct {
	ResendKey string `yaml:"resend_key"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
	// Inbox receives contact-form notifications.
	Inbox string `yaml:"inbox"`
}

// Config is the portal configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	DBPath   string `yaml:"db_path"`

	// APIURL is the base URL of the REST backend.
	APIURL     string        `yaml:"api_url"`
	APITimeout time.Duration `yaml:"api_timeout"`

	SlowQuery time.Duration `yaml:"slow_query"`
	// PurgeSchedule is the cron expression of the expired-session purge.
	PurgeSchedule string `yaml:"purge_schedule"`

	// Host names the site in iCalendar UIDs.
	Host string `yaml:"host"`
	// TrustedOrigins are extra hosts allowed to submit forms (a reverse proxy's public name).
	TrustedOrigins []string `yaml:"trusted_origins"`

	// DemoCalendar serves the calendar from an in-memory list instead of the backend.
	DemoCalendar bool `yaml:"demo_calendar"`

	Auth  AuthConfig  `yaml:"auth"`
	Email EmailConfig `yaml:"email"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills in missing values with defaults.
// POST: every field except the secrets and ResendKey is non-zero
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		c.Env = EnvDevelopment
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath
	}
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.APITimeout <= 0 {
		c.APITimeout = DefaultTimeout
	}
	if c.SlowQuery <= 0 {
		c.SlowQuery = DefaultSlowQuery
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.PurgeSchedule == "" {
		c.PurgeSchedule = DefaultPurgeSchedule
	}
	if c.Email.From == "" {
		c.Email.From = DefaultEmailFrom
	}
	if c.Email.Inbox == "" {
		c.Email.Inbox = DefaultInbox
	}
	if c.Email.ReplyTo == "" {
		c.Email.ReplyTo = c.Email.Inbox
	}
}

// ApplyEnv overrides fields from LLAVE_* variables read through getenv.
// POST: returns an error for a malformed LLAVE_DEMO_CALENDAR
func (c *Config) ApplyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Listen, "LLAVE_ADDR")
	set(&c.Env, "LLAVE_ENV")
	set(&c.LogLevel, "LLAVE_LOG_LEVEL")
	set(&c.DBPath, "LLAVE_DB_PATH")
	set(&c.APIURL, "LLAVE_API_URL")
	set(&c.Auth.SessionSecret, "LLAVE_SESSION_SECRET")
	set(&c.Auth.CSRFKey, "LLAVE_CSRF_KEY")
	set(&c.Email.ResendKey, "LLAVE_RESEND_KEY")
	set(&c.Email.From, "LLAVE_RESEND_FROM")
	set(&c.Email.Inbox, "LLAVE_INBOX")
	set(&c.Host, "LLAVE_HOST")
	if v := getenv("LLAVE_DEMO_CALENDAR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LLAVE_DEMO_CALENDAR: %w", err)
		}
		c.DemoCalendar = b
	}
	c.Normalize()
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Env == EnvProduction {
		if c.Auth.SessionSecret == "" {
			return errors.New("auth.session_secret is required in production")
		}
		if len(c.Auth.CSRFKey) != 32 {
			return errors.New("auth.csrf_key must be 32 bytes in production")
		}
	}
	if c.Auth.CSRFKey != "" && len(c.Auth.CSRFKey) != 32 {
		return fmt.Errorf("auth.csrf_key must be 32 bytes, got %d", len(c.Auth.CSRFKey))
	}
	return nil
}

// IsProduction reports whether the portal runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads the YAML file at path. A missing file is created with defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			return cfg, Save(path, cfg)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".portal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
