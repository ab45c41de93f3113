// Package config loads server settings from flags, environment variables
// and an optional .env file. Flags win over the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys
const (
	EnvAddr                 = "BLOG_ADDR"
	EnvDBPath               = "BLOG_DB_PATH"
	EnvLogLevel             = "BLOG_LOG_LEVEL"
	EnvBaseURL              = "BLOG_BASE_URL"
	EnvCookieInsecure       = "BLOG_COOKIE_INSECURE"
	EnvRequireVerifiedEmail = "BLOG_REQUIRE_VERIFIED_EMAIL"
	EnvGoogleClientID       = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret   = "GOOGLE_CLIENT_SECRET"
)

// Config holds server settings
type Config struct {
	Addr                 string
	DBPath               string
	LogLevel             string
	BaseURL              string
	GoogleClientID       string
	GoogleClientSecret   string
	ShutdownTimeout      time.Duration
	CookieInsecure       bool
	RequireVerifiedEmail bool
	ShowVersion          bool
}

// LoadEnvFile loads key=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load parses args (without the program name) on top of environment
// defaults.
func Load(name string, args []string) (*Config, error) {
	cfg := &Config{}

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", envString(EnvAddr, ":8080"), "HTTP listen address")
	fset.StringVar(&cfg.DBPath, "db", envString(EnvDBPath, "blog.db"), "Path to SQLite database")
	fset.StringVar(&cfg.LogLevel, "log-level", envString(EnvLogLevel, "info"), "Log level: debug, info, warn, error")
	fset.StringVar(&cfg.BaseURL, "base-url", envString(EnvBaseURL, ""), "Public origin used for the OAuth redirect URI; derived from the request when empty")
	fset.BoolVar(&cfg.CookieInsecure, "cookie-insecure", envBool(EnvCookieInsecure, false), "Drop the Secure cookie attribute (plain http development only)")
	fset.BoolVar(&cfg.RequireVerifiedEmail, "require-verified-email", envBool(EnvRequireVerifiedEmail, false), "Reject Google accounts whose email is not verified")
	fset.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	fset.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	// secrets are read from the environment only
	cfg.GoogleClientID = os.Getenv(EnvGoogleClientID)
	cfg.GoogleClientSecret = os.Getenv(EnvGoogleClientSecret)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that flag parsing cannot
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address cannot be empty")
	}
	if c.DBPath == "" {
		return errors.New("database path cannot be empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base url %q", c.BaseURL)
		}
		c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	}
	return nil
}

// SlogLevel returns the configured level, info when unparsable
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// OAuthConfigured reports whether Google sign-in can be offered
func (c *Config) OAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// CLIConfig holds blogctl settings
type CLIConfig struct {
	DBPath      string
	LogLevel    string
	Args        []string
	ShowVersion bool
}

// LoadCLI parses the blogctl global flags. Args holds the command and its
// own arguments.
func LoadCLI(name string, args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.StringVar(&cfg.DBPath, "db", envString(EnvDBPath, "blog.db"), "Path to SQLite database")
	fset.StringVar(&cfg.LogLevel, "log-level", envString(EnvLogLevel, "warn"), "Log level: debug, info, warn, error")
	fset.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	cfg.Args = fset.Args()
	return cfg, nil
}

// SlogLevel returns the configured level, warn when unparsable
func (c *CLIConfig) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}
