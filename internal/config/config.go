package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"

	"finboard/internal/log"
	"finboard/internal/view"
)

type Config struct {
	// HTTP Server
	Port string

	// Dashboard data source. DataFile, when set, wins over DataURL.
	DataURL      string
	DataFile     string
	FetchTimeout time.Duration

	// Presentation
	Locale   string
	Currency string
	Anchors  view.Anchors

	// Dashboard sessions
	SessionTTL  time.Duration
	MaxSessions int

	// Requests per minute per client on page and tab routes
	RateLimit int

	// Logging
	LogLevel  string
	LogFormat string

	// Optional TOML, YAML or JSON overlay
	ConfigFile string
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:         "8081",
		DataURL:      "http://localhost:5000/dashboard-data",
		FetchTimeout: 10 * time.Second,
		Locale:       string(monday.LocaleEnUS),
		Currency:     "₹",
		Anchors:      view.DefaultAnchors(),
		SessionTTL:   30 * time.Minute,
		MaxSessions:  1000,
		RateLimit:    60,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load builds the configuration from defaults, then the overlay file named by
// FINBOARD_CONFIG_FILE, then the environment.
func Load() (*Config, error) {
	return LoadFrom(getEnv("FINBOARD_CONFIG_FILE", ""))
}

// LoadFrom is Load with an explicit overlay file. An empty path skips it.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()
	cfg.ConfigFile = path
	if cfg.ConfigFile != "" {
		if err := cfg.ApplyFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.DataURL = getEnv("FINBOARD_DATA_URL", c.DataURL)
	c.DataFile = getEnv("FINBOARD_DATA_FILE", c.DataFile)
	c.FetchTimeout = getEnvDuration("FINBOARD_FETCH_TIMEOUT", c.FetchTimeout)
	c.Locale = getEnv("FINBOARD_LOCALE", c.Locale)
	c.Currency = getEnv("FINBOARD_CURRENCY", c.Currency)
	c.SessionTTL = getEnvDuration("FINBOARD_SESSION_TTL", c.SessionTTL)
	c.MaxSessions = getEnvInt("FINBOARD_MAX_SESSIONS", c.MaxSessions)
	c.RateLimit = getEnvInt("FINBOARD_RATE_LIMIT", c.RateLimit)
	c.LogLevel = getEnv("FINBOARD_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("FINBOARD_LOG_FORMAT", c.LogFormat)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DataFile == "" {
		if parsedURL, err := url.Parse(c.DataURL); err != nil || c.DataURL == "" {
			errors = append(errors, fmt.Sprintf("invalid data URL '%s'", c.DataURL))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid data URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	} else if _, err := os.Stat(c.DataFile); err != nil {
		errors = append(errors, fmt.Sprintf("data file '%s' is not readable: %v", c.DataFile, err))
	}

	if c.FetchTimeout < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 100ms", c.FetchTimeout))
	} else if c.FetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 5 minutes", c.FetchTimeout))
	}

	if !supportedLocale(c.Locale) {
		errors = append(errors, fmt.Sprintf("unsupported locale '%s'", c.Locale))
	}
	if strings.TrimSpace(c.Currency) == "" {
		errors = append(errors, "currency symbol cannot be empty")
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.MaxSessions < 1 {
		errors = append(errors, fmt.Sprintf("invalid max sessions %d: must be at least 1", c.MaxSessions))
	} else if c.MaxSessions > 100000 {
		errors = append(errors, fmt.Sprintf("invalid max sessions %d: must be at most 100000", c.MaxSessions))
	}

	if c.RateLimit < 1 || c.RateLimit > 10000 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be between 1 and 10000 requests per minute", c.RateLimit))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if err := c.Anchors.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			errors = append(errors, line)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// MondayLocale returns the configured locale for month names.
func (c *Config) MondayLocale() monday.Locale {
	return monday.Locale(c.Locale)
}

func supportedLocale(locale string) bool {
	for _, l := range monday.ListLocales() {
		if string(l) == locale {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
