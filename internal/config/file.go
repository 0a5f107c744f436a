package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"finboard/internal/view"
)

// fileConfig is the overlay file shape. Empty values leave the current
// setting alone.
type fileConfig struct {
	Port         string       `json:"port" yaml:"port" toml:"port"`
	DataURL      string       `json:"data_url" yaml:"data_url" toml:"data_url"`
	DataFile     string       `json:"data_file" yaml:"data_file" toml:"data_file"`
	FetchTimeout string       `json:"fetch_timeout" yaml:"fetch_timeout" toml:"fetch_timeout"`
	Locale       string       `json:"locale" yaml:"locale" toml:"locale"`
	Currency     string       `json:"currency" yaml:"currency" toml:"currency"`
	SessionTTL   string       `json:"session_ttl" yaml:"session_ttl" toml:"session_ttl"`
	MaxSessions  int          `json:"max_sessions" yaml:"max_sessions" toml:"max_sessions"`
	RateLimit    int          `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
	LogLevel     string       `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string       `json:"log_format" yaml:"log_format" toml:"log_format"`
	Anchors      view.Anchors `json:"anchors" yaml:"anchors" toml:"anchors"`
}

// ApplyFile overlays a TOML, YAML or JSON file, chosen by extension.
func (c *Config) ApplyFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error accessing config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	return c.merge(fc)
}

func (c *Config) merge(fc fileConfig) error {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Port, fc.Port)
	set(&c.DataURL, fc.DataURL)
	set(&c.DataFile, fc.DataFile)
	set(&c.Locale, fc.Locale)
	set(&c.Currency, fc.Currency)
	set(&c.LogLevel, fc.LogLevel)
	set(&c.LogFormat, fc.LogFormat)
	if fc.MaxSessions != 0 {
		c.MaxSessions = fc.MaxSessions
	}
	if fc.RateLimit != 0 {
		c.RateLimit = fc.RateLimit
	}

	var err error
	if c.FetchTimeout, err = overlayDuration("fetch_timeout", fc.FetchTimeout, c.FetchTimeout); err != nil {
		return err
	}
	if c.SessionTTL, err = overlayDuration("session_ttl", fc.SessionTTL, c.SessionTTL); err != nil {
		return err
	}

	c.Anchors = c.Anchors.Merge(fc.Anchors)
	return nil
}

func overlayDuration(key, raw string, current time.Duration) (time.Duration, error) {
	if raw == "" {
		return current, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return current, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}
