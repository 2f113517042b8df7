// Package config loads nimbus settings from flags, environment and
// ~/.nimbus/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"nimbus/internal/model"
	"nimbus/internal/weather"
)

var validate = validator.New()

// Config holds nimbus configuration.
type Config struct {
	APIKey  string `validate:"required"`
	BaseURL string `validate:"required,url"`
	GeoURL  string `validate:"required,url"`
	IconURL string `validate:"required"`

	Units       string        `validate:"oneof=metric imperial standard"`
	Exclude     []string      `validate:"dive,oneof=current minutely hourly daily alerts"`
	HTTPTimeout time.Duration `validate:"gt=0"`
	SearchLimit int           `validate:"gte=1,lte=5"`

	HomeCity     string
	HomeState    string
	HomeCountry  string
	HomeLat      *float64 `validate:"omitempty,gte=-90,lte=90"`
	HomeLon      *float64 `validate:"omitempty,gte=-180,lte=180"`
	GeocodingKey string

	ASCIIIcons bool

	DBPath   string `validate:"required"`
	LogPath  string
	LogLevel string `validate:"oneof=trace debug info warn error"`
	Listen   string `validate:"required,hostname_port"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaseURL:     weather.DefaultBaseURL,
		GeoURL:      weather.DefaultGeoURL,
		IconURL:     weather.DefaultIconURL,
		Units:       model.UnitsMetric,
		Exclude:     []string{"minutely"},
		HTTPTimeout: weather.DefaultTimeout,
		SearchLimit: weather.DefaultSearchLimit,
		DBPath:      filepath.Join(DefaultDir(), "nimbus.db"),
		LogPath:     filepath.Join(DefaultDir(), "nimbus.log"),
		LogLevel:    "info",
		Listen:      "127.0.0.1:8080",
	}
}

// Validate checks the configuration and normalizes derived values.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.GeoURL = strings.TrimRight(c.GeoURL, "/")
	c.Units = strings.ToLower(strings.TrimSpace(c.Units))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if (c.HomeLat == nil) != (c.HomeLon == nil) {
		return fmt.Errorf("home_lat and home_lon must be set together")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasHomeCoords reports whether explicit home coordinates are configured.
func (c Config) HasHomeCoords() bool {
	return c.HomeLat != nil && c.HomeLon != nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "*****"
	}
	if c.GeocodingKey != "" {
		c.GeocodingKey = "*****"
	}
	return c
}

// DefaultDir returns ~/.nimbus, or .nimbus when the home directory is unknown.
func DefaultDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".nimbus")
	}
	return ".nimbus"
}

// configSetter applies values only for flags that were not set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setFloatPtr(flag string, value *float64, dst **float64) {
	if value == nil || s.changed[flag] {
		return
	}
	v := *value
	*dst = &v
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatPtrFromString accepts any value, zero and negatives included.
func (s *configSetter) setFloatPtrFromString(flag, value string, dst **float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = &f
	return nil
}

// setBoolFromString accepts "true" and "1" as true.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

func (s *configSetter) setListFromString(flag, value string, dst *[]string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = SplitList(value)
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
