package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	APIKey       string   `toml:"api_key"`
	BaseURL      string   `toml:"base_url"`
	GeoURL       string   `toml:"geo_url"`
	IconURL      string   `toml:"icon_url"`
	Units        string   `toml:"units"`
	Exclude      []string `toml:"exclude"`
	HTTPTimeout  string   `toml:"http_timeout"`
	SearchLimit  int      `toml:"search_limit"`
	HomeCity     string   `toml:"home_city"`
	HomeState    string   `toml:"home_state"`
	HomeCountry  string   `toml:"home_country"`
	HomeLat      *float64 `toml:"home_lat"`
	HomeLon      *float64 `toml:"home_lon"`
	GeocodingKey string   `toml:"geocoding_key"`
	ASCIIIcons   *bool    `toml:"ascii_icons"`
	DBPath       string   `toml:"db_path"`
	LogPath      string   `toml:"log_path"`
	LogLevel     string   `toml:"log_level"`
	Listen       string   `toml:"listen"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.nimbus/config.toml.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("api-key", fc.APIKey, &cfg.APIKey)
	s.setString("base-url", fc.BaseURL, &cfg.BaseURL)
	s.setString("geo-url", fc.GeoURL, &cfg.GeoURL)
	s.setString("icon-url", fc.IconURL, &cfg.IconURL)
	s.setString("units", fc.Units, &cfg.Units)
	s.setStrings("exclude", fc.Exclude, &cfg.Exclude)
	s.setString("home-city", fc.HomeCity, &cfg.HomeCity)
	s.setString("home-state", fc.HomeState, &cfg.HomeState)
	s.setString("home-country", fc.HomeCountry, &cfg.HomeCountry)
	s.setString("geocoding-key", fc.GeocodingKey, &cfg.GeocodingKey)
	s.setString("db", fc.DBPath, &cfg.DBPath)
	s.setString("log-file", fc.LogPath, &cfg.LogPath)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("listen", fc.Listen, &cfg.Listen)

	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}

	s.setInt("search-limit", fc.SearchLimit, &cfg.SearchLimit)
	s.setFloatPtr("home-lat", fc.HomeLat, &cfg.HomeLat)
	s.setFloatPtr("home-lon", fc.HomeLon, &cfg.HomeLon)
	s.setBool("ascii-icons", fc.ASCIIIcons, &cfg.ASCIIIcons)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
