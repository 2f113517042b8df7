package config

import "os"

// ApplyEnvConfig applies configuration from environment variables (NIMBUS_*).
// OPENWEATHER_API_KEY is honoured as well; NIMBUS_API_KEY wins over it.
// Explicitly set flags are left alone.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("api-key", os.Getenv("OPENWEATHER_API_KEY"), &cfg.APIKey)
	s.setString("api-key", os.Getenv("NIMBUS_API_KEY"), &cfg.APIKey)
	s.setString("base-url", os.Getenv("NIMBUS_BASE_URL"), &cfg.BaseURL)
	s.setString("geo-url", os.Getenv("NIMBUS_GEO_URL"), &cfg.GeoURL)
	s.setString("icon-url", os.Getenv("NIMBUS_ICON_URL"), &cfg.IconURL)
	s.setString("units", os.Getenv("NIMBUS_UNITS"), &cfg.Units)
	s.setListFromString("exclude", os.Getenv("NIMBUS_EXCLUDE"), &cfg.Exclude)
	s.setString("home-city", os.Getenv("NIMBUS_HOME_CITY"), &cfg.HomeCity)
	s.setString("home-state", os.Getenv("NIMBUS_HOME_STATE"), &cfg.HomeState)
	s.setString("home-country", os.Getenv("NIMBUS_HOME_COUNTRY"), &cfg.HomeCountry)
	s.setString("geocoding-key", os.Getenv("NIMBUS_GEOCODING_KEY"), &cfg.GeocodingKey)
	s.setString("db", os.Getenv("NIMBUS_DB_PATH"), &cfg.DBPath)
	s.setString("log-file", os.Getenv("NIMBUS_LOG_PATH"), &cfg.LogPath)
	s.setString("log-level", os.Getenv("NIMBUS_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("listen", os.Getenv("NIMBUS_LISTEN"), &cfg.Listen)

	if err := s.setDuration("timeout", os.Getenv("NIMBUS_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setIntFromString("search-limit", os.Getenv("NIMBUS_SEARCH_LIMIT"), &cfg.SearchLimit); err != nil {
		return err
	}
	if err := s.setFloatPtrFromString("home-lat", os.Getenv("NIMBUS_HOME_LAT"), &cfg.HomeLat); err != nil {
		return err
	}
	if err := s.setFloatPtrFromString("home-lon", os.Getenv("NIMBUS_HOME_LON"), &cfg.HomeLon); err != nil {
		return err
	}

	s.setBoolFromString("ascii-icons", os.Getenv("NIMBUS_ASCII_ICONS"), &cfg.ASCIIIcons)

	return nil
}
