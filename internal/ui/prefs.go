package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// PlacesPrefs stores the places list preferences.
type PlacesPrefs struct {
	SortKey  string `json:"sort_key"`
	SortDesc bool   `json:"sort_desc"`
}

// LastLocation is the most recently viewed location.
type LastLocation struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	CityName string  `json:"city_name"`
}

// UIPreferences stores persisted app preferences.
type UIPreferences struct {
	Places       PlacesPrefs   `json:"places"`
	LastLocation *LastLocation `json:"last_location,omitempty"`
}

// PrefsPath returns the default preferences file under dir.
func PrefsPath(dir string) string {
	return filepath.Join(dir, "ui_prefs.json")
}

func loadUIPreferences(path string) UIPreferences {
	if path == "" {
		return UIPreferences{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return UIPreferences{}
	}

	var prefs UIPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return UIPreferences{}
	}
	return prefs
}

func saveUIPreferences(path string, prefs UIPreferences) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
