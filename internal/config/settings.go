package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// UserSettings represents persistent user preferences
type UserSettings struct {
	// Frame service
	CatalogBaseURL string `json:"catalogBaseURL"`

	// Default view
	DefaultSatellite string `json:"defaultSatellite"`
	DefaultSector    string `json:"defaultSector"`
	DefaultBand      string `json:"defaultBand"`

	// Auto-fetch tuning
	AutoFetchEnabled       bool `json:"autoFetchEnabled"`
	AutoFetchCooldownSec   int  `json:"autoFetchCooldownSec"`
	CatalogPollIntervalSec int  `json:"catalogPollIntervalSec"`
	JobPollIntervalSec     int  `json:"jobPollIntervalSec"`
	JobLingerSec           int  `json:"jobLingerSec"`

	// Viewer tuning
	MaxScale         float64 `json:"maxScale"`
	DoubleTapScale   float64 `json:"doubleTapScale"`
	WheelStep        float64 `json:"wheelStep"`
	SwipeThresholdPx float64 `json:"swipeThresholdPx"`
	ToastDurationMs  int     `json:"toastDurationMs"`

	// Anonymous per-install id for analytics
	InstallID string `json:"installID"`

	// One-shot hint: set after the first successful swipe navigation
	SwipeHintSeen bool `json:"swipeHintSeen"`
}

// DefaultSettings returns default user settings
func DefaultSettings() *UserSettings {
	return &UserSettings{
		CatalogBaseURL:         "http://127.0.0.1:8090",
		DefaultSatellite:       "GOES19",
		DefaultSector:          "FD",
		DefaultBand:            "C13",
		AutoFetchEnabled:       true,
		AutoFetchCooldownSec:   30,
		CatalogPollIntervalSec: 15,
		JobPollIntervalSec:     2,
		JobLingerSec:           2,
		MaxScale:               8,
		DoubleTapScale:         2,
		WheelStep:              0.25,
		SwipeThresholdPx:       50,
		ToastDurationMs:        2000,
	}
}

// GetSettingsPath returns the OS-specific settings file path
func GetSettingsPath() string {
	homeDir, _ := os.UserHomeDir()

	// Use unified directory structure: ~/.walkthru-earth/imagery-live/settings/
	baseDir := filepath.Join(homeDir, ".walkthru-earth", "imagery-live", "settings")

	// Ensure directory exists
	os.MkdirAll(baseDir, 0755)

	return filepath.Join(baseDir, "settings.json")
}

// LoadSettings loads user settings from disk
func LoadSettings() (*UserSettings, error) {
	settingsPath := GetSettingsPath()

	// If file doesn't exist, return defaults
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		settings := DefaultSettings()
		settings.InstallID = uuid.NewString()
		return settings, nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings UserSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	// Merge with defaults for any missing fields
	defaults := DefaultSettings()
	if settings.CatalogBaseURL == "" {
		settings.CatalogBaseURL = defaults.CatalogBaseURL
	}
	if settings.DefaultSatellite == "" {
		settings.DefaultSatellite = defaults.DefaultSatellite
	}
	if settings.DefaultSector == "" {
		settings.DefaultSector = defaults.DefaultSector
	}
	if settings.DefaultBand == "" {
		settings.DefaultBand = defaults.DefaultBand
	}
	if settings.AutoFetchCooldownSec == 0 {
		settings.AutoFetchCooldownSec = defaults.AutoFetchCooldownSec
	}
	if settings.CatalogPollIntervalSec == 0 {
		settings.CatalogPollIntervalSec = defaults.CatalogPollIntervalSec
	}
	if settings.JobPollIntervalSec == 0 {
		settings.JobPollIntervalSec = defaults.JobPollIntervalSec
	}
	if settings.JobLingerSec == 0 {
		settings.JobLingerSec = defaults.JobLingerSec
	}
	if settings.MaxScale == 0 {
		settings.MaxScale = defaults.MaxScale
	}
	if settings.DoubleTapScale == 0 {
		settings.DoubleTapScale = defaults.DoubleTapScale
	}
	if settings.WheelStep == 0 {
		settings.WheelStep = defaults.WheelStep
	}
	if settings.SwipeThresholdPx == 0 {
		settings.SwipeThresholdPx = defaults.SwipeThresholdPx
	}
	if settings.ToastDurationMs == 0 {
		settings.ToastDurationMs = defaults.ToastDurationMs
	}
	if settings.InstallID == "" {
		settings.InstallID = uuid.NewString()
	}

	return &settings, nil
}

// SaveSettings saves user settings to disk
func SaveSettings(settings *UserSettings) error {
	settingsPath := GetSettingsPath()

	// Ensure directory exists
	dir := filepath.Dir(settingsPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(settingsPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
