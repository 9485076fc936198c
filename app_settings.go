package main

import (
	"fmt"
	"log"

	"imagery-live/internal/config"
)

// ===================
// Settings Management
// ===================

// GetSettings returns current user settings
func (a *App) GetSettings() (*config.UserSettings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Return a copy to prevent external modifications
	settingsCopy := *a.settings
	return &settingsCopy, nil
}

// SaveSettings saves user settings to disk and updates app state
func (a *App) SaveSettings(settings *config.UserSettings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Validate settings
	if settings.CatalogBaseURL == "" {
		return fmt.Errorf("catalog base URL cannot be empty")
	}
	if settings.MaxScale <= 1 {
		return fmt.Errorf("max scale must be greater than 1")
	}
	if settings.AutoFetchCooldownSec <= 0 {
		return fmt.Errorf("auto-fetch cooldown must be positive")
	}
	if settings.JobPollIntervalSec <= 0 {
		return fmt.Errorf("job poll interval must be positive")
	}

	// Preserve identity fields the frontend doesn't edit
	settings.InstallID = a.settings.InstallID

	// Save to disk
	if err := config.SaveSettings(settings); err != nil {
		return err
	}

	// Update app state
	a.settings = settings
	a.controller.SetAutoFetchEnabled(settings.AutoFetchEnabled)

	// Note: timer and viewer tuning take effect on next restart
	log.Printf("Settings saved. Timer settings will apply on next restart.")

	return nil
}

// GetSettingsPath returns the OS-specific settings file path
func (a *App) GetSettingsPath() string {
	return config.GetSettingsPath()
}
