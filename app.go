package main

import (
	"context"
	"log"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/posthog/posthog-go"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"imagery-live/internal/bandswipe"
	"imagery-live/internal/catalog"
	"imagery-live/internal/config"
	"imagery-live/internal/livesync"
	"imagery-live/internal/zoompan"
)

// Linker flags
var (
	PostHogKey  string
	PostHogHost string
	AppVersion  string = "0.0.0-dev"
)

// App struct
type App struct {
	ctx         context.Context
	settings    *config.UserSettings
	frameClient *catalog.Client
	controller  *livesync.Controller
	engine      *zoompan.Engine
	navigator   *bandswipe.Navigator
	phClient    posthog.Client

	mu      sync.Mutex
	devMode bool // Enable verbose logging in dev mode only

	// Current view, mirrored from the controller for the frontend
	satellite string
	sector    string
	band      string

	autoFetchCancel context.CancelFunc
}

// NewApp creates a new App application struct
func NewApp() *App {
	// Load user settings
	settings, err := config.LoadSettings()
	if err != nil {
		log.Printf("Failed to load settings, using defaults: %v", err)
		settings = config.DefaultSettings()
	}
	log.Printf("Settings loaded from: %s", config.GetSettingsPath())

	// Initialize PostHog
	var phClient posthog.Client
	if PostHogKey != "" {
		phConfig := posthog.Config{
			Endpoint: PostHogHost,
		}
		client, err := posthog.NewWithConfig(PostHogKey, phConfig)
		if err != nil {
			log.Printf("Failed to initialize PostHog: %v", err)
		} else {
			phClient = client
		}
	}

	a := &App{
		settings:    settings,
		frameClient: catalog.NewClient(settings.CatalogBaseURL),
		phClient:    phClient,
		satellite:   settings.DefaultSatellite,
		sector:      settings.DefaultSector,
		band:        settings.DefaultBand,
	}

	a.engine = zoompan.NewEngine(zoompan.Config{
		MaxScale:       settings.MaxScale,
		DoubleTapScale: settings.DoubleTapScale,
		WheelStep:      settings.WheelStep,
	})

	a.navigator = bandswipe.NewNavigator(
		bandswipe.Config{
			ThresholdPx:   settings.SwipeThresholdPx,
			ToastDuration: time.Duration(settings.ToastDurationMs) * time.Millisecond,
		},
		catalog.DefaultBands,
		settings.DefaultBand,
		a.onBandChanged,
		a.onToast,
	)

	a.controller = livesync.NewController(
		a.frameClient,
		livesync.Options{
			PollInterval:        time.Duration(settings.JobPollIntervalSec) * time.Second,
			LingerDelay:         time.Duration(settings.JobLingerSec) * time.Second,
			Cooldown:            time.Duration(settings.AutoFetchCooldownSec) * time.Second,
			CatalogPollInterval: time.Duration(settings.CatalogPollIntervalSec) * time.Second,
			AutoFetchEnabled:    settings.AutoFetchEnabled,
		},
		catalog.DefaultBands,
		a.onNotify,
		a.onFrameRefresh,
	)
	a.controller.SetView(settings.DefaultSatellite, settings.DefaultSector, settings.DefaultBand)

	return a
}

// startup is called when the app starts
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	if a.devMode {
		log.Printf("[App] Dev mode enabled")
	}

	// Start the auto-fetch evaluation loop
	autoCtx, cancel := context.WithCancel(ctx)
	a.autoFetchCancel = cancel
	go a.controller.RunAutoFetch(autoCtx)

	// Track app start
	a.TrackEvent("app_started", map[string]interface{}{
		"version": a.GetAppVersion(),
		"os":      goruntime.GOOS,
		"arch":    goruntime.GOARCH,
	})
}

// shutdown cleans up resources
func (a *App) shutdown(ctx context.Context) {
	if a.autoFetchCancel != nil {
		a.autoFetchCancel()
	}
	if a.controller != nil {
		a.controller.Close()
	}
	if a.phClient != nil {
		a.phClient.Close()
	}

	a.mu.Lock()
	settings := a.settings
	a.mu.Unlock()
	if err := config.SaveSettings(settings); err != nil {
		log.Printf("Failed to save settings on shutdown: %v", err)
	}
}

// onNotify forwards controller notifications to the frontend
func (a *App) onNotify(level, message string) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, "notification", map[string]interface{}{
		"level":   level,
		"message": message,
	})
}

// onFrameRefresh asks the frontend to reload the displayed frame after a
// fetch job retires
func (a *App) onFrameRefresh() {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, "frame-refresh")
}

// onBandChanged applies a swipe navigation result: the controller is
// retargeted, the zoom resets to identity, and the swipe hint is retired
// after the user's first successful swipe
func (a *App) onBandChanged(band catalog.Band) {
	a.mu.Lock()
	a.band = band.ID
	satellite, sector := a.satellite, a.sector
	hintSeen := a.settings.SwipeHintSeen
	if !hintSeen {
		a.settings.SwipeHintSeen = true
	}
	a.mu.Unlock()

	a.controller.SetView(satellite, sector, band.ID)
	a.engine.Reset()

	if !hintSeen {
		if err := config.SaveSettings(a.settings); err != nil {
			log.Printf("Failed to persist swipe hint flag: %v", err)
		}
	}

	if a.ctx != nil {
		wailsRuntime.EventsEmit(a.ctx, "band-changed", band)
	}

	a.TrackEvent("band_changed", map[string]interface{}{
		"band": band.ID,
	})
	log.Printf("[Viewer] Band changed to %s (%s)", band.ID, band.Name)
}

// onToast publishes the transient band label; an empty label dismisses it
func (a *App) onToast(label string) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, "band-toast", label)
}

// TrackEvent sends an event to PostHog
func (a *App) TrackEvent(event string, props map[string]interface{}) {
	if a.phClient != nil {
		a.phClient.Enqueue(posthog.Capture{
			DistinctId: a.settings.InstallID,
			Event:      event,
			Properties: props,
		})
	}
}

// GetAppVersion returns the current application version
func (a *App) GetAppVersion() string {
	return AppVersion
}
