package main

import (
	"context"

	"imagery-live/internal/catalog"
	"imagery-live/internal/zoompan"
)

// Viewer Functions (Wails-exported)

// ===================
// Fetch Controller
// ===================

// FetchNow manually triggers a fetch of the newest catalog capture
func (a *App) FetchNow() error {
	a.TrackEvent("fetch_triggered", map[string]interface{}{
		"manual": true,
	})

	ctx := a.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return a.controller.FetchNow(ctx)
}

// GetActiveJobID returns the tracked fetch job id, or "" when idle
func (a *App) GetActiveJobID() string {
	return a.controller.ActiveJobID()
}

// GetActiveJob returns the last polled state of the tracked fetch job
func (a *App) GetActiveJob() *catalog.FetchJob {
	return a.controller.ActiveJob()
}

// SetAutoFetch toggles background fetch triggering
func (a *App) SetAutoFetch(enabled bool) {
	a.controller.SetAutoFetchEnabled(enabled)

	a.mu.Lock()
	a.settings.AutoFetchEnabled = enabled
	a.mu.Unlock()
	// Settings are persisted on shutdown
}

// ===================
// Zoom / Pan
// ===================

// SetContainerSize records the measured viewport size
func (a *App) SetContainerSize(w, h float64) {
	a.engine.SetContainerSize(w, h)
}

// OnWheel applies a scroll-wheel zoom step
func (a *App) OnWheel(deltaY float64) zoompan.State {
	return a.engine.Wheel(deltaY)
}

// OnMouseDown starts a pan drag
func (a *App) OnMouseDown(x, y float64) zoompan.State {
	return a.engine.PointerDown(x, y)
}

// OnMouseMove continues a pan drag
func (a *App) OnMouseMove(x, y float64) zoompan.State {
	return a.engine.PointerMove(x, y)
}

// OnMouseUp ends a pan drag
func (a *App) OnMouseUp() zoompan.State {
	return a.engine.PointerUp()
}

// ZoomIn jumps to the double-tap scale
func (a *App) ZoomIn() zoompan.State {
	return a.engine.ZoomIn()
}

// ResetZoom returns the viewport to identity
func (a *App) ResetZoom() zoompan.State {
	return a.engine.Reset()
}

// GetViewerState returns the current zoom/pan snapshot
func (a *App) GetViewerState() zoompan.State {
	return a.engine.Snapshot()
}

// ===================
// Touch / Swipe
// ===================

// OnTouchStart feeds a touch-start to both the pan engine and the swipe
// navigator. touches is the number of simultaneous contact points.
func (a *App) OnTouchStart(x, y float64, touches int) zoompan.State {
	a.navigator.TouchStart(x, y, touches)
	return a.engine.TouchStart(x, y, touches)
}

// OnTouchMove continues a single-contact pan
func (a *App) OnTouchMove(x, y float64, touches int) zoompan.State {
	return a.engine.TouchMove(x, y, touches)
}

// OnTouchEnd ends the gesture. The navigator reads the zoom flag before
// the engine re-clamps, keeping the zoom → swipe dependency one-way.
func (a *App) OnTouchEnd(x, y float64) zoompan.State {
	a.navigator.TouchEnd(x, y, a.engine.IsZoomed())
	return a.engine.TouchEnd()
}

// GetToastLabel returns the transient band label, or "" when dismissed
func (a *App) GetToastLabel() string {
	return a.navigator.ToastLabel()
}

// ===================
// Bands
// ===================

// GetBands returns the ordered band list
func (a *App) GetBands() []catalog.Band {
	return catalog.DefaultBands
}

// GetCurrentBand returns the current band id
func (a *App) GetCurrentBand() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.band
}

// SetBand switches to a band selected outside swipe navigation (menu,
// preset). Unknown ids are ignored.
func (a *App) SetBand(id string) {
	band, ok := catalog.FindBand(catalog.DefaultBands, id)
	if !ok {
		return
	}

	a.mu.Lock()
	if a.band == band.ID {
		a.mu.Unlock()
		return
	}
	a.band = band.ID
	satellite, sector := a.satellite, a.sector
	a.mu.Unlock()

	a.navigator.SetCurrent(band.ID)
	a.controller.SetView(satellite, sector, band.ID)
	a.engine.Reset()
}
