// Package bandswipe turns qualifying single-finger swipes into channel
// changes. It disambiguates swipes from pinches (a pinch released as a
// single-finger lift must not read as a swipe) and stays inert while the
// image is zoomed, so panning never changes the band.
package bandswipe

import (
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"

	"imagery-live/internal/catalog"
)

// Config tunes the navigator. Zero values fall back to defaults.
type Config struct {
	ThresholdPx   float64       // minimum horizontal distance to qualify
	ToastDuration time.Duration // how long the band label stays visible
}

// DefaultConfig returns the navigator defaults
func DefaultConfig() Config {
	return Config{
		ThresholdPx:   50,
		ToastDuration: 2000 * time.Millisecond,
	}
}

// Navigator maps swipes over an ordered band list to band changes.
// Gesture state is transient: it resets on every single-contact
// touch-start.
type Navigator struct {
	cfg      Config
	bands    []catalog.Band
	onChange func(band catalog.Band)
	onToast  func(label string)

	mu          sync.Mutex
	current     string
	startX      float64
	startY      float64
	tracking    bool
	wasPinching bool
	toastLabel  string
	dismiss     func(func())
}

// NewNavigator creates a navigator starting at the given band id.
// onChange and onToast may be nil.
func NewNavigator(cfg Config, bands []catalog.Band, current string, onChange func(catalog.Band), onToast func(string)) *Navigator {
	def := DefaultConfig()
	if cfg.ThresholdPx <= 0 {
		cfg.ThresholdPx = def.ThresholdPx
	}
	if cfg.ToastDuration <= 0 {
		cfg.ToastDuration = def.ToastDuration
	}
	if len(bands) == 0 {
		bands = catalog.DefaultBands
	}

	return &Navigator{
		cfg:      cfg,
		bands:    bands,
		current:  current,
		onChange: onChange,
		onToast:  onToast,
		dismiss:  debounce.New(cfg.ToastDuration),
	}
}

// SetCurrent records a band change made outside the navigator (menu
// selection, preset load) so the next swipe starts from the right index
func (n *Navigator) SetCurrent(bandID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = bandID
}

// Current returns the current band id
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// ToastLabel returns the transient band label, or "" when dismissed
func (n *Navigator) ToastLabel() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.toastLabel
}

// TouchStart begins a gesture. A multi-contact start marks the whole
// gesture as a pinch; the mark clears on the next start with exactly one
// contact point.
func (n *Navigator) TouchStart(x, y float64, touches int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if touches > 1 {
		n.wasPinching = true
		n.tracking = false
		return
	}

	n.wasPinching = false
	n.tracking = true
	n.startX = x
	n.startY = y
}

// TouchEnd finishes a gesture. Zoomed views and pinches never navigate.
// A swipe qualifies when it is mostly horizontal and long enough:
// leftward advances to the next band, rightward to the previous; past
// either end of the list is a no-op.
func (n *Navigator) TouchEnd(x, y float64, isZoomed bool) {
	n.mu.Lock()

	if isZoomed || n.wasPinching || !n.tracking {
		n.tracking = false
		n.mu.Unlock()
		return
	}
	n.tracking = false

	dx := x - n.startX
	dy := y - n.startY
	if abs(dx) < n.cfg.ThresholdPx || abs(dx) <= abs(dy) {
		n.mu.Unlock()
		return
	}

	idx := n.currentIndex()
	if idx < 0 {
		n.mu.Unlock()
		return
	}
	if dx < 0 {
		idx++
	} else {
		idx--
	}
	if idx < 0 || idx >= len(n.bands) {
		n.mu.Unlock()
		return
	}

	band := n.bands[idx]
	n.current = band.ID
	label := fmt.Sprintf("%s · %s", band.ID, band.Name)
	n.toastLabel = label
	n.mu.Unlock()

	if n.onChange != nil {
		n.onChange(band)
	}
	n.showToast(label)
}

// showToast publishes the label and schedules its dismissal. Another
// change before the delay elapses restarts the timer.
func (n *Navigator) showToast(label string) {
	if n.onToast != nil {
		n.onToast(label)
	}
	n.dismiss(func() {
		n.mu.Lock()
		n.toastLabel = ""
		n.mu.Unlock()
		if n.onToast != nil {
			n.onToast("")
		}
	})
}

// currentIndex returns the index of the current band, or -1; callers
// hold the lock
func (n *Navigator) currentIndex() int {
	for i, b := range n.bands {
		if b.ID == n.current {
			return i
		}
	}
	return -1
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
