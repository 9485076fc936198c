// Package zoompan maintains the scale/translate state of an image
// viewport: wheel and double-tap zoom with clamped scale, and unified
// mouse/touch panning clamped to the zoomed bounds.
package zoompan

import "sync"

// Pointer affordance values, descriptive only
const (
	AffordanceNeutral  = ""
	AffordanceGrab     = "grab"
	AffordanceGrabbing = "grabbing"
)

// Translate is a viewport offset in container pixels
type Translate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// State is a snapshot of the engine for the frontend
type State struct {
	Scale      float64   `json:"scale"`
	Translate  Translate `json:"translate"`
	Dragging   bool      `json:"dragging"`
	IsZoomed   bool      `json:"isZoomed"`
	Affordance string    `json:"affordance"`
}

// Config tunes the engine. Zero values fall back to defaults.
type Config struct {
	MinScale       float64
	MaxScale       float64
	DoubleTapScale float64
	WheelStep      float64
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		MinScale:       1,
		MaxScale:       8,
		DoubleTapScale: 2,
		WheelStep:      0.25,
	}
}

// Engine tracks zoom/pan for one displayed frame. The invariant is that
// the translate always lies within the bounds computable from the current
// scale and container size: no snapshot is ever taken mid-clamp-violation.
type Engine struct {
	cfg Config

	mu         sync.Mutex
	scale      float64
	tx, ty     float64
	dragging   bool
	containerW float64
	containerH float64

	// Drag origin captured at pointer down
	originX, originY   float64
	originTx, originTy float64
}

// NewEngine creates an engine at identity scale
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MinScale <= 0 {
		cfg.MinScale = def.MinScale
	}
	if cfg.MaxScale <= cfg.MinScale {
		cfg.MaxScale = def.MaxScale
	}
	if cfg.DoubleTapScale <= 0 {
		cfg.DoubleTapScale = def.DoubleTapScale
	}
	if cfg.WheelStep <= 0 {
		cfg.WheelStep = def.WheelStep
	}

	return &Engine{
		cfg:   cfg,
		scale: cfg.MinScale,
	}
}

// ClampTranslate clamps a candidate translate to the pannable bounds of
// the zoomed image. At scale ≤ 1, or with an unmeasured (0×0) container,
// there is nothing to pan and the translate is pinned to the origin.
func ClampTranslate(tx, ty, scale, containerW, containerH float64) (float64, float64) {
	if scale <= 1 || containerW == 0 || containerH == 0 {
		return 0, 0
	}

	maxX := containerW * (scale - 1) / 2
	maxY := containerH * (scale - 1) / 2
	return clamp(tx, -maxX, maxX), clamp(ty, -maxY, maxY)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SetContainerSize records the measured viewport size and re-clamps the
// current translate against it
func (e *Engine) SetContainerSize(w, h float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.containerW = w
	e.containerH = h
	e.tx, e.ty = ClampTranslate(e.tx, e.ty, e.scale, w, h)
}

// Wheel applies one scroll step: negative deltaY zooms in, positive
// zooms out. Returning to minimum scale also resets the translate.
func (e *Engine) Wheel(deltaY float64) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	step := e.cfg.WheelStep
	if deltaY > 0 {
		step = -step
	}
	e.scale = clamp(e.scale+step, e.cfg.MinScale, e.cfg.MaxScale)

	if e.scale <= e.cfg.MinScale {
		e.tx, e.ty = 0, 0
	} else {
		e.tx, e.ty = ClampTranslate(e.tx, e.ty, e.scale, e.containerW, e.containerH)
	}
	return e.snapshot()
}

// ZoomIn jumps straight to the double-tap scale
func (e *Engine) ZoomIn() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scale = clamp(e.cfg.DoubleTapScale, e.cfg.MinScale, e.cfg.MaxScale)
	e.tx, e.ty = ClampTranslate(e.tx, e.ty, e.scale, e.containerW, e.containerH)
	return e.snapshot()
}

// Reset returns to identity. Called whenever the displayed frame or
// band changes.
func (e *Engine) Reset() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scale = e.cfg.MinScale
	e.tx, e.ty = 0, 0
	e.dragging = false
	return e.snapshot()
}

// PointerDown starts a drag. Panning is disabled while not zoomed.
func (e *Engine) PointerDown(x, y float64) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scale <= e.cfg.MinScale {
		return e.snapshot()
	}

	e.dragging = true
	e.originX, e.originY = x, y
	e.originTx, e.originTy = e.tx, e.ty
	return e.snapshot()
}

// PointerMove pans by the pointer delta from the drag origin, clamped to
// the zoomed bounds
func (e *Engine) PointerMove(x, y float64) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.dragging {
		return e.snapshot()
	}

	tx := e.originTx + (x - e.originX)
	ty := e.originTy + (y - e.originY)
	e.tx, e.ty = ClampTranslate(tx, ty, e.scale, e.containerW, e.containerH)
	return e.snapshot()
}

// PointerUp ends a drag and re-clamps against the current container to
// correct any drift accumulated before layout settled (snap-back)
func (e *Engine) PointerUp() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dragging = false
	e.tx, e.ty = ClampTranslate(e.tx, e.ty, e.scale, e.containerW, e.containerH)
	return e.snapshot()
}

// TouchStart maps a single-contact touch onto the pointer path.
// Multi-contact starts are ignored here; pinch handling lives with the
// frontend, and the swipe navigator separately suppresses them.
func (e *Engine) TouchStart(x, y float64, touches int) State {
	if touches != 1 {
		return e.Snapshot()
	}
	return e.PointerDown(x, y)
}

// TouchMove continues a single-contact pan
func (e *Engine) TouchMove(x, y float64, touches int) State {
	if touches != 1 {
		return e.Snapshot()
	}
	return e.PointerMove(x, y)
}

// TouchEnd ends a touch pan
func (e *Engine) TouchEnd() State {
	return e.PointerUp()
}

// IsZoomed reports whether the scale is above minimum
func (e *Engine) IsZoomed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scale > e.cfg.MinScale
}

// Snapshot returns the current state
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// snapshot builds a State; callers hold the lock
func (e *Engine) snapshot() State {
	zoomed := e.scale > e.cfg.MinScale
	affordance := AffordanceNeutral
	if zoomed {
		if e.dragging {
			affordance = AffordanceGrabbing
		} else {
			affordance = AffordanceGrab
		}
	}

	return State{
		Scale:      e.scale,
		Translate:  Translate{X: e.tx, Y: e.ty},
		Dragging:   e.dragging,
		IsZoomed:   zoomed,
		Affordance: affordance,
	}
}
