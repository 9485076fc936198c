package livesync

import (
	"time"

	"imagery-live/internal/catalog"
)

// DefaultCooldown is the minimum gap enforced between consecutive
// automatic fetch attempts, so frequent catalog polling cannot thrash
// the backend with triggers.
const DefaultCooldown = 30 * time.Second

// AutoFetchGuard records the last automatic fetch dispatch. It is a
// mutable cell owned by the controller, written only at the instant a
// fetch is actually dispatched (never at decision time) and never
// cleared for the session's lifetime.
type AutoFetchGuard struct {
	LastScanTime  time.Time // catalog scan time of the last auto-dispatched fetch
	LastAttemptAt time.Time // wall clock of that dispatch
}

// ShouldAutoFetch decides whether a background fetch should be triggered
// for the current view. Pure: it reads the guard but never writes it.
//
// Returns false when auto-fetch is disabled, either frame reference is
// missing, or a job is already active (the primary race guard against
// overlapping fetches). Otherwise true iff the catalog capture is
// strictly newer than the local one, this exact capture has not already
// been attempted, and the cooldown window has fully elapsed.
func ShouldAutoFetch(enabled bool, cat *catalog.CatalogFrame, local *catalog.LocalFrame, guard *AutoFetchGuard, hasActiveJob bool, cooldown time.Duration, now time.Time) bool {
	if !enabled || cat == nil || local == nil || hasActiveJob {
		return false
	}

	// Equal timestamps never trigger
	if !cat.ScanTime.After(local.CaptureTime) {
		return false
	}

	// Already attempted this exact capture
	if guard.LastScanTime.Equal(cat.ScanTime) {
		return false
	}

	// Cooldown must have strictly elapsed
	if !guard.LastAttemptAt.IsZero() && now.Sub(guard.LastAttemptAt) <= cooldown {
		return false
	}

	return true
}
