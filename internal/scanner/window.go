// Package scanner finds entries entering the near-expiry window and turns
// them into alerts.
//
// Scanning is a pure function of the entries, the current alert log and the
// time it is given. Scheduling belongs to the caller.
package scanner

import (
	"time"

	"foodrescue/internal/core"
)

const (
	// Horizon is how far ahead of now an expiry still counts as near.
	Horizon = 48 * time.Hour
	// DefaultRetention caps the alert log.
	DefaultRetention = 500
)

// InWindow reports whether e is spoilage sensitive and expires after now
// but no later than now+Horizon. The expiry date is read as UTC midnight.
func InWindow(e core.Entry, now time.Time) bool {
	if !e.FoodType.IsSpoilageSensitive() || e.ExpiryDate.IsZero() {
		return false
	}
	expiry := e.ExpiryDate.Time
	return expiry.After(now) && !expiry.After(now.Add(Horizon))
}

// NearExpiry returns the entries inside the window, in their original order.
func NearExpiry(entries []core.Entry, now time.Time) []core.Entry {
	out := []core.Entry{}
	for _, e := range entries {
		if InWindow(e, now) {
			out = append(out, e)
		}
	}
	return out
}
