package sheets

import (
	"time"

	"github.com/google/uuid"

	"foodrescue/internal/core"
)

// NewEntryID returns a fresh entry identifier.
func NewEntryID() string { return "entry-" + uuid.NewString() }

// NewAlertID returns a fresh alert identifier.
func NewAlertID() string { return "alert-" + uuid.NewString() }

// Stamp assigns IDs and creation times to entries lacking them and returns a
// normalized copy. The input slice is not modified.
func Stamp(entries []core.Entry, now time.Time) []core.Entry {
	out := make([]core.Entry, len(entries))
	for i, e := range entries {
		e.Normalize()
		core.StampNew(&e, now, NewEntryID)
		out[i] = e
	}
	return out
}
