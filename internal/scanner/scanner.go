package scanner

import (
	"fmt"
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/sheets"
)

// Result is the outcome of one scan.
type Result struct {
	New []core.Alert // alerts generated by this scan, in entry order
	Log []core.Alert // updated log, newest first, capped at the retention
}

type Scanner struct {
	policy    Policy
	retention int
	newID     func() string
}

// New returns a scanner. A nil policy alerts on every candidate and a
// non-positive retention means DefaultRetention.
func New(policy Policy, retention int) *Scanner {
	if policy == nil {
		policy = AlwaysPolicy{}
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Scanner{policy: policy, retention: retention, newID: sheets.NewAlertID}
}

// WithIDs overrides alert ID generation.
func (s *Scanner) WithIDs(newID func() string) *Scanner {
	s.newID = newID
	return s
}

// Scan generates alerts for entries in the near-expiry window and prepends
// them to log. Neither input slice is modified.
func (s *Scanner) Scan(entries []core.Entry, log []core.Alert, now time.Time) Result {
	selected := s.policy.Select(NearExpiry(entries, now), log, now)

	fresh := make([]core.Alert, 0, len(selected))
	for _, e := range selected {
		fresh = append(fresh, s.alertFor(e, now))
	}

	size := min(len(fresh)+len(log), s.retention)
	updated := make([]core.Alert, 0, size)
	updated = append(updated, fresh...)
	updated = append(updated, log...)
	if len(updated) > s.retention {
		updated = updated[:s.retention]
	}
	return Result{New: fresh, Log: updated}
}

func (s *Scanner) alertFor(e core.Entry, now time.Time) core.Alert {
	return core.Alert{
		ID:         s.newID(),
		EntryID:    e.ID,
		FoodType:   e.FoodType,
		ItemName:   e.ItemName,
		Quantity:   e.Quantity,
		Unit:       e.Unit,
		ExpiryDate: e.ExpiryDate,
		Donor:      e.Donor,
		Message:    Message(e),
		CreatedAt:  now.UTC(),
	}
}

// Message renders the human-readable alert summary.
func Message(e core.Entry) string {
	return fmt.Sprintf("Near expiry: %s - %s (expires %s)", e.FoodType, e.ItemName, e.ExpiryDate)
}
