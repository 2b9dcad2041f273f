// Package dashboard computes the live summary and warehouse views over the
// stored entries. Every function is pure in its inputs.
package dashboard

import (
	"math"
	"slices"
	"time"

	"foodrescue/internal/core"
)

const (
	// WindowDays is the length of the trailing window and of the series.
	WindowDays = 7
	Window     = WindowDays * 24 * time.Hour

	dateKey = "2006-01-02"
)

// DefaultOperational returns the fixed operational figures shown until an
// operations feed supplies real ones.
func DefaultOperational() core.OperationalMetrics {
	return core.OperationalMetrics{
		SpoilagePercent:             2.4,
		AvgPickupToStorageMinutes:   38,
		ColdTurnaroundMinutes:       52,
		VolunteerUtilizationPercent: 73,
		VolunteerScheduled:          24,
		VolunteerActive:             18,
	}
}

// Aggregate summarizes entries over [now-7d, now].
//
// The series has one slot per UTC calendar day from now-6d to now, so the
// last slot is today. Recent entries whose creation day has no slot (clock
// skew at the window start) still count toward the per-day average.
func Aggregate(entries []core.Entry, now time.Time, ops core.OperationalMetrics) core.Summary {
	now = now.UTC()
	start := now.Add(-Window)

	dates := make([]string, WindowDays)
	slot := make(map[string]int, WindowDays)
	today := core.DateOf(now).Time
	for i := range WindowDays {
		key := today.AddDate(0, 0, i-(WindowDays-1)).Format(dateKey)
		dates[i] = key
		slot[key] = i
	}

	series := make([]float64, WindowDays)
	var total float64
	recent := 0
	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			continue
		}
		created := e.CreatedAt.UTC()
		if created.Before(start) || created.After(now) {
			continue
		}
		recent++
		total += e.Quantity
		if i, ok := slot[created.Format(dateKey)]; ok {
			series[i] += e.Quantity
		}
	}

	return core.Summary{
		FoodRescuedPerDay: int(math.Round(total / WindowDays)),
		RescuedSeries:     series,
		SeriesDates:       dates,
		TotalEntries:      len(entries),
		RecentCount:       recent,
		Operational:       ops,
	}
}

// Recent returns up to limit entries, newest first by creation time.
func Recent(entries []core.Entry, limit int) []core.Entry {
	sorted := append([]core.Entry(nil), entries...)
	slices.SortStableFunc(sorted, func(a, b core.Entry) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
