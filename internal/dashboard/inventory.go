package dashboard

import (
	"slices"
	"strings"
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/scanner"
)

// ExpiryStatus classifies an entry for the warehouse table.
type ExpiryStatus string

const (
	StatusUnknown      ExpiryStatus = "unknown"
	StatusExpired      ExpiryStatus = "expired"
	StatusExpiringSoon ExpiryStatus = "expiring-soon"
	StatusOK           ExpiryStatus = "ok"
)

// Status reports whether e has expired, expires within the alert horizon or
// is fine. Category does not matter here.
func Status(e core.Entry, now time.Time) ExpiryStatus {
	if e.ExpiryDate.IsZero() {
		return StatusUnknown
	}
	expiry := e.ExpiryDate.Time
	switch {
	case expiry.Before(now):
		return StatusExpired
	case !expiry.After(now.Add(scanner.Horizon)):
		return StatusExpiringSoon
	}
	return StatusOK
}

// Inventory totals entries per category. Canonical categories come first in
// form order, followed by free-text ones alphabetically.
func Inventory(entries []core.Entry) core.InventoryReport {
	byType := map[core.FoodType]*core.CategoryTotals{}
	report := core.InventoryReport{TotalEntries: len(entries)}
	for _, e := range entries {
		report.TotalQuantity += e.Quantity
		t, ok := byType[e.FoodType]
		if !ok {
			t = &core.CategoryTotals{FoodType: e.FoodType}
			byType[e.FoodType] = t
		}
		t.Count++
		t.Quantity += e.Quantity
	}

	canonical := core.CanonicalFoodTypes()
	for _, ft := range canonical {
		if t, ok := byType[ft]; ok {
			report.ByCategory = append(report.ByCategory, *t)
			delete(byType, ft)
		}
	}
	var extra []core.CategoryTotals
	for _, t := range byType {
		extra = append(extra, *t)
	}
	slices.SortFunc(extra, func(a, b core.CategoryTotals) int {
		return strings.Compare(string(a.FoodType), string(b.FoodType))
	})
	report.ByCategory = append(report.ByCategory, extra...)
	return report
}

// ByExpiry returns entries ordered by soonest expiry. Entries without an
// expiry date go last; ties keep their stored order.
func ByExpiry(entries []core.Entry) []core.Entry {
	sorted := append([]core.Entry(nil), entries...)
	slices.SortStableFunc(sorted, func(a, b core.Entry) int {
		az, bz := a.ExpiryDate.IsZero(), b.ExpiryDate.IsZero()
		switch {
		case az && bz:
			return 0
		case az:
			return 1
		case bz:
			return -1
		}
		return a.ExpiryDate.Compare(b.ExpiryDate.Time)
	})
	return sorted
}
