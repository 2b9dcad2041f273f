// Package tabular encodes rescue entries and alerts as spreadsheet tables and
// reads arbitrary uploaded sheets into ordered rows.
//
// The column order of Headers is a compatibility contract: the file store,
// the export endpoint and external tooling all rely on it.
package tabular

import (
	"strings"
	"time"
)

const (
	SheetEntries = "Entries"
	SheetAlerts  = "Alerts"

	timestampLayout = time.RFC3339Nano
)

// Headers is the canonical entry column order.
var Headers = []string{
	"Id", "FoodType", "ItemName", "Quantity", "Unit",
	"ExpiryDate", "Donor", "VolunteerName", "Notes", "CreatedAt",
}

// AlertHeaders is the column order of the alert log sheet.
var AlertHeaders = []string{
	"Id", "EntryId", "FoodType", "ItemName", "Quantity", "Unit",
	"ExpiryDate", "Donor", "Message", "CreatedAt",
}

type (
	// Cell is one header/value pair of a raw row. Value is a string for
	// file uploads and may be a float64 for API sourced rows.
	Cell struct {
		Header string
		Value  any
	}

	// Row keeps cells in sheet column order so header matching is
	// deterministic.
	Row []Cell

	// record maps canonical headers to cell text for decoding stored tables.
	record map[string]string
)

// Headers returns the row's headers in column order.
func (r Row) Headers() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Header
	}
	return out
}

// Get returns the value for an exact header.
func (r Row) Get(header string) (any, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Value, true
		}
	}
	return nil, false
}

// FormatTimestamp renders a creation time for storage.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp reads stored creation times. It accepts RFC3339 values,
// zone-less "2006-01-02T15:04:05" values written by older exports (read as
// UTC) and bare dates. Anything else yields the zero time.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{timestampLayout, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// get returns the cell exactly as stored.
func (r record) get(header string) string {
	return r[header]
}

// field returns the cell with surrounding whitespace removed, for columns
// that Normalize trims or that hold parsed values.
func (r record) field(header string) string {
	return strings.TrimSpace(r[header])
}
