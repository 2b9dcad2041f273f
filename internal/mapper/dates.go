package mapper

import (
	"math"
	"strconv"
	"strings"
	"time"

	"foodrescue/internal/core"
)

const (
	// serialEpochOffset is the number of days between the spreadsheet
	// epoch (1899-12-30) and the Unix epoch.
	serialEpochOffset = 25569
	secondsPerDay     = 86400

	maxSerialSeconds = float64(math.MaxInt64 / int64(time.Second))
)

// formDateLayouts are the non-ISO layouts form exports produce, tried after
// the ISO date.
var formDateLayouts = []string{"1/2/2006", "2006/1/2"}

// ParseCellDate reads an expiry cell. Numbers and numeric strings are
// spreadsheet serial dates; strings are truncated to their date portion.
// Unparseable values yield the zero Date.
func ParseCellDate(v any) core.Date {
	switch x := v.(type) {
	case float64:
		return SerialToDate(x)
	case int:
		return SerialToDate(float64(x))
	case int64:
		return SerialToDate(float64(x))
	case string:
		return parseDateString(x)
	}
	return core.Date{}
}

// SerialToDate converts a spreadsheet serial day count to a calendar date.
// Non-positive and non-finite serials yield the zero Date.
func SerialToDate(serial float64) core.Date {
	if math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 {
		return core.Date{}
	}
	secs := (serial - serialEpochOffset) * secondsPerDay
	if math.Abs(secs) > maxSerialSeconds {
		return core.Date{}
	}
	return core.DateOf(time.Unix(0, 0).Add(time.Duration(secs * float64(time.Second))))
}

func parseDateString(s string) core.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return SerialToDate(serial)
	}
	if d, err := core.ParseDate(s); err == nil {
		return d
	}
	// Drop a trailing time component ("1/2/2024 10:15:00").
	datePart, _, _ := strings.Cut(s, " ")
	for _, layout := range formDateLayouts {
		if t, err := time.Parse(layout, datePart); err == nil {
			return core.DateOf(t)
		}
	}
	return core.Date{}
}
