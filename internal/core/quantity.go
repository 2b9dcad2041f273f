// Package core provides quantity coercion for rescue entries.
//
// Spreadsheet cells and form fields arrive as strings, numbers or nothing at
// all. Quantities never reject a row: anything that does not read as a
// non-negative number becomes zero.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseQuantity coerces a raw cell value into a non-negative quantity.
//
// It accepts numeric types and plain numeric strings with a dot as the
// decimal separator. Strings containing commas are not numbers, so neither
// "12,5" nor "1,500" is guessed at. Empty, non-numeric, negative and
// non-finite values yield 0.
//
// Examples:
//   ParseQuantity("12.5")  -> 12.5
//   ParseQuantity(40)      -> 40
//   ParseQuantity("1,500") -> 0
//   ParseQuantity("lots")  -> 0
func ParseQuantity(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// FormatQuantity renders a quantity without trailing zeros.
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
