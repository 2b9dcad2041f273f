// Package mapper turns rows of externally authored spreadsheets (form
// exports, donor sheets) into entry drafts.
//
// Column headers are not under our control, so every canonical field is
// resolved through an ordered alias list. New spellings are added to the
// aliases table, never to the matching code.
package mapper

import (
	"fmt"
	"iter"
	"strings"

	"foodrescue/internal/core"
	"foodrescue/internal/tabular"
)

// Field names a canonical entry field resolved from a raw row.
type Field string

const (
	FieldFoodType      Field = "foodType"
	FieldItemName      Field = "itemName"
	FieldQuantity      Field = "quantity"
	FieldUnit          Field = "unit"
	FieldExpiryDate    Field = "expiryDate"
	FieldDonor         Field = "donor"
	FieldVolunteerName Field = "volunteerName"
	FieldNotes         Field = "notes"
)

type fieldAliases struct {
	field   Field
	aliases []string
}

// aliases is evaluated top to bottom; within a field the first alias with a
// non-empty value wins.
var aliases = []fieldAliases{
	{FieldFoodType, []string{"food type", "foodtype", "type", "category"}},
	{FieldItemName, []string{"item name", "itemname", "item", "description", "food item"}},
	{FieldQuantity, []string{"quantity", "qty", "amount"}},
	{FieldUnit, []string{"unit", "units"}},
	{FieldExpiryDate, []string{"expiry", "expiry date", "expirydate", "use by", "use-by"}},
	{FieldDonor, []string{"donor", "source", "store"}},
	{FieldVolunteerName, []string{"volunteer", "volunteer name", "your name", "name"}},
	{FieldNotes, []string{"notes", "note"}},
}

// Aliases returns the alias list for a field, in priority order.
func Aliases(f Field) []string {
	for _, fa := range aliases {
		if fa.field == f {
			return append([]string(nil), fa.aliases...)
		}
	}
	return nil
}

// Resolve looks a field up in a row. For each alias, in priority order, an
// exact header match is tried before a substring match; headers are compared
// trimmed and lower-cased, in column order. Empty values are skipped.
func Resolve(row tabular.Row, f Field) (any, bool) {
	for _, alias := range Aliases(f) {
		if v, ok := lookup(row, alias, func(h, a string) bool { return h == a }); ok {
			return v, true
		}
		if v, ok := lookup(row, alias, strings.Contains); ok {
			return v, true
		}
	}
	return nil, false
}

func lookup(row tabular.Row, alias string, match func(header, alias string) bool) (any, bool) {
	for _, c := range row {
		if !match(normalizeHeader(c.Header), alias) {
			continue
		}
		if isEmpty(c.Value) {
			continue
		}
		return c.Value, true
	}
	return nil, false
}

// MapRow converts one raw row into an entry draft. The draft carries no ID
// or creation time; the repository assigns those. ok is false when no item
// name could be resolved.
func MapRow(row tabular.Row) (core.Entry, bool) {
	str := func(f Field) string {
		v, _ := Resolve(row, f)
		return toString(v)
	}

	e := core.Entry{
		FoodType:      core.FoodType(str(FieldFoodType)),
		ItemName:      str(FieldItemName),
		Unit:          str(FieldUnit),
		Donor:         str(FieldDonor),
		VolunteerName: str(FieldVolunteerName),
		Notes:         str(FieldNotes),
	}
	if v, ok := Resolve(row, FieldQuantity); ok {
		e.Quantity = core.ParseQuantity(v)
	}
	if v, ok := Resolve(row, FieldExpiryDate); ok {
		e.ExpiryDate = ParseCellDate(v)
	}
	if e.ItemName == "" {
		return core.Entry{}, false
	}
	e.Normalize()
	return e, true
}

// MapRows lazily maps a batch of rows, skipping rows without an item name.
// The input slice is never modified.
func MapRows(rows []tabular.Row) iter.Seq[core.Entry] {
	return func(yield func(core.Entry) bool) {
		for _, row := range rows {
			e, ok := MapRow(row)
			if !ok {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return core.FormatQuantity(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
