package mapper

import (
	"slices"
	"testing"

	"foodrescue/internal/core"
	"foodrescue/internal/tabular"
)

func row(kv ...any) tabular.Row {
	var r tabular.Row
	for i := 0; i+1 < len(kv); i += 2 {
		r = append(r, tabular.Cell{Header: kv[i].(string), Value: kv[i+1]})
	}
	return r
}

func TestMapRowMicrosoftFormsExport(t *testing.T) {
	r := row(
		"ID", "17",
		"Start time", "1/2/2024 10:15:00",
		"Food Type", "Produce",
		"Item / Description", "Lettuce",
		"Quantity (lbs)", "12.5",
		"Expiry date", 45000.0,
		"Donor / Store", "Green Grocer",
		"Your name", "Alex",
		"Notes", " cooler 2 ",
	)
	e, ok := MapRow(r)
	if !ok {
		t.Fatalf("expected row to map")
	}
	want := core.Entry{
		FoodType:      core.Produce,
		ItemName:      "Lettuce",
		Quantity:      12.5,
		Unit:          core.DefaultUnit,
		ExpiryDate:    core.NewDate(2023, 3, 15),
		Donor:         "Green Grocer",
		VolunteerName: "Alex",
		Notes:         "cooler 2",
	}
	if e.ExpiryDate.String() != want.ExpiryDate.String() {
		t.Fatalf("expiry: got %s", e.ExpiryDate)
	}
	e.ExpiryDate = want.ExpiryDate
	if e != want {
		t.Fatalf("mapped entry mismatch:\nwant %+v\ngot  %+v", want, e)
	}
	if e.ID != "" || !e.CreatedAt.IsZero() {
		t.Fatalf("mapper must not stamp drafts: %+v", e)
	}
}

func TestMapRowDefaultsAndCoercion(t *testing.T) {
	e, ok := MapRow(row("ITEM", "Bread", "qty", "many", "Use-By", "soon"))
	if !ok {
		t.Fatalf("expected row to map")
	}
	if e.FoodType != core.Other || e.Unit != core.DefaultUnit || e.Quantity != 0 || !e.ExpiryDate.IsZero() {
		t.Fatalf("unexpected defaults: %+v", e)
	}
}

func TestResolveExactBeforeSubstring(t *testing.T) {
	// "type" would also match "food type" and "unit type" by substring; the
	// exact header wins.
	r := row("Unit Type", "box", "Type", "Dairy", "Item", "Milk")
	v, ok := Resolve(r, FieldFoodType)
	if !ok || v != "Dairy" {
		t.Fatalf("expected exact match Dairy, got %v", v)
	}

	// Higher-priority alias wins over column order.
	r = row("Category", "Canned", "Food Type", "Frozen", "Item", "Beans")
	if v, _ := Resolve(r, FieldFoodType); v != "Frozen" {
		t.Fatalf("expected food type alias to win, got %v", v)
	}

	// Empty values fall through to the next alias.
	r = row("Item Name", "", "Description", "Soup")
	if v, _ := Resolve(r, FieldItemName); v != "Soup" {
		t.Fatalf("expected fallback to description, got %v", v)
	}
}

func TestMapRowsDropsRowsWithoutItemName(t *testing.T) {
	rows := []tabular.Row{
		row("Item Name", "Apples", "Qty", "3"),
		row("Item Name", "", "Qty", "4"),
		row("Donor", "Someone"),
		row("Item Name", "   ", "Qty", "1"),
		row("Description", "Pears"),
	}
	before := make([]tabular.Row, len(rows))
	for i, r := range rows {
		before[i] = slices.Clone(r)
	}

	got := slices.Collect(MapRows(rows))
	if len(got) > len(rows) {
		t.Fatalf("mapper produced more entries than rows")
	}
	if len(got) != 2 || got[0].ItemName != "Apples" || got[1].ItemName != "Pears" {
		t.Fatalf("unexpected mapped entries: %+v", got)
	}
	for i := range rows {
		if !slices.Equal(rows[i], before[i]) {
			t.Fatalf("input row %d mutated", i)
		}
	}
}

func TestMapRowsIsLazy(t *testing.T) {
	rows := []tabular.Row{
		row("Item", "a"), row("Item", "b"), row("Item", "c"),
	}
	var seen []string
	for e := range MapRows(rows) {
		seen = append(seen, e.ItemName)
		if len(seen) == 2 {
			break
		}
	}
	if len(seen) != 2 {
		t.Fatalf("expected early stop, got %v", seen)
	}
}

func TestAliasesReturnsCopy(t *testing.T) {
	a := Aliases(FieldItemName)
	a[0] = "changed"
	if Aliases(FieldItemName)[0] != "item name" {
		t.Fatalf("alias table mutated through returned slice")
	}
}
