package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-02", "2024-01-02", true},
		{"2024-01-02T10:30:00.000Z", "2024-01-02", true},
		{" 2024-12-31 ", "2024-12-31", true},
		{"", "", false},
		{"not a date", "", false},
		{"2024-13-01", "", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && (err != nil || d.String() != tc.want) {
			t.Fatalf("case %d: expected %s, got %s (err=%v)", i, tc.want, d, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestDateOfTruncatesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	d := DateOf(time.Date(2024, 3, 1, 2, 0, 0, 0, loc))
	if d.String() != "2024-02-29" {
		t.Fatalf("expected 2024-02-29, got %s", d)
	}
	if (Date{}).String() != "" {
		t.Fatalf("zero date should render empty")
	}
}

func TestEntryNormalizeAndValidate(t *testing.T) {
	e := Entry{ItemName: "  Peas ", Quantity: -3}
	e.Normalize()
	if e.FoodType != Other || e.Unit != DefaultUnit || e.Quantity != 0 || e.ItemName != "Peas" {
		t.Fatalf("unexpected normalized entry: %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Entry{
		{ItemName: ""},
		{ItemName: "   "},
		{ItemName: "x", Quantity: -1},
	}
	for i, b := range bads {
		if err := b.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestStampNewKeepsExistingValues(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	gen := func() string { calls++; return "entry-new" }

	fresh := Entry{ItemName: "a"}
	StampNew(&fresh, now, gen)
	if fresh.ID != "entry-new" || !fresh.CreatedAt.Equal(now) {
		t.Fatalf("unexpected stamp: %+v", fresh)
	}

	earlier := now.Add(-time.Hour)
	kept := Entry{ID: "entry-old", CreatedAt: earlier}
	StampNew(&kept, now, gen)
	if kept.ID != "entry-old" || !kept.CreatedAt.Equal(earlier) {
		t.Fatalf("existing fields overwritten: %+v", kept)
	}
	if calls != 1 {
		t.Fatalf("id generator called %d times", calls)
	}
}

func TestIsSpoilageSensitive(t *testing.T) {
	for _, ft := range []FoodType{"Frozen", "frozen", "PRODUCE", " Produce "} {
		if !ft.IsSpoilageSensitive() {
			t.Fatalf("%q should be spoilage sensitive", ft)
		}
	}
	for _, ft := range []FoodType{"Dairy", "Bakery", "", "frozen food"} {
		if ft.IsSpoilageSensitive() {
			t.Fatalf("%q should not be spoilage sensitive", ft)
		}
	}
}
