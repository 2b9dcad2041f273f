package sheets

import (
	"strings"
	"testing"
	"time"

	"foodrescue/internal/core"
)

func TestStampKeepsExistingValues(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	in := []core.Entry{
		{ID: "entry-keep", ItemName: "Rice", CreatedAt: created},
		{ItemName: " Beans "},
	}

	out := Stamp(in, now)
	if out[0].ID != "entry-keep" || !out[0].CreatedAt.Equal(created) {
		t.Fatalf("existing values overwritten: %+v", out[0])
	}
	if !strings.HasPrefix(out[1].ID, "entry-") || !out[1].CreatedAt.Equal(now) {
		t.Fatalf("new entry not stamped: %+v", out[1])
	}
	if out[1].ItemName != "Beans" || out[1].Unit != core.DefaultUnit || out[1].FoodType != core.Other {
		t.Fatalf("new entry not normalized: %+v", out[1])
	}
	if in[1].ID != "" {
		t.Fatalf("input mutated")
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewEntryID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
	if !strings.HasPrefix(NewAlertID(), "alert-") {
		t.Fatalf("alert id prefix")
	}
}
