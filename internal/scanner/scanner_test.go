package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"foodrescue/internal/core"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name  string
		entry core.Entry
		want  bool
	}{
		{"frozen tomorrow", core.Entry{FoodType: "Frozen", ExpiryDate: core.NewDate(2024, 1, 2)}, true},
		{"produce at horizon", core.Entry{FoodType: "Produce", ExpiryDate: core.NewDate(2024, 1, 3)}, true},
		{"lower case category", core.Entry{FoodType: "frozen", ExpiryDate: core.NewDate(2024, 1, 2)}, true},
		{"padded category", core.Entry{FoodType: " PRODUCE ", ExpiryDate: core.NewDate(2024, 1, 2)}, true},
		{"dairy excluded", core.Entry{FoodType: "Dairy", ExpiryDate: core.NewDate(2024, 1, 2)}, false},
		{"beyond horizon", core.Entry{FoodType: "Frozen", ExpiryDate: core.NewDate(2024, 1, 5)}, false},
		{"expires now", core.Entry{FoodType: "Frozen", ExpiryDate: core.NewDate(2024, 1, 1)}, false},
		{"already expired", core.Entry{FoodType: "Frozen", ExpiryDate: core.NewDate(2023, 12, 30)}, false},
		{"unknown expiry", core.Entry{FoodType: "Frozen"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InWindow(tt.entry, now); got != tt.want {
				t.Errorf("InWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInWindowMidDay(t *testing.T) {
	noon := now.Add(12 * time.Hour)
	today := core.Entry{FoodType: core.Frozen, ExpiryDate: core.NewDate(2024, 1, 1)}
	tomorrow := core.Entry{FoodType: core.Frozen, ExpiryDate: core.NewDate(2024, 1, 2)}
	if InWindow(today, noon) {
		t.Errorf("midnight of today is in the past at noon")
	}
	if !InWindow(tomorrow, noon) {
		t.Errorf("tomorrow midnight is 12h ahead")
	}
}

func sampleEntries() []core.Entry {
	return []core.Entry{
		{ID: "entry-1", FoodType: "Frozen", ItemName: "Peas", Quantity: 3, Unit: "lbs", ExpiryDate: core.NewDate(2024, 1, 2), Donor: "Market"},
		{ID: "entry-2", FoodType: "Dairy", ItemName: "Milk", ExpiryDate: core.NewDate(2024, 1, 2)},
		{ID: "entry-3", FoodType: "Produce", ItemName: "Kale", ExpiryDate: core.NewDate(2024, 1, 5)},
		{ID: "entry-4", FoodType: "produce", ItemName: "Apples", ExpiryDate: core.NewDate(2024, 1, 3)},
	}
}

func TestScanGeneratesSnapshots(t *testing.T) {
	s := New(nil, 0).WithIDs(counterIDs())
	prior := []core.Alert{{ID: "alert-old", EntryID: "entry-9"}}
	res := s.Scan(sampleEntries(), prior, now)

	if len(res.New) != 2 {
		t.Fatalf("expected 2 new alerts, got %d", len(res.New))
	}
	a := res.New[0]
	if a.ID != "alert-1" || a.EntryID != "entry-1" || a.ItemName != "Peas" || a.Quantity != 3 ||
		a.Donor != "Market" || a.ExpiryDate.String() != "2024-01-02" || !a.CreatedAt.Equal(now) {
		t.Fatalf("snapshot mismatch: %+v", a)
	}
	if a.Message != "Near expiry: Frozen - Peas (expires 2024-01-02)" {
		t.Fatalf("message: %q", a.Message)
	}
	if res.New[1].EntryID != "entry-4" {
		t.Fatalf("second alert: %+v", res.New[1])
	}
	if len(res.Log) != 3 || res.Log[0].ID != "alert-1" || res.Log[2].ID != "alert-old" {
		t.Fatalf("log must be newest first: %+v", res.Log)
	}
	if len(prior) != 1 {
		t.Fatalf("input log mutated")
	}
}

func TestScanAlwaysDuplicatesAcrossScans(t *testing.T) {
	s := New(AlwaysPolicy{}, 0)
	entries := sampleEntries()[:1]
	first := s.Scan(entries, nil, now)
	second := s.Scan(entries, first.Log, now.Add(2*time.Hour))
	if len(second.New) != 1 || len(second.Log) != 2 {
		t.Fatalf("expected repeated alert, got new=%d log=%d", len(second.New), len(second.Log))
	}
	if second.Log[0].ID == second.Log[1].ID {
		t.Fatalf("alert IDs must be unique")
	}
}

func TestScanDedupePolicy(t *testing.T) {
	p, err := GetPolicy(PolicyDedupe)
	if err != nil {
		t.Fatal(err)
	}
	s := New(p, 0)
	entries := sampleEntries()

	first := s.Scan(entries, nil, now)
	second := s.Scan(entries, first.Log, now.Add(2*time.Hour))
	if len(second.New) != 0 || len(second.Log) != len(first.Log) {
		t.Fatalf("dedupe must suppress repeats, got %d new", len(second.New))
	}

	// Once the previous alert ages out the entry alerts again.
	later := core.Entry{ID: "entry-1", FoodType: "Frozen", ItemName: "Peas", ExpiryDate: core.NewDate(2024, 1, 4)}
	third := s.Scan([]core.Entry{later}, first.Log, now.Add(49*time.Hour))
	if len(third.New) != 1 {
		t.Fatalf("expected alert after window, got %d", len(third.New))
	}

	// Duplicate entry IDs within a batch alert once.
	dup := []core.Entry{entries[0], entries[0]}
	if res := s.Scan(dup, nil, now); len(res.New) != 1 {
		t.Fatalf("expected one alert per entry, got %d", len(res.New))
	}
}

func TestScanRetentionCap(t *testing.T) {
	entries := make([]core.Entry, 30)
	for i := range entries {
		entries[i] = core.Entry{ID: fmt.Sprintf("entry-%d", i), FoodType: core.Frozen, ItemName: "Peas", ExpiryDate: core.NewDate(2024, 1, 2)}
	}
	s := New(nil, 0).WithIDs(counterIDs())
	var log []core.Alert
	for range 20 {
		log = s.Scan(entries, log, now).Log
	}
	if len(log) != DefaultRetention {
		t.Fatalf("expected log capped at %d, got %d", DefaultRetention, len(log))
	}
	// 600 alerts in batches of 30: the last batch leads, and the cut falls
	// inside the fourth batch.
	if log[0].ID != "alert-571" || log[len(log)-1].ID != "alert-110" {
		t.Fatalf("unexpected log bounds: first=%s last=%s", log[0].ID, log[len(log)-1].ID)
	}
}

func TestScanCustomRetention(t *testing.T) {
	s := New(nil, 2)
	res := s.Scan(sampleEntries(), []core.Alert{{ID: "a"}, {ID: "b"}}, now)
	if len(res.Log) != 2 || res.Log[0].EntryID != "entry-1" {
		t.Fatalf("unexpected log: %+v", res.Log)
	}
}

func TestNearExpiryIsIdempotent(t *testing.T) {
	entries := sampleEntries()
	a := NearExpiry(entries, now)
	b := NearExpiry(entries, now)
	if len(a) != 2 || len(a) != len(b) || a[0] != b[0] || a[1] != b[1] {
		t.Fatalf("near expiry not stable: %+v vs %+v", a, b)
	}
	if got := NearExpiry(nil, now); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice")
	}
}

func TestPolicyRegistry(t *testing.T) {
	if _, err := GetPolicy("never"); err == nil {
		t.Fatalf("expected unknown policy error")
	}
	RegisterPolicy("never", PolicyFunc(func(_ []core.Entry, _ []core.Alert, _ time.Time) []core.Entry { return nil }))
	t.Cleanup(func() {
		policiesMu.Lock()
		delete(policies, "never")
		policiesMu.Unlock()
	})
	p, err := GetPolicy("never")
	if err != nil {
		t.Fatal(err)
	}
	if res := New(p, 0).Scan(sampleEntries(), nil, now); len(res.New) != 0 {
		t.Fatalf("custom policy ignored")
	}
	names := PolicyNames()
	if len(names) != 3 || names[0] != PolicyAlways {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestPolicyRegistryConcurrentAccess(t *testing.T) {
	names := make([]string, 8)
	for i := range names {
		names[i] = fmt.Sprintf("custom-%d", i)
	}
	t.Cleanup(func() {
		policiesMu.Lock()
		defer policiesMu.Unlock()
		for _, name := range names {
			delete(policies, name)
		}
	})

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(2)
		go func() {
			defer wg.Done()
			RegisterPolicy(name, AlwaysPolicy{})
		}()
		go func() {
			defer wg.Done()
			if _, err := GetPolicy(PolicyAlways); err != nil {
				t.Errorf("get: %v", err)
			}
			_ = PolicyNames()
		}()
	}
	wg.Wait()

	for _, name := range names {
		if _, err := GetPolicy(name); err != nil {
			t.Fatalf("policy %s not registered: %v", name, err)
		}
	}
}

func TestMultiNotifier(t *testing.T) {
	var got int
	boom := errors.New("broker down")
	m := MultiNotifier{
		LogNotifier{},
		NotifierFunc(func(_ context.Context, a []core.Alert) error { got += len(a); return nil }),
		NotifierFunc(func(context.Context, []core.Alert) error { return boom }),
		nil,
	}
	err := m.Notify(context.Background(), []core.Alert{{ID: "alert-1", Message: "m"}})
	if got != 1 {
		t.Fatalf("notifier not called")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
}
