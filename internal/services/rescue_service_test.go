package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/dashboard"
	"foodrescue/internal/scanner"
	"foodrescue/internal/sheets/memory"
	"foodrescue/internal/tabular"
)

var now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	batches [][]core.Alert
	err     error
}

func (r *recordingNotifier) Notify(_ context.Context, alerts []core.Alert) error {
	r.batches = append(r.batches, alerts)
	return r.err
}

func newService(t *testing.T, opts Options) (*RescueService, *memory.Store) {
	t.Helper()
	clock := func() time.Time { return now }
	store := memory.New().WithClock(clock)
	opts.Now = clock
	return NewRescueService(store, opts), store
}

func TestCreateEntries(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, Options{})

	created, err := svc.CreateEntries(ctx, []core.Entry{
		{FoodType: "Frozen", ItemName: "Peas", Quantity: 3, ExpiryDate: core.NewDate(2024, 1, 2)},
		{ItemName: "  "},
		{ItemName: "Bread", Quantity: -2},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 2 || created[1].Quantity != 0 || created[1].FoodType != core.Other || created[1].Unit != "lbs" {
		t.Fatalf("unexpected entries: %+v", created)
	}
	all, _ := store.LoadAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 stored entries, got %d", len(all))
	}

	_, err = svc.CreateEntries(ctx, []core.Entry{{ItemName: ""}})
	if !errors.Is(err, core.ErrEmptyItemName) || !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected empty item name error, got %v", err)
	}
}

func TestCreateEntriesKeepsLongNamesInBatch(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, Options{})
	long := strings.Repeat("x", 201)
	created, err := svc.CreateEntries(ctx, []core.Entry{{ItemName: "Peas"}, {ItemName: "  "}, {ItemName: long}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 2 || created[0].ItemName != "Peas" || created[1].ItemName != long {
		t.Fatalf("unexpected entries: %+v", created)
	}
	all, _ := store.LoadAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 stored entries, got %d", len(all))
	}
}

func TestCreateEntriesWriteFailure(t *testing.T) {
	svc, store := newService(t, Options{})
	store.FailWrites(errors.New("disk full"))
	if _, err := svc.CreateEntries(context.Background(), []core.Entry{{ItemName: "Peas"}}); err == nil {
		t.Fatalf("expected write error to propagate")
	}
}

func TestCreateEntriesScanOnCreate(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc, store := newService(t, Options{ScanOnCreate: true, Notifier: n})

	if _, err := svc.CreateEntries(ctx, []core.Entry{{FoodType: "Produce", ItemName: "Kale", ExpiryDate: core.NewDate(2024, 1, 2)}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	alerts, _ := store.LoadAlerts(ctx)
	if len(alerts) != 1 || len(n.batches) != 1 {
		t.Fatalf("expected scan after create, alerts=%d batches=%d", len(alerts), len(n.batches))
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, Options{})
	csv := "Food Type,Item,Qty,Use By,Donor\n" +
		"Frozen,Peas,3,2024-01-02,Market\n" +
		",,,,\n" +
		"Produce,,2,,\n" +
		"Dairy,Milk,1,45000,\n"

	res, err := svc.Import(ctx, []byte(csv), false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Rows != 3 || res.Accepted != 2 || res.Replaced {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entries[1].ExpiryDate.String() != "2023-03-15" || res.Entries[0].ID == "" {
		t.Fatalf("unexpected entries: %+v", res.Entries)
	}

	res, err = svc.Import(ctx, []byte("Item\nRice\n"), true)
	if err != nil || !res.Replaced {
		t.Fatalf("replace import: %+v err=%v", res, err)
	}
	all, _ := store.LoadAll(ctx)
	if len(all) != 1 || all[0].ItemName != "Rice" {
		t.Fatalf("replace must discard prior entries: %+v", all)
	}
}

func TestImportNoValidRowsLeavesStore(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, Options{})
	if _, err := store.Append(ctx, []core.Entry{{ItemName: "Existing"}}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Import(ctx, []byte("Donor,Notes\nMarket,none\n"), true)
	if !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("expected ErrNoValidRows, got %v", err)
	}
	all, _ := store.LoadAll(ctx)
	if len(all) != 1 {
		t.Fatalf("store mutated on empty import: %+v", all)
	}

	if _, err := svc.Import(ctx, nil, false); !errors.Is(err, tabular.ErrEmptyPayload) {
		t.Fatalf("expected empty payload error, got %v", err)
	}
}

type staticSource []tabular.Row

func (s staticSource) ReadRows(context.Context) ([]tabular.Row, error) { return s, nil }

func TestImportFrom(t *testing.T) {
	svc, _ := newService(t, Options{})
	src := staticSource{{{Header: "Item Name", Value: "Beans"}, {Header: "Quantity", Value: "2"}}}
	res, err := svc.ImportFrom(context.Background(), src, false)
	if err != nil || res.Accepted != 1 || res.Entries[0].Quantity != 2 {
		t.Fatalf("import from source: %+v err=%v", res, err)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, Options{})
	if _, err := store.Append(ctx, []core.Entry{{ItemName: "Peas", FoodType: "Frozen"}}); err != nil {
		t.Fatal(err)
	}

	x, err := svc.Export(ctx, FormatXLSX)
	if err != nil {
		t.Fatalf("export xlsx: %v", err)
	}
	back, err := tabular.DecodeEntries(x.Payload)
	if err != nil || len(back) != 1 || back[0].ItemName != "Peas" {
		t.Fatalf("xlsx export unreadable: %+v err=%v", back, err)
	}
	if x.Filename != "food-rescue-entries-2024-01-01.xlsx" {
		t.Fatalf("filename: %s", x.Filename)
	}

	c, err := svc.Export(ctx, FormatCSV)
	if err != nil || !strings.HasPrefix(string(c.Payload), "Id,FoodType,ItemName") {
		t.Fatalf("csv export: %q err=%v", c.Payload, err)
	}

	if _, err := ParseExportFormat("pdf"); err == nil {
		t.Fatalf("expected unsupported format")
	}
	if f, _ := ParseExportFormat(""); f != FormatXLSX {
		t.Fatalf("default format: %s", f)
	}
}

func TestRunScan(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc, store := newService(t, Options{Notifier: n})

	// Nothing to alert: the log is not rewritten and nobody is notified.
	report, err := svc.RunScan(ctx)
	if err != nil || len(report.New) != 0 || len(n.batches) != 0 {
		t.Fatalf("empty scan: %+v err=%v", report, err)
	}

	if _, err := store.Append(ctx, []core.Entry{
		{FoodType: "Frozen", ItemName: "Peas", ExpiryDate: core.NewDate(2024, 1, 2)},
		{FoodType: "Dairy", ItemName: "Milk", ExpiryDate: core.NewDate(2024, 1, 2)},
		{FoodType: "Produce", ItemName: "Kale", ExpiryDate: core.NewDate(2024, 1, 5)},
	}); err != nil {
		t.Fatal(err)
	}

	report, err = svc.RunScan(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if report.Scanned != 3 || len(report.New) != 1 || report.LogSize != 1 || !report.Notified {
		t.Fatalf("unexpected report: %+v", report)
	}

	// Repeated scans keep alerting under the default policy.
	if _, err := svc.RunScan(ctx); err != nil {
		t.Fatal(err)
	}
	alerts, _ := svc.Alerts(ctx, 0)
	if len(alerts) != 2 || len(n.batches) != 2 {
		t.Fatalf("expected duplicate alert, alerts=%d batches=%d", len(alerts), len(n.batches))
	}
}

func TestRunScanNotifierFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{err: errors.New("broker down")}
	svc, store := newService(t, Options{Notifier: n})
	if _, err := store.Append(ctx, []core.Entry{{FoodType: "Frozen", ItemName: "Peas", ExpiryDate: core.NewDate(2024, 1, 2)}}); err != nil {
		t.Fatal(err)
	}
	report, err := svc.RunScan(ctx)
	if err != nil || report.Notified || len(report.New) != 1 {
		t.Fatalf("notifier failure must be logged only: %+v err=%v", report, err)
	}
}

func TestRunScanSaveFailurePropagates(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, Options{})
	if _, err := store.Append(ctx, []core.Entry{{FoodType: "Frozen", ItemName: "Peas", ExpiryDate: core.NewDate(2024, 1, 2)}}); err != nil {
		t.Fatal(err)
	}
	store.FailWrites(errors.New("read-only"))
	if _, err := svc.RunScan(ctx); err == nil {
		t.Fatalf("expected alert log write failure")
	}
}

func TestRunScanDedupe(t *testing.T) {
	ctx := context.Background()
	p, _ := scanner.GetPolicy(scanner.PolicyDedupe)
	svc, store := newService(t, Options{Scanner: scanner.New(p, 0)})
	if _, err := store.Append(ctx, []core.Entry{{FoodType: "Frozen", ItemName: "Peas", ExpiryDate: core.NewDate(2024, 1, 2)}}); err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, err := svc.RunScan(ctx); err != nil {
			t.Fatal(err)
		}
	}
	alerts, _ := svc.Alerts(ctx, 0)
	if len(alerts) != 1 {
		t.Fatalf("dedupe policy produced %d alerts", len(alerts))
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, Options{})
	var drafts []core.Entry
	for i := range 120 {
		drafts = append(drafts, core.Entry{ItemName: fmt.Sprintf("item-%d", i), Quantity: 7, CreatedAt: now.Add(-time.Duration(i) * time.Minute)})
	}
	drafts = append(drafts, core.Entry{FoodType: "Produce", ItemName: "Kale", ExpiryDate: core.NewDate(2024, 1, 2), CreatedAt: now.Add(-time.Hour)})
	if _, err := store.Append(ctx, drafts); err != nil {
		t.Fatal(err)
	}

	recent, _ := svc.RecentEntries(ctx, 0)
	if len(recent) != DefaultEntriesLimit || recent[0].ItemName != "item-0" {
		t.Fatalf("recent entries: len=%d first=%s", len(recent), recent[0].ItemName)
	}
	if recent, _ := svc.RecentEntries(ctx, 10_000); len(recent) != len(drafts) {
		t.Fatalf("limit cap: %d", len(recent))
	}

	summary, err := svc.Dashboard(ctx)
	if err != nil || summary.TotalEntries != 121 || summary.Operational != dashboard.DefaultOperational() {
		t.Fatalf("dashboard: %+v err=%v", summary, err)
	}
	again, _ := svc.Dashboard(ctx)
	if again.FoodRescuedPerDay != summary.FoodRescuedPerDay || again.RecentCount != summary.RecentCount {
		t.Fatalf("dashboard not idempotent")
	}

	near, _ := svc.NearExpiry(ctx)
	if len(near) != 1 || near[0].ItemName != "Kale" {
		t.Fatalf("near expiry: %+v", near)
	}

	inv, _ := svc.Inventory(ctx)
	if inv.Report.TotalEntries != 121 || inv.Items[0].Entry.ItemName != "Kale" || inv.Items[0].Status != dashboard.StatusExpiringSoon {
		t.Fatalf("inventory: %+v", inv.Items[0])
	}
}

func TestAlertsLimit(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t, Options{})
	alerts := make([]core.Alert, 300)
	for i := range alerts {
		alerts[i] = core.Alert{ID: fmt.Sprintf("alert-%d", i)}
	}
	if err := store.SaveAlerts(ctx, alerts); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		limit, want int
	}{{0, 50}, {-1, 50}, {10, 10}, {1000, 200}}
	for _, tt := range tests {
		got, _ := svc.Alerts(ctx, tt.limit)
		if len(got) != tt.want {
			t.Errorf("Alerts(%d) = %d, want %d", tt.limit, len(got), tt.want)
		}
	}
}
