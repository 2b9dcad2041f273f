package cli

import (
	"context"
	"testing"
	"time"

	"foodrescue/internal/config"
	"foodrescue/internal/core"
	"foodrescue/internal/log"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:           "3000",
		DataBackend:    config.BackendXLSX,
		DataDir:        t.TempDir(),
		ScanInterval:   time.Hour,
		AlertPolicy:    "always",
		AlertRetention: 500,
	}
}

func TestBuildApp(t *testing.T) {
	ctx := context.Background()
	app, err := BuildApp(ctx, testConfig(t), log.Discard())
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	defer app.Close()

	if app.AMQP != nil {
		t.Fatal("AMQP should be disabled without a URL")
	}
	tomorrow := core.DateOf(time.Now().Add(24 * time.Hour))
	if _, err := app.Service.CreateEntries(ctx, []core.Entry{{FoodType: "Frozen", ItemName: "Peas", ExpiryDate: tomorrow}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	report, err := app.Service.RunScan(ctx)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(report.New) != 1 || !report.Notified {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestBuildAppRejectsUnknownPolicy(t *testing.T) {
	cfg := testConfig(t)
	cfg.AlertPolicy = "sometimes"
	if _, err := BuildApp(context.Background(), cfg, log.Discard()); err == nil {
		t.Fatal("expected policy error")
	}
}

func TestGoogleSourceRequiresSpreadsheet(t *testing.T) {
	if _, err := GoogleSource(context.Background(), testConfig(t), log.Discard()); err == nil {
		t.Fatal("expected error when Google Sheets is not configured")
	}
}
