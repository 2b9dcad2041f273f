// Package services orchestrates the entry store, the expiry scanner and the
// dashboard aggregator behind one API used by the HTTP server, the scan
// worker and the CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"foodrescue/internal/core"
	"foodrescue/internal/dashboard"
	"foodrescue/internal/log"
	"foodrescue/internal/scanner"
	"foodrescue/internal/sheets"
)

const (
	DefaultEntriesLimit = 100
	MaxEntriesLimit     = 500
	DefaultAlertsLimit  = 50
	MaxAlertsLimit      = 200
)

var (
	// ErrNoValidRows is returned when an import maps to zero entries.
	ErrNoValidRows = errors.New("no valid rows found: every row is missing an item name")
	// ErrInvalidEntry wraps validation failures of submitted entries.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrUnreadableImport wraps payloads that are neither a workbook nor CSV
	// with a header row.
	ErrUnreadableImport = errors.New("unreadable import file")
)

// Options configures a RescueService. Zero values pick the defaults.
type Options struct {
	Scanner      *scanner.Scanner
	Notifier     scanner.Notifier
	Operational  *core.OperationalMetrics
	ScanOnCreate bool
	Now          func() time.Time
	Logger       *log.Logger
}

// RescueService is safe for concurrent use. Scans are serialized so two
// scans never race on the alert log.
type RescueService struct {
	store        sheets.Store
	scanner      *scanner.Scanner
	notifier     scanner.Notifier
	operational  core.OperationalMetrics
	scanOnCreate bool
	now          func() time.Time
	logger       *log.Logger

	scanMu sync.Mutex
}

func NewRescueService(store sheets.Store, opts Options) *RescueService {
	s := &RescueService{
		store:        store,
		scanner:      opts.Scanner,
		notifier:     opts.Notifier,
		operational:  dashboard.DefaultOperational(),
		scanOnCreate: opts.ScanOnCreate,
		now:          opts.Now,
		logger:       opts.Logger,
	}
	if s.scanner == nil {
		s.scanner = scanner.New(nil, 0)
	}
	if opts.Operational != nil {
		s.operational = *opts.Operational
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	s.logger = s.logger.WithComponent(log.ComponentRescue)
	return s
}

// CreateEntries stores a form submission of one or more items. Items that do
// not validate, such as those without a name, are skipped; a submission with
// no valid item fails with core.ErrEmptyItemName.
func (s *RescueService) CreateEntries(ctx context.Context, drafts []core.Entry) ([]core.Entry, error) {
	valid := make([]core.Entry, 0, len(drafts))
	for _, d := range drafts {
		d.Normalize()
		if err := d.Validate(); err != nil {
			continue
		}
		valid = append(valid, d)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntry, core.ErrEmptyItemName)
	}

	created, err := s.store.Append(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("save entries: %w", err)
	}
	for _, e := range created {
		fields := log.NewFields().WithOperation(log.OpCreate).
			WithEntry(e.ID, string(e.FoodType), e.ItemName, e.ExpiryDate.String())
		s.logger.InfoContext(ctx, "Entry created", fields.ToSlice()...)
	}

	if s.scanOnCreate {
		if _, err := s.RunScan(ctx); err != nil {
			// The entries are stored; a failed scan is retried by the worker.
			s.logger.Failure(ctx, "Scan after create failed", log.OpScan, err)
		}
	}
	return created, nil
}

// Dashboard summarizes the stored entries at the current time.
func (s *RescueService) Dashboard(ctx context.Context) (core.Summary, error) {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("load entries: %w", err)
	}
	return dashboard.Aggregate(entries, s.now(), s.operational), nil
}

// NearExpiry lists spoilage-sensitive entries expiring within the horizon.
func (s *RescueService) NearExpiry(ctx context.Context) ([]core.Entry, error) {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return scanner.NearExpiry(entries, s.now()), nil
}

// InventoryItem pairs an entry with its expiry status.
type InventoryItem struct {
	Entry  core.Entry
	Status dashboard.ExpiryStatus
}

// InventoryView is the warehouse report plus every entry by soonest expiry.
type InventoryView struct {
	Report core.InventoryReport
	Items  []InventoryItem
}

func (s *RescueService) Inventory(ctx context.Context) (InventoryView, error) {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return InventoryView{}, fmt.Errorf("load entries: %w", err)
	}
	now := s.now()
	view := InventoryView{Report: dashboard.Inventory(entries)}
	for _, e := range dashboard.ByExpiry(entries) {
		view.Items = append(view.Items, InventoryItem{Entry: e, Status: dashboard.Status(e, now)})
	}
	return view, nil
}

// RecentEntries returns the newest entries first. limit defaults to 100 and
// is capped at 500.
func (s *RescueService) RecentEntries(ctx context.Context, limit int) ([]core.Entry, error) {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return dashboard.Recent(entries, clampLimit(limit, DefaultEntriesLimit, MaxEntriesLimit)), nil
}

// Alerts returns the newest alerts first. limit defaults to 50 and is capped
// at 200.
func (s *RescueService) Alerts(ctx context.Context, limit int) ([]core.Alert, error) {
	alerts, err := s.store.LoadAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	limit = clampLimit(limit, DefaultAlertsLimit, MaxAlertsLimit)
	if len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
