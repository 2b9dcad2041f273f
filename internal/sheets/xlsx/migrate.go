package xlsx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"foodrescue/internal/core"
	"foodrescue/internal/log"
	"foodrescue/internal/mapper"
	"foodrescue/internal/sheets"
	"foodrescue/internal/tabular"
)

// Legacy JSON file names from the deployment that predates the workbooks.
const (
	LegacyEntriesFile = "entries.json"
	LegacyAlertsFile  = "alerts.json"
)

// MigrationResult reports how many records were carried over.
type MigrationResult struct {
	Entries int
	Alerts  int
	Skipped bool // workbooks already existed
}

type legacyRecord struct {
	ID            string `json:"id"`
	EntryID       string `json:"entryId"`
	FoodType      string `json:"foodType"`
	ItemName      string `json:"itemName"`
	Quantity      any    `json:"quantity"`
	Unit          string `json:"unit"`
	ExpiryDate    any    `json:"expiryDate"`
	Donor         string `json:"donor"`
	VolunteerName string `json:"volunteerName"`
	Notes         string `json:"notes"`
	Message       string `json:"message"`
	CreatedAt     string `json:"createdAt"`
}

// MigrateJSON imports entries.json and alerts.json from legacyDir. Nothing is
// imported once the entries workbook exists, so the call is safe to repeat.
func (s *Store) MigrateJSON(ctx context.Context, legacyDir string) (MigrationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.entriesPath); err == nil {
		return MigrationResult{Skipped: true}, nil
	}

	var res MigrationResult
	records, err := readLegacy(filepath.Join(legacyDir, LegacyEntriesFile))
	if err != nil {
		return res, err
	}
	entries := make([]core.Entry, 0, len(records))
	for _, r := range records {
		e := core.Entry{
			ID:            r.ID,
			FoodType:      core.FoodType(r.FoodType),
			ItemName:      r.ItemName,
			Quantity:      core.ParseQuantity(r.Quantity),
			Unit:          r.Unit,
			ExpiryDate:    mapper.ParseCellDate(r.ExpiryDate),
			Donor:         r.Donor,
			VolunteerName: r.VolunteerName,
			Notes:         r.Notes,
			CreatedAt:     tabular.ParseTimestamp(r.CreatedAt),
		}
		if e.ID == "" && e.ItemName == "" {
			continue
		}
		entries = append(entries, e)
	}
	if len(entries) > 0 {
		if err := s.writeEntries(sheets.Stamp(entries, s.now())); err != nil {
			return res, err
		}
	}
	res.Entries = len(entries)

	records, err = readLegacy(filepath.Join(legacyDir, LegacyAlertsFile))
	if err != nil {
		return res, err
	}
	alerts := make([]core.Alert, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		alerts = append(alerts, core.Alert{
			ID:         r.ID,
			EntryID:    r.EntryID,
			FoodType:   core.FoodType(r.FoodType),
			ItemName:   r.ItemName,
			Quantity:   core.ParseQuantity(r.Quantity),
			Unit:       r.Unit,
			ExpiryDate: mapper.ParseCellDate(r.ExpiryDate),
			Donor:      r.Donor,
			Message:    r.Message,
			CreatedAt:  tabular.ParseTimestamp(r.CreatedAt),
		})
	}
	if len(alerts) > 0 {
		payload, err := tabular.EncodeAlerts(alerts)
		if err != nil {
			return res, fmt.Errorf("encode alerts: %w", err)
		}
		if err := writeAtomic(s.alertsPath, payload); err != nil {
			return res, err
		}
	}
	res.Alerts = len(alerts)

	if res.Entries > 0 || res.Alerts > 0 {
		s.logger.InfoContext(ctx, "Legacy JSON migrated", log.FieldOperation, log.OpMigrate,
			"entries", res.Entries, "alerts", res.Alerts)
	}
	return res, nil
}

// readLegacy decodes a JSON array file. A missing file is an empty list.
func readLegacy(path string) ([]legacyRecord, error) {
	payload, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []legacyRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}
