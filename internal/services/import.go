package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"foodrescue/internal/core"
	"foodrescue/internal/log"
	"foodrescue/internal/mapper"
	"foodrescue/internal/sheets"
	"foodrescue/internal/tabular"
)

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Rows     int // data rows read from the payload
	Accepted int
	Replaced bool
	Entries  []core.Entry
}

// Import maps an uploaded workbook or CSV and stores the resulting entries,
// appending or, with replace, swapping out everything stored. When no row
// maps to an entry ErrNoValidRows is returned and the store is untouched.
func (s *RescueService) Import(ctx context.Context, payload []byte, replace bool) (ImportResult, error) {
	rows, err := tabular.ReadRows(payload)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrUnreadableImport, err)
	}
	return s.ImportRows(ctx, rows, replace)
}

// ImportFrom pulls rows from an external sheet and imports them.
func (s *RescueService) ImportFrom(ctx context.Context, src sheets.RowSource, replace bool) (ImportResult, error) {
	rows, err := src.ReadRows(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read source: %w", err)
	}
	return s.ImportRows(ctx, rows, replace)
}

// ImportRows stores the entries mapped from already parsed rows.
func (s *RescueService) ImportRows(ctx context.Context, rows []tabular.Row, replace bool) (ImportResult, error) {
	drafts := slices.Collect(mapper.MapRows(rows))
	if len(drafts) == 0 {
		return ImportResult{Rows: len(rows)}, ErrNoValidRows
	}

	var (
		stored []core.Entry
		err    error
	)
	if replace {
		stored, err = s.store.ReplaceAll(ctx, drafts)
	} else {
		stored, err = s.store.Append(ctx, drafts)
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("save imported entries: %w", err)
	}

	s.logger.InfoContext(ctx, "Import completed",
		log.FieldOperation, log.OpImport, "rows", len(rows), "accepted", len(stored), "replace", replace)
	return ImportResult{Rows: len(rows), Accepted: len(stored), Replaced: replace, Entries: stored}, nil
}

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
)

// ParseExportFormat accepts "xlsx", "csv" or empty (xlsx).
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// Export is an encoded snapshot of every stored entry.
type Export struct {
	Payload     []byte
	ContentType string
	Filename    string
}

// Export encodes the stored entries in the canonical column order.
func (s *RescueService) Export(ctx context.Context, format ExportFormat) (Export, error) {
	entries, err := s.store.LoadAll(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("load entries: %w", err)
	}
	stamp := s.now().UTC().Format("2006-01-02")

	switch format {
	case FormatCSV:
		payload, err := tabular.EncodeEntriesCSV(entries)
		if err != nil {
			return Export{}, fmt.Errorf("encode csv: %w", err)
		}
		return Export{Payload: payload, ContentType: "text/csv; charset=utf-8",
			Filename: "food-rescue-entries-" + stamp + ".csv"}, nil
	case FormatXLSX, "":
		payload, err := tabular.EncodeEntries(entries)
		if err != nil {
			return Export{}, fmt.Errorf("encode workbook: %w", err)
		}
		return Export{Payload: payload, ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename: "food-rescue-entries-" + stamp + ".xlsx"}, nil
	}
	return Export{}, fmt.Errorf("unsupported export format %q", format)
}
