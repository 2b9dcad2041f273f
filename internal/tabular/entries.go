package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"foodrescue/internal/core"
)

// EncodeEntries writes entries to an xlsx workbook with a single "Entries"
// sheet in canonical column order.
func EncodeEntries(entries []core.Entry) ([]byte, error) {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, entryCells(e))
	}
	return writeWorkbook(SheetEntries, Headers, rows, map[string]float64{
		"C": 28, "F": 12, "I": 40, "J": 24,
	})
}

// DecodeEntries reads a workbook produced by EncodeEntries. The "Entries"
// sheet is preferred, the first sheet is used otherwise. Rows with neither
// an ID nor an item name are dropped.
func DecodeEntries(payload []byte) ([]core.Entry, error) {
	records, err := readTable(payload, SheetEntries)
	if err != nil {
		return nil, err
	}
	out := make([]core.Entry, 0, len(records))
	for _, rec := range records {
		e := entryFromRecord(rec)
		if e.ID == "" && e.ItemName == "" {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// EncodeEntriesCSV writes entries as CSV in canonical column order.
func EncodeEntriesCSV(entries []core.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		if err := w.Write(entryStrings(e)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func entryCells(e core.Entry) []any {
	return []any{
		e.ID,
		string(e.FoodType),
		e.ItemName,
		e.Quantity,
		e.Unit,
		e.ExpiryDate.String(),
		e.Donor,
		e.VolunteerName,
		e.Notes,
		FormatTimestamp(e.CreatedAt),
	}
}

func entryStrings(e core.Entry) []string {
	return []string{
		e.ID,
		string(e.FoodType),
		e.ItemName,
		core.FormatQuantity(e.Quantity),
		e.Unit,
		e.ExpiryDate.String(),
		e.Donor,
		e.VolunteerName,
		e.Notes,
		FormatTimestamp(e.CreatedAt),
	}
}

func entryFromRecord(rec record) core.Entry {
	e := core.Entry{
		ID:            rec.field("Id"),
		FoodType:      core.FoodType(rec.field("FoodType")),
		ItemName:      rec.field("ItemName"),
		Quantity:      core.ParseQuantity(rec.field("Quantity")),
		Unit:          rec.field("Unit"),
		Donor:         rec.get("Donor"),
		VolunteerName: rec.get("VolunteerName"),
		Notes:         rec.get("Notes"),
		CreatedAt:     ParseTimestamp(rec.field("CreatedAt")),
	}
	if d, err := core.ParseDate(rec.field("ExpiryDate")); err == nil {
		e.ExpiryDate = d
	}
	if e.FoodType == "" {
		e.FoodType = core.Other
	}
	if e.Unit == "" {
		e.Unit = core.DefaultUnit
	}
	return e
}

// writeWorkbook builds a single-sheet workbook. widths maps column letters
// to display widths.
func writeWorkbook(sheet string, headers []string, rows [][]any, widths map[string]float64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	for col, w := range widths {
		_ = f.SetColWidth(sheet, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
