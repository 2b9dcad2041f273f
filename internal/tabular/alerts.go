package tabular

import "foodrescue/internal/core"

// EncodeAlerts writes the alert log, in the given order, to an "Alerts" sheet.
func EncodeAlerts(alerts []core.Alert) ([]byte, error) {
	rows := make([][]any, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []any{
			a.ID,
			a.EntryID,
			string(a.FoodType),
			a.ItemName,
			a.Quantity,
			a.Unit,
			a.ExpiryDate.String(),
			a.Donor,
			a.Message,
			FormatTimestamp(a.CreatedAt),
		})
	}
	return writeWorkbook(SheetAlerts, AlertHeaders, rows, map[string]float64{"I": 60, "J": 24})
}

// DecodeAlerts reads a workbook produced by EncodeAlerts, preserving order.
func DecodeAlerts(payload []byte) ([]core.Alert, error) {
	records, err := readTable(payload, SheetAlerts)
	if err != nil {
		return nil, err
	}
	out := make([]core.Alert, 0, len(records))
	for _, rec := range records {
		a := core.Alert{
			ID:        rec.field("Id"),
			EntryID:   rec.field("EntryId"),
			FoodType:  core.FoodType(rec.field("FoodType")),
			ItemName:  rec.field("ItemName"),
			Quantity:  core.ParseQuantity(rec.field("Quantity")),
			Unit:      rec.field("Unit"),
			Donor:     rec.get("Donor"),
			Message:   rec.get("Message"),
			CreatedAt: ParseTimestamp(rec.field("CreatedAt")),
		}
		if d, err := core.ParseDate(rec.field("ExpiryDate")); err == nil {
			a.ExpiryDate = d
		}
		if a.ID == "" {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
