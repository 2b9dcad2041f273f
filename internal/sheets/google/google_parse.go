package google

import (
	"fmt"
	"strings"

	"foodrescue/internal/tabular"
)

// rowsFromValues converts a values matrix (as returned by Sheets API) into
// rows keyed by the header row. The API omits trailing empty cells, so short
// rows are padded with empty strings. Blank rows are skipped.
func rowsFromValues(values [][]interface{}) ([]tabular.Row, error) {
	if len(values) == 0 {
		return nil, tabular.ErrNoHeader
	}
	headers := toStrings(values[0])
	hasHeader := false
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			hasHeader = true
			break
		}
	}
	if !hasHeader {
		return nil, tabular.ErrNoHeader
	}

	out := make([]tabular.Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		if isBlankRow(raw) {
			continue
		}
		row := make(tabular.Row, 0, len(headers))
		for i, h := range headers {
			if strings.TrimSpace(h) == "" {
				continue
			}
			var v any = ""
			if i < len(raw) && raw[i] != nil {
				v = raw[i]
			}
			row = append(row, tabular.Cell{Header: h, Value: v})
		}
		out = append(out, row)
	}
	return out, nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func isBlankRow(row []interface{}) bool {
	for _, v := range row {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return false
	}
	return true
}
