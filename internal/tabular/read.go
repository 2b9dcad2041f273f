package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptyPayload = errors.New("empty payload")
	ErrNoHeader     = errors.New("sheet has no header row")
)

var zipMagic = []byte("PK\x03\x04")

// ReadRows parses an uploaded workbook (xlsx) or CSV file into rows keyed by
// the first row's headers. Only the first sheet of a workbook is read.
// Blank rows and columns without a header are skipped; short rows are padded
// with empty values.
func ReadRows(payload []byte) ([]Row, error) {
	matrix, err := readMatrix(payload, "")
	if err != nil {
		return nil, err
	}
	return rowsFromMatrix(matrix)
}

// readMatrix returns the raw string cells of a workbook sheet or CSV file.
// An empty sheet name selects the first sheet.
func readMatrix(payload []byte, sheet string) ([][]string, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, ErrEmptyPayload
	}
	if bytes.HasPrefix(payload, zipMagic) {
		return readWorkbook(payload, sheet)
	}
	return readCSV(payload)
}

func readWorkbook(payload []byte, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	name := sheets[0]
	if sheet != "" {
		if idx, _ := f.GetSheetIndex(sheet); idx != -1 {
			name = sheet
		}
	}
	// Raw values keep date cells as serial numbers instead of the
	// workbook's display format.
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return rows, nil
}

func readCSV(payload []byte) ([][]string, error) {
	payload = bytes.TrimPrefix(payload, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(payload))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func rowsFromMatrix(matrix [][]string) ([]Row, error) {
	if len(matrix) == 0 {
		return nil, ErrNoHeader
	}
	headers := matrix[0]
	hasHeader := false
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			hasHeader = true
			break
		}
	}
	if !hasHeader {
		return nil, ErrNoHeader
	}

	out := make([]Row, 0, len(matrix)-1)
	for _, values := range matrix[1:] {
		if isBlank(values) {
			continue
		}
		row := make(Row, 0, len(headers))
		for i, h := range headers {
			if strings.TrimSpace(h) == "" {
				continue
			}
			row = append(row, Cell{Header: h, Value: safeGet(values, i)})
		}
		out = append(out, row)
	}
	return out, nil
}

// readTable decodes a stored sheet into records keyed by exact header.
func readTable(payload []byte, sheet string) ([]record, error) {
	matrix, err := readMatrix(payload, sheet)
	if err != nil {
		return nil, err
	}
	if len(matrix) == 0 {
		return nil, nil
	}
	headers := matrix[0]
	out := make([]record, 0, len(matrix)-1)
	for _, values := range matrix[1:] {
		if isBlank(values) {
			continue
		}
		rec := make(record, len(headers))
		for i, h := range headers {
			rec[strings.TrimSpace(h)] = safeGet(values, i)
		}
		out = append(out, rec)
	}
	return out, nil
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}
