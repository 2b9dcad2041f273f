package mapper

import (
	"math"
	"testing"
)

func TestSerialToDate(t *testing.T) {
	cases := []struct {
		serial float64
		want   string
	}{
		{45000, "2023-03-15"},
		{45000.75, "2023-03-15"},
		{25569, "1970-01-01"},
		{45292, "2024-01-01"},
		{0, ""},
		{-5, ""},
		{math.NaN(), ""},
		{math.Inf(1), ""},
		{1e15, ""},
	}
	for _, tc := range cases {
		if got := SerialToDate(tc.serial).String(); got != tc.want {
			t.Fatalf("serial %v: want %q got %q", tc.serial, tc.want, got)
		}
	}
}

func TestParseCellDate(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"2024-01-02", "2024-01-02"},
		{"2024-01-02T23:59:00.000Z", "2024-01-02"},
		{"45000", "2023-03-15"},
		{45000, "2023-03-15"},
		{int64(45000), "2023-03-15"},
		{"1/2/2024", "2024-01-02"},
		{"1/2/2024 10:15:00", "2024-01-02"},
		{"2024/1/2", "2024-01-02"},
		{"next tuesday", ""},
		{"", ""},
		{nil, ""},
		{true, ""},
	}
	for _, tc := range cases {
		if got := ParseCellDate(tc.in).String(); got != tc.want {
			t.Fatalf("%#v: want %q got %q", tc.in, tc.want, got)
		}
	}
}
