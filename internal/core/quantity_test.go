package core

import (
	"math"
	"testing"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in  any
		out float64
	}{
		{"1", 1},
		{"12.5", 12.5},
		{"12,5", 0},
		{"1,500", 0},
		{"2,000", 0},
		{"1,500.5", 0},
		{"1500", 1500},
		{" 40 ", 40},
		{40, 40},
		{int64(7), 7},
		{2.25, 2.25},
		{"", 0},
		{nil, 0},
		{"lots", 0},
		{"-3", 0},
		{-3.0, 0},
		{math.NaN(), 0},
		{true, 0},
	}
	for _, tc := range cases {
		if got := ParseQuantity(tc.in); got != tc.out {
			t.Fatalf("%#v expected %v, got %v", tc.in, tc.out, got)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(12.5); got != "12.5" {
		t.Fatalf("got %q", got)
	}
	if got := FormatQuantity(700); got != "700" {
		t.Fatalf("got %q", got)
	}
}
