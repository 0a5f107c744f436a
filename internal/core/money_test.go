package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in     string
		symbol string
		out    string
	}{
		{"120", "₹", "₹120.00"},
		{"120.5", "₹", "₹120.50"},
		{"0.005", "€", "€0.01"},
		{"-3.456", "€", "€-3.46"},
		{"-3.456", "₹", "₹-3.46"},
		{"0", "$", "$0.00"},
	}
	for _, tc := range cases {
		got := FormatAmount(decimal.RequireFromString(tc.in), tc.symbol)
		if got != tc.out {
			t.Fatalf("%s expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestFloatsAndSum(t *testing.T) {
	ds := []decimal.Decimal{decimal.NewFromInt(1), decimal.RequireFromString("2.5")}
	fs := Floats(ds)
	if len(fs) != 2 || fs[0] != 1 || fs[1] != 2.5 {
		t.Fatalf("Floats = %v", fs)
	}
	if got := Sum(ds).String(); got != "3.5" {
		t.Fatalf("Sum = %s", got)
	}
}
