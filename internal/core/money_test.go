package core

import "testing"

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"1500", 150000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyUnits(t *testing.T) {
	if got := (Money{Cents: 123456}).Units(); got != 1234.56 {
		t.Fatalf("expected 1234.56, got %v", got)
	}
}

func TestRateFloat(t *testing.T) {
	if got := Rate(9200).Float(); got != 0.92 {
		t.Fatalf("expected 0.92, got %v", got)
	}
	if got := Rate(9200).String(); got != "0.9200" {
		t.Fatalf("expected 0.9200, got %q", got)
	}
}
