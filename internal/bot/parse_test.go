package bot

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3000000", 3_000_000, true},
		{"3 000 000", 3_000_000, true},
		{"3'000'000 soum", 3_000_000, true},
		{"  12,500 ", 12_500, true},
		{"1.000.000", 1_000_000, true},
		{"3.5", 0, false},
		{"3,5 mln", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseAmount(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseMonths(t *testing.T) {
	if n, ok := parseMonths("18 months"); !ok || n != 18 {
		t.Errorf("parseMonths = %d, %v", n, ok)
	}
	if _, ok := parseMonths("soon"); ok {
		t.Error("expected failure for non-numeric term")
	}
}

func TestParseRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"48", 48, true},
		{"48.5", 48.5, true},
		{"48,5%", 48.5, true},
		{"rate", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseRate(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseRate(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseYear(t *testing.T) {
	if y, ok := parseYear("2015"); !ok || y != 2015 {
		t.Errorf("parseYear = %d, %v", y, ok)
	}
	if _, ok := parseYear("15"); ok {
		t.Error("expected failure for two-digit year")
	}
	if _, ok := parseYear("3015"); ok {
		t.Error("expected failure for out-of-range year")
	}
}
