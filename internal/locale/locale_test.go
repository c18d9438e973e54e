package locale

import (
	"math"
	"testing"
	"time"
)

func TestParseNumber_Display(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1.234,56", 1234.56},
		{"0,75", 0.75},
		{"%42,15", 42.15},
		{"12.345.678,90", 12345678.90},
		{"57", 57},
	}
	for _, tc := range tests {
		got, err := ParseNumber(tc.input, StyleDisplay)
		if err != nil {
			t.Errorf("ParseNumber(%q) error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseNumber(%q) = %f, want %f", tc.input, got, tc.want)
		}
	}
}

func TestParseNumber_API(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1,234.56", 1234.56},
		{"0.123456", 0.123456},
		{"57", 57},
	}
	for _, tc := range tests {
		got, err := ParseNumber(tc.input, StyleAPI)
		if err != nil {
			t.Errorf("ParseNumber(%q) error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseNumber(%q) = %f, want %f", tc.input, got, tc.want)
		}
	}
}

func TestNumber_MalformedYieldsZero(t *testing.T) {
	for _, s := range []string{"", "-", "n/a", "abc", "12,34,56.78.9"} {
		got := Number(s, StyleDisplay)
		if got != 0 {
			t.Errorf("Number(%q) = %f, want 0", s, got)
		}
		if math.IsNaN(got) {
			t.Errorf("Number(%q) is NaN", s)
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		input any
		want  float64
	}{
		{float64(1.5), 1.5},
		{"2,5", 2.5}, // display comma decimal
		{nil, 0},
		{true, 0},
		{"garbage", 0},
	}
	for _, tc := range tests {
		if got := Coerce(tc.input, StyleDisplay); got != tc.want {
			t.Errorf("Coerce(%v) = %f, want %f", tc.input, got, tc.want)
		}
	}
}

func TestParseMonthNameDate(t *testing.T) {
	tests := []struct {
		input string
		year  int
		month time.Month
		day   int
	}{
		{"15 Ocak 2026", 2026, time.January, 15},
		{"3 Ağustos 2025", 2025, time.August, 3},
		{"3 Agustos 2025", 2025, time.August, 3}, // ASCII-folded variant
		{"30 aralık 2024", 2024, time.December, 30},
	}
	for _, tc := range tests {
		got, err := ParseMonthNameDate(tc.input)
		if err != nil {
			t.Errorf("ParseMonthNameDate(%q) error: %v", tc.input, err)
			continue
		}
		if got.Year() != tc.year || got.Month() != tc.month || got.Day() != tc.day {
			t.Errorf("ParseMonthNameDate(%q) = %v", tc.input, got)
		}
	}
}

func TestParseMonthNameDate_Invalid(t *testing.T) {
	if _, err := ParseMonthNameDate("15 Januar 2026"); err == nil {
		t.Error("expected error for non-Turkish month name")
	}
}

func TestParseDate(t *testing.T) {
	tests := []string{"15.01.2026", "15.01.2026 14:30", "15.01.2026 14:30:45"}
	for _, s := range tests {
		got, err := ParseDate(s)
		if err != nil {
			t.Errorf("ParseDate(%q) error: %v", s, err)
			continue
		}
		if got.Day() != 15 || got.Month() != time.January || got.Year() != 2026 {
			t.Errorf("ParseDate(%q) = %v", s, got)
		}
	}
	if _, err := ParseDate("2026-01-15"); err == nil {
		t.Error("expected error for ISO format")
	}
}

func TestUnixUnits(t *testing.T) {
	sec := UnixSeconds(1767225600)
	ms := UnixMillis(1767225600000)
	if !sec.Equal(ms) {
		t.Errorf("seconds and millis variants disagree: %v vs %v", sec, ms)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "15.01.2026" {
		t.Errorf("FormatDate = %q", got)
	}
}
