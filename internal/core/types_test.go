package core

import (
	"errors"
	"testing"
	"time"
)

func TestQuote_WithDerivedChange(t *testing.T) {
	q := Quote{Symbol: "AKBNK", Last: 110, PrevClose: 100}.WithDerivedChange()
	if q.Change != 10 {
		t.Errorf("change = %f, want 10", q.Change)
	}
	if q.ChangePercent != 10 {
		t.Errorf("changePercent = %f, want 10", q.ChangePercent)
	}
}

func TestQuote_WithDerivedChange_ZeroPrevClose(t *testing.T) {
	q := Quote{Symbol: "AKBNK", Last: 110}.WithDerivedChange()
	if q.Change != 0 || q.ChangePercent != 0 {
		t.Errorf("expected zero change fields, got %f / %f", q.Change, q.ChangePercent)
	}
}

func TestSortBars_OrdersAndDedupes(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Time: t0.AddDate(0, 0, 2), Close: 3},
		{Time: t0, Close: 1},
		{Time: t0.AddDate(0, 0, 1), Close: 2},
		{Time: t0.AddDate(0, 0, 1), Close: 2.5}, // duplicate timestamp, later wins
	}

	got := SortBars(bars)
	if len(got) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(got))
	}
	for i := 0; i < len(got)-1; i++ {
		if !got[i].Time.Before(got[i+1].Time) {
			t.Errorf("bars not strictly ascending at %d", i)
		}
	}
	if got[1].Close != 2.5 {
		t.Errorf("duplicate not resolved to last value: %f", got[1].Close)
	}
}

func TestTrimBars(t *testing.T) {
	t0 := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Time: t0.AddDate(0, 0, -5)},
		{Time: t0},
		{Time: t0.AddDate(0, 0, 5)},
		{Time: t0.AddDate(0, 0, 10)},
	}

	got := TrimBars(bars, t0, t0.AddDate(0, 0, 5))
	if len(got) != 2 {
		t.Fatalf("expected 2 bars inside range, got %d", len(got))
	}
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input string
		want  Period
		ok    bool
	}{
		{"1y", Period1Y, true},
		{" YTD ", PeriodYTD, true},
		{"max", PeriodMax, true},
		{"99x", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		got, err := ParsePeriod(tc.input)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("ParsePeriod(%q) = %v, %v; want %v", tc.input, got, err, tc.want)
		}
		if !tc.ok {
			if !errors.Is(err, ErrInvalidPeriod) {
				t.Errorf("ParsePeriod(%q) error = %v, want InvalidPeriod", tc.input, err)
			}
			var e *Error
			if errors.As(err, &e) && len(e.Accepted) == 0 {
				t.Errorf("InvalidPeriod for %q carries no accepted tokens", tc.input)
			}
		}
	}
}

func TestPeriod_Days_YTD(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d, err := PeriodYTD.Days(end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 59 {
		t.Errorf("ytd days = %d, want 59", d)
	}
}

func TestHistoryOptions_Resolve(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("period derives start", func(t *testing.T) {
		start, end, iv, err := HistoryOptions{Period: Period1Mo}.Resolve(now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !end.Equal(now) {
			t.Errorf("end = %v, want now", end)
		}
		if !start.Equal(now.AddDate(0, 0, -30)) {
			t.Errorf("start = %v, want now-30d", start)
		}
		if iv != Interval1d {
			t.Errorf("interval = %v, want 1d default", iv)
		}
	})

	t.Run("explicit start wins over period", func(t *testing.T) {
		explicit := now.AddDate(0, 0, -3)
		start, _, _, err := HistoryOptions{Period: Period1Y, Start: explicit}.Resolve(now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !start.Equal(explicit) {
			t.Errorf("start = %v, want explicit %v", start, explicit)
		}
	})

	t.Run("invalid interval rejected", func(t *testing.T) {
		_, _, _, err := HistoryOptions{Interval: "7q"}.Resolve(now)
		if !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("error = %v, want InvalidInterval", err)
		}
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		_, _, _, err := HistoryOptions{Start: now.AddDate(0, 0, 1), End: now}.Resolve(now)
		if err == nil {
			t.Error("expected error for start after end")
		}
	})
}

func TestNormalizeSymbol(t *testing.T) {
	if got := NormalizeSymbol("  akbnk "); got != "AKBNK" {
		t.Errorf("NormalizeSymbol = %q, want AKBNK", got)
	}
}
