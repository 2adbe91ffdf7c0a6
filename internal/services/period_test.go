package services

import (
	"errors"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	start, end, err := ParsePeriod("2025-03")
	if err != nil {
		t.Fatalf("ParsePeriod: %v", err)
	}
	wantStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Fatalf("end = %v, want %v", end, wantEnd)
	}
}

func TestParsePeriodDecember(t *testing.T) {
	_, end, err := ParsePeriod("2025-12")
	if err != nil {
		t.Fatalf("ParsePeriod: %v", err)
	}
	want := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	if !end.Equal(want) {
		t.Fatalf("end = %v, want %v", end, want)
	}
}

func TestParsePeriodInvalid(t *testing.T) {
	for _, period := range []string{"", "2025", "2025-13", "2025-00", "2025-3", "03-2025", "2025-03-01", "garbage"} {
		if _, _, err := ParsePeriod(period); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("ParsePeriod(%q) err = %v, want ErrInvalidPeriod", period, err)
		}
	}
}

func TestPeriodOf(t *testing.T) {
	// 2025-04-01 00:30 in UTC+2 is still March in UTC.
	loc := time.FixedZone("UTC+2", 2*3600)
	got := PeriodOf(time.Date(2025, 4, 1, 0, 30, 0, 0, loc))
	if got != "2025-03" {
		t.Fatalf("PeriodOf = %q, want 2025-03", got)
	}
}

func TestPreviousPeriod(t *testing.T) {
	got := PreviousPeriod(time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC))
	if got != "2025-02" {
		t.Fatalf("PreviousPeriod = %q, want 2025-02", got)
	}

	// Year rollover.
	got = PreviousPeriod(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if got != "2024-12" {
		t.Fatalf("PreviousPeriod = %q, want 2024-12", got)
	}
}
