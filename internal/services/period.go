package services

import (
	"fmt"
	"regexp"
	"time"
)

var periodRe = regexp.MustCompile(`^(\d{4})-(0[1-9]|1[0-2])$`)

// ParsePeriod resolves a YYYY-MM key to the UTC bounds of that calendar month.
// The end bound is the last whole second of the month, matching the inclusive
// overlap test used when summing subscriptions.
func ParsePeriod(period string) (time.Time, time.Time, error) {
	if !periodRe.MatchString(period) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	start, err := time.ParseInLocation("2006-01", period, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end, nil
}

// PeriodOf returns the period key containing t, normalized to UTC.
func PeriodOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// PreviousPeriod returns the period key for the calendar month before t.
func PreviousPeriod(t time.Time) string {
	t = t.UTC()
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 0, -1).Format("2006-01")
}
