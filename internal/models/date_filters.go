package models

import (
	"strings"
	"time"
)

// ParseDateFilter parses a calendar date from SearchFilters.
// Supported formats:
// - YYYY-MM-DD
// - MM/DD/YYYY
func ParseDateFilter(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if t, err := time.Parse("01/02/2006", value); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// FormatDateFilter re-encodes a filter date with the given layout, reporting
// false when the value is empty or unparseable.
func FormatDateFilter(value, layout string) (string, bool) {
	t, ok := ParseDateFilter(value)
	if !ok {
		return "", false
	}
	return t.Format(layout), true
}

// DateRange returns the inclusive [from, to] bounds of the filters. Zero
// times mean unbounded. to is moved to the last instant of its day.
func (f SearchFilters) DateRange() (from, to time.Time) {
	if t, ok := ParseDateFilter(f.DateFrom); ok {
		from = t
	}
	if t, ok := ParseDateFilter(f.DateTo); ok {
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to
}
