package core

import (
	"fmt"
	"strings"
	"time"
)

// Timestamps in this system are naive wall-clock hours. They are parsed into
// time.UTC purely as a carrier and never converted between zones.

// Hour is the grid step of every series.
const Hour = time.Hour

// TimestampLayout is the canonical rendering of a naive timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05Z",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006.01.02 15:04",
	"1/2/06 15:04",
	"01-02-06 15:04",
	"2006-01-02",
}

// ParseNaiveTimestamp parses a wall-clock timestamp without zone information.
func ParseNaiveTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadTimestamp, s)
}

// IsOnHourGrid reports whether t has no minute, second or sub-second part.
func IsOnHourGrid(t time.Time) bool {
	return t.Equal(t.Truncate(Hour))
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// HourlyGrid returns every hour in [start, end] inclusive. It returns nil when end
// is before start.
func HourlyGrid(start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}
	n := int(end.Sub(start)/Hour) + 1
	grid := make([]time.Time, n)
	for i := range grid {
		grid[i] = start.Add(time.Duration(i) * Hour)
	}
	return grid
}

// HourSlots counts the hourly slots in [start, end) (half-open).
func HourSlots(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return int(end.Sub(start) / Hour)
}

// MonthStart returns midnight of the first day of t's calendar month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// NextMonthStart returns midnight of the first day of the month after t's.
func NextMonthStart(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, 0)
}
