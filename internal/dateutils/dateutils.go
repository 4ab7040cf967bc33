// Package dateutils provides locale-tolerant date parsing and the calendar
// period helpers used by insights and budget calculations.
package dateutils

import (
	"regexp"
	"strings"
	"time"
)

// Layouts tried in order by ParseDate. Day-first formats come before
// US month-first ones because most bank exports this tool sees are
// European-style.
var statementLayouts = []string{
	"02.01.2006 15:04",
	"02.01.2006",
	"01/02/2006",
	"2006-01-02",
	"02/01/2006",
	"01-02-2006",
	"2006/01/02",
}

// fallbackLayouts cover free-form timestamps that show up in exports when a
// bank includes full ISO timestamps instead of plain dates.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDate attempts each known layout in order and reports no-match rather
// than an error: callers treat unparseable dates as "skip this row".
func ParseDate(dateStr string) (time.Time, bool) {
	cleaned := CleanDateString(dateStr)
	if cleaned == "" {
		return time.Time{}, false
	}

	for _, layout := range statementLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// Midnight truncates a timestamp to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// StartOfWeek returns the Monday midnight of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	day := Midnight(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// EndOfWeek returns the last instant of the Sunday of the week containing t.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// StartOfMonth returns the first day of the month of t, at midnight.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last instant of the month of t.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}
