// Package calendar converts timestamps to calendar-day strings in a named
// timezone and does integer day arithmetic on them. Days are the unit of
// scheduling everywhere in this module; wall-clock times never leave this
// package.
package calendar

import "time"

// DateLayout is the calendar-day format used across the module. The format
// sorts lexicographically, so date strings compare with <= directly.
const DateLayout = "2006-01-02"

// nowFunc is swapped out by tests to pin the clock.
var nowFunc = time.Now

// Normalize validates an IANA timezone name. Returns the name unchanged when
// it resolves, "" otherwise.
func Normalize(tz string) string {
	if tz == "" {
		return ""
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return ""
	}
	return tz
}

// resolveLocation loads the named zone, silently falling back to the process
// local zone for empty or unknown names.
func resolveLocation(tz string) *time.Location {
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local
	}
	return loc
}

// Today returns the current calendar date in the given timezone.
func Today(tz string) string {
	return nowFunc().In(resolveLocation(tz)).Format(DateLayout)
}

// AddDays shifts a calendar date by n days (n may be negative). The
// arithmetic is anchored in UTC so DST transitions cannot shift the result.
// An unparseable date yields today.
func AddDays(date string, n int) string {
	parsed, err := time.ParseInLocation(DateLayout, date, time.UTC)
	if err != nil {
		return Today("")
	}
	return parsed.AddDate(0, 0, n).Format(DateLayout)
}

// IsDue reports whether a next-review date has arrived in the given
// timezone. An empty or unparseable date is always due.
func IsDue(date, tz string) bool {
	if date == "" {
		return true
	}
	if _, err := time.ParseInLocation(DateLayout, date, time.UTC); err != nil {
		return true
	}
	return date <= Today(tz)
}
