// Package slate buckets timestamps into Eastern-time slate dates and Monday-based weeks.
package slate

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

const (
	// DateLayout is the only accepted wire format for dates.
	DateLayout = "2006-01-02"

	EasternZone = "America/New_York"
	// RomeZone is the default scheduler zone.
	RomeZone = "Europe/Rome"
)

// ErrInvalidDate is returned for anything that is not a real YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var eastern = mustLoad(EasternZone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %s: %v", name, err))
	}
	return loc
}

func Eastern() *time.Location { return eastern }

// ParseDate validates s against the strict pattern and the calendar.
// The result is midnight of that date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Format renders t as a date in its own location.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the Eastern slate date containing now.
func Today(now time.Time) string {
	return Format(now.In(eastern))
}

// DayWindow returns [start, end) of the calendar day date in loc.
func DayWindow(date string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 0, 1), nil
}

// WeekStart returns Monday 00:00 Eastern of the week containing t.
func WeekStart(t time.Time) time.Time {
	et := t.In(eastern)
	offset := (int(et.Weekday()) + 6) % 7
	y, m, d := et.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, eastern)
}

// ResolveWeekStart returns the Monday of the week named by raw. When raw is empty or invalid
// it falls back to the current week and reports fellBack=true for invalid input.
func ResolveWeekStart(raw string, now time.Time) (weekStart string, fellBack bool) {
	if raw == "" {
		return Format(WeekStart(now)), false
	}
	t, err := ParseDate(raw, eastern)
	if err != nil {
		return Format(WeekStart(now)), true
	}
	return Format(WeekStart(t)), false
}

// StrictWeekStart is ResolveWeekStart without the fallback: a malformed raw value is an error.
func StrictWeekStart(raw string, now time.Time) (string, error) {
	if raw == "" {
		return Format(WeekStart(now)), nil
	}
	t, err := ParseDate(raw, eastern)
	if err != nil {
		return "", err
	}
	return Format(WeekStart(t)), nil
}
