package sportsdata

import (
	"fmt"
	"time"
)

var (
	itWeekdays = [...]string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"}
	itMonths   = [...]string{"gen", "feb", "mar", "apr", "mag", "giu", "lug", "ago", "set", "ott", "nov", "dic"}
)

// FormatTipoff renders a tip-off time in loc for the "en" or "it" locale.
// Unknown locales render as "en".
func FormatTipoff(t time.Time, loc *time.Location, locale string) string {
	lt := t.In(loc)
	if locale == "it" {
		return fmt.Sprintf("%s %d %s, %s", itWeekdays[lt.Weekday()], lt.Day(), itMonths[lt.Month()-1], lt.Format("15:04"))
	}
	return lt.Format("Mon Jan 2, 3:04 PM")
}
