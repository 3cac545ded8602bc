// Package biztime provides utilities for business timezone calculations.
// All storage and transport use UTC. The business timezone is only used for
// calendar boundaries: which day a timestamp falls on, how many days remain
// until a membership ends, and month arithmetic.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "Asia/Kolkata"

	dateLayout = "2006-01-02"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to Asia/Kolkata.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone location.
// If not explicitly initialized, it initializes with the default timezone.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DateOf returns midnight of the business day t falls on, in the business timezone.
func DateOf(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, Location())
}

// StartOfDayUTC returns the start of the business day containing t, converted to UTC.
func StartOfDayUTC(t time.Time) time.Time {
	return DateOf(t).UTC()
}

// AddMonths adds n calendar months to t. When the day of month does not exist
// in the target month it is clamped to the month's last day, so Jan 31 + 1
// month is Feb 28 (or Feb 29 in a leap year) rather than early March.
// The clock time and location of t are preserved.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	last := DaysIn(firstOfTarget.Year(), firstOfTarget.Month())
	if d > last {
		d = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the number of whole business days from the day of
// `from` to the day of `to`. Time of day is ignored on both sides, so the
// result is stable for every instant within a calendar day. Negative when
// `to` falls on an earlier day.
func DaysBetween(from, to time.Time) int {
	f := DateOf(from)
	t := DateOf(to)
	// Compare civil dates in UTC so DST transitions cannot produce 23h/25h days.
	fu := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	tu := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(tu.Sub(fu).Hours() / 24)
}

// IsBeforeDay reports whether a falls on a strictly earlier business day than b.
func IsBeforeDay(a, b time.Time) bool {
	return DaysBetween(b, a) < 0
}

// ToBizTimezone converts a UTC time to business timezone for display.
func ToBizTimezone(t time.Time) time.Time {
	return t.In(Location())
}

// FormatDate formats t as YYYY-MM-DD in the business timezone.
func FormatDate(t time.Time) string {
	return t.In(Location()).Format(dateLayout)
}

// ParseDateInBizTimezone parses a date string (YYYY-MM-DD) as business timezone midnight,
// then returns the UTC equivalent.
func ParseDateInBizTimezone(dateStr string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, dateStr, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", dateStr, err)
	}
	return t.UTC(), nil
}
