// Package dbtime converts between the DB Timetables API's local civil time
// encoding and absolute instants. The API works in German local time with no
// timezone indicator, so every cache key and eviction threshold in the rest
// of the system is derived through this package rather than ad hoc.
package dbtime

import (
	"fmt"
	"time"
)

// Location is the timetable provider's home timezone.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Berlin")
	if err != nil {
		panic(fmt.Errorf("failed to load Europe/Berlin timezone: %w", err))
	}
}

// ParseCompact parses the provider's compact local time encoding: a fixed
// ten-character yymmddHHMM string (the "pt" attribute). The moment is
// interpreted in the provider's timezone at the date described, so DST is
// handled at that date and not at call time. Returns false on malformed
// input.
func ParseCompact(s string) (time.Time, bool) {
	if len(s) != 10 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("0601021504", s, Location)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Civil is one civil hour slot: a wall-clock date and hour in the provider's
// timezone. It is the unit the plan endpoint serves documents for.
type Civil struct {
	Year  int
	Month time.Month
	Day   int
	Hour  int
}

// At returns the civil hour slot containing the given instant.
func At(t time.Time) Civil {
	lt := t.In(Location)
	return Civil{Year: lt.Year(), Month: lt.Month(), Day: lt.Day(), Hour: lt.Hour()}
}

// Start returns the absolute instant at which the slot's civil hour begins.
func (c Civil) Start() time.Time {
	return time.Date(c.Year, c.Month, c.Day, c.Hour, 0, 0, 0, Location)
}

// AddHours advances the slot by n hours, wrapping into following civil days.
func (c Civil) AddHours(n int) Civil {
	return At(c.Start().Add(time.Duration(n) * time.Hour))
}

// CompactDate renders the slot's date the way the plan URL wants it (yymmdd).
func (c Civil) CompactDate() string {
	return c.Start().Format("060102")
}

// Key builds the timetable cache key for a station and this slot.
func (c Civil) Key(eva string) string {
	return fmt.Sprintf("%s_%04d-%02d-%02d_%02d", eva, c.Year, int(c.Month), c.Day, c.Hour)
}

func (c Civil) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:00", c.Year, int(c.Month), c.Day, c.Hour)
}
