package orgtime

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Zone is the organization-local time zone used for all day-boundary
// decisions and human-facing timestamps.
//
// Rules:
// - Storage stays in UTC instants; Zone only affects interpretation.
// - Business logic receives a Zone value; it must never parse raw offset
//   strings or hardcode an offset.
type Zone struct {
	loc *time.Location
}

// DefaultOffset is the organization offset used when none is configured
// (America/Bogota, no DST).
const DefaultOffset = "-05:00"

// NewZone builds a Zone from a fixed UTC offset of the form "+HH:MM" or "-HH:MM".
func NewZone(offset string) (Zone, error) {
	if offset == "" {
		offset = DefaultOffset
	}
	if len(offset) != 6 || (offset[0] != '+' && offset[0] != '-') || offset[3] != ':' {
		return Zone{}, fmt.Errorf("orgtime: invalid offset %q", offset)
	}
	hh, errH := strconv.Atoi(offset[1:3])
	mm, errM := strconv.Atoi(offset[4:6])
	if errH != nil || errM != nil || hh > 14 || mm > 59 {
		return Zone{}, fmt.Errorf("orgtime: invalid offset %q", offset)
	}
	sec := hh*3600 + mm*60
	if offset[0] == '-' {
		sec = -sec
	}
	return Zone{loc: time.FixedZone("UTC"+offset, sec)}, nil
}

// MustZone is NewZone for test fixtures and defaults; panics on bad input.
func MustZone(offset string) Zone {
	z, err := NewZone(offset)
	if err != nil {
		panic(err)
	}
	return z
}

// Location exposes the underlying *time.Location for formatting.
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// DayOf returns the organization-local calendar date of t, normalized to
// midnight local time. Comparable with Equal/Before/After.
func (z Zone) DayOf(t time.Time) time.Time {
	lt := t.In(z.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, z.Location())
}

// SameDay reports whether a and b fall on the same organization-local date.
func (z Zone) SameDay(a, b time.Time) bool {
	return z.DayOf(a).Equal(z.DayOf(b))
}

// EndOfDay returns 23:59:59 organization-local time on t's date.
// This is the policy instant used for auto-closing stale check-ins; it is an
// approximation, not a measured exit time.
func (z Zone) EndOfDay(t time.Time) time.Time {
	lt := t.In(z.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 23, 59, 59, 0, z.Location())
}

// CombineClock keeps base's organization-local date and replaces the
// time-of-day with hour/minute. Seconds and below are zeroed.
func (z Zone) CombineClock(base time.Time, hour, minute int) time.Time {
	lt := base.In(z.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), hour, minute, 0, 0, z.Location())
}

// FormatLocal renders t as an organization-local timestamp for display.
func (z Zone) FormatLocal(t time.Time) string {
	return t.In(z.Location()).Format("2006-01-02 15:04:05")
}

// FormatClock renders just the organization-local time-of-day.
func (z Zone) FormatClock(t time.Time) string {
	return t.In(z.Location()).Format("15:04")
}

var errBadClock = errors.New("orgtime: clock must be HH:MM in 24-hour form")

// ParseClock parses a 24-hour "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, errBadClock
	}
	hour, errH := strconv.Atoi(s[0:2])
	minute, errM := strconv.Atoi(s[3:5])
	if errH != nil || errM != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, errBadClock
	}
	return hour, minute, nil
}
