// Package schedule implements the date parsing and lifecycle rules for
// events: when an event is over, and how the collection is ordered. The
// package has no I/O and never reads the wall clock; callers pass "now"
// explicitly.
package schedule

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pvsaraivar/Planilha-festas/internal/event"
)

// ParseLocalDate parses the sheet's "D/M/YYYY" or "DD/MM/YYYY" date form
// at midnight in loc. Trailing time text after the first space is
// ignored. Anything that does not split into three numeric components
// reports false.
func ParseLocalDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}

	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// ParseClock parses an "HH:MM" or bare "HH" time-of-day value. A trailing
// "h" suffix, as typed by sheet editors, is tolerated.
func ParseClock(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "h"))
	if s == "" {
		return 0, 0, false
	}

	hh, mm, hasMinute := strings.Cut(s, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	if hasMinute {
		minute, err = strconv.Atoi(strings.TrimSpace(mm))
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}

// EffectiveEnd computes the instant an event is considered finished. With
// an end time, that time on the event's date; the end date rolls forward
// one day when the end hour is before the start hour, or, without a start
// time, when the end hour is before noon (an early-morning end implies
// past midnight). Without an end time the event lasts through
// 23:59:59.999 local. Reports false when the event has no parseable date.
func EffectiveEnd(ev event.Event, loc *time.Location) (time.Time, bool) {
	date, ok := ParseLocalDate(ev.Date, loc)
	if !ok {
		return time.Time{}, false
	}

	endHour, endMinute, hasEnd := ParseClock(ev.EndTime)
	if !hasEnd {
		return time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 999e6, loc), true
	}

	end := time.Date(date.Year(), date.Month(), date.Day(), endHour, endMinute, 0, 0, loc)

	startHour, _, hasStart := ParseClock(ev.StartTime)
	overnight := (hasStart && endHour < startHour) || (!hasStart && endHour < 12)
	if overnight {
		end = end.AddDate(0, 0, 1)
	}
	return end, true
}

// IsOver reports whether the event is finished at the given instant.
// Events without a parseable date are conservatively treated as over.
// The event date is interpreted in now's location.
func IsOver(ev event.Event, now time.Time) bool {
	end, ok := EffectiveEnd(ev, now.Location())
	if !ok {
		return true
	}
	return now.After(end)
}

// SameDay reports whether the event falls on the given calendar date,
// ignoring any time text.
func SameDay(ev event.Event, date time.Time) bool {
	d, ok := ParseLocalDate(ev.Date, date.Location())
	if !ok {
		return false
	}
	return d.Year() == date.Year() && d.Month() == date.Month() && d.Day() == date.Day()
}

// Compare orders two events ascending by parsed date. Events with an
// unparseable date sort after all dated events. Equal dates compare as 0;
// ties keep their input order when used with a stable sort.
func Compare(a, b event.Event, loc *time.Location) int {
	da, okA := ParseLocalDate(a.Date, loc)
	db, okB := ParseLocalDate(b.Date, loc)

	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	case da.Before(db):
		return -1
	case db.Before(da):
		return 1
	}
	return 0
}

// Sort orders events in place, ascending by date with undated events
// last. The sort is stable.
func Sort(events []event.Event, loc *time.Location) {
	sort.SliceStable(events, func(i, j int) bool {
		return Compare(events[i], events[j], loc) < 0
	})
}
