package engine

import (
	"time"

	"github.com/oscarsr96/fbm-optimizer/internal/domain"
)

// isoWeekday adapts Go's 0=Sunday..6=Saturday Weekday to the ISO
// 1=Monday..7=Sunday encoding Availability.DayOfWeek uses.
func isoWeekday(w time.Weekday) int {
	if w == time.Sunday {
		return 7
	}
	return int(w)
}

// mondayOf returns the Monday (YYYY-MM-DD) of t's ISO week, as a date
// truncated to midnight.
func mondayOf(t time.Time) time.Time {
	offset := int(time.Monday - t.Weekday())
	if offset > 0 {
		offset -= 7
	}
	d := t.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// matchDateTime parses a match's date/time. It returns ok=false on any
// unparseable input — callers must treat that as "availability not
// applicable" and consider the person available.
func matchDateTime(date, hhmm string) (t time.Time, hour int, ok bool) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, 0, false
	}
	tm, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, 0, false
	}
	full := time.Date(d.Year(), d.Month(), d.Day(), tm.Hour(), tm.Minute(), 0, 0, time.UTC)
	return full, tm.Hour(), true
}

// isAvailable reports whether person p is available for a match at the
// given parsed date/time. Persons with no windows are treated as
// universally available.
func isAvailable(p domain.Person, matchDate time.Time, matchHour int) bool {
	if len(p.Availabilities) == 0 {
		return true
	}
	dow := isoWeekday(matchDate.Weekday())
	for _, w := range p.Availabilities {
		if w.DayOfWeek != dow {
			continue
		}
		if w.WeekStart != "" {
			ws, err := time.Parse("2006-01-02", w.WeekStart)
			if err != nil || !ws.Equal(mondayOf(matchDate)) {
				continue
			}
		}
		if matchHour >= w.StartHour && matchHour < w.EndHour {
			return true
		}
	}
	return false
}
