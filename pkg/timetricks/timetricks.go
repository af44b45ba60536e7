package timetricks

import (
	"time"
)

const (
	dayFormat   = "20060102"
	shortFormat = "01/02"
	weekAhead   = 7 * 24 * time.Hour
)

func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(dayFormat) == t2.In(t.Location()).Format(dayFormat)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBounds returns midnight at the start and end of t's calendar day. The
// day may not be 24 hours long across a daylight saving change.
func DayBounds(t time.Time) (start, end time.Time) {
	start = StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

func SetClock(t time.Time, hour, minute time.Duration) time.Time {
	return StartOfDay(t).Add(hour*time.Hour + minute*time.Minute)
}

// NearestMinute rounds t to the closest whole minute.
func NearestMinute(t time.Time) time.Time {
	return t.Add(30 * time.Second).Truncate(time.Minute)
}

// ParseDay parses a YYYY-MM-DD date as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}

// Day names t's calendar day relative to now: "today", "tomorrow", a weekday
// name within the coming week, or a short date.
func Day(t, now time.Time) string {
	now = now.In(t.Location())
	switch {
	case SameDay(t, now):
		return "today"
	case SameDay(t, now.AddDate(0, 0, 1)):
		return "tomorrow"
	case t.After(now) && t.Before(StartOfDay(now).Add(weekAhead)):
		return t.Weekday().String()
	default:
		return t.Format(shortFormat)
	}
}

// UniqueDay returns a string representation of t that is unique by the day.
// For instance, two seperate times on the same calendar day return identical
// strings.
func UniqueDay(t time.Time) string {
	return t.Format(dayFormat)
}
