// Package timekey converts timestamps into the calendar keys the rest of the
// app schedules against: YYYY-MM-DD day keys and 0-23 hour indexes, always
// computed in an explicit timezone so keys stay stable across locales.
package timekey

import (
	"fmt"
	"time"
)

const dayKeyLayout = "2006-01-02"

// InvalidDayKeyError reports a day key that does not parse to a calendar date.
type InvalidDayKeyError struct {
	Key string
}

func (e InvalidDayKeyError) Error() string {
	return fmt.Sprintf("invalid day key: %q", e.Key)
}

// DayKey formats t as YYYY-MM-DD in the given location.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayKeyLayout)
}

// ParseDayKey parses a YYYY-MM-DD key into the midnight of that day in loc.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, InvalidDayKeyError{Key: key}
	}
	// time.Parse accepts some non-canonical forms; require a round trip.
	if t.Format(dayKeyLayout) != key {
		return time.Time{}, InvalidDayKeyError{Key: key}
	}
	return t, nil
}

// Weekday returns the 1-7 weekday number (Sunday=1) for a day key.
func Weekday(key string) (int, error) {
	t, err := ParseDayKey(key, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()) + 1, nil
}

// HourIndex returns the 0-23 hour of t in loc.
func HourIndex(t time.Time, loc *time.Location) int {
	return t.In(loc).Hour()
}

// CappedNextSlot bounds timeline windows to a single day: min(23, current hour).
func CappedNextSlot(now time.Time, loc *time.Location) int {
	h := HourIndex(now, loc)
	if h > 23 {
		return 23
	}
	return h
}

// NextHourBoundary returns the first top-of-hour strictly after the input.
// It advances past the largest expected DST shift (90 minutes), snaps to a
// top-of-hour, then walks back hour by hour to the earliest boundary still
// after the input. Spring-forward gaps are skipped; in a fall-back fold the
// walk happens on the absolute timeline so the first occurrence wins.
func NextHourBoundary(after time.Time, loc *time.Location) time.Time {
	t := after.In(loc)
	ahead := t.Add(90 * time.Minute).In(loc)
	boundary := time.Date(ahead.Year(), ahead.Month(), ahead.Day(), ahead.Hour(), 0, 0, 0, loc)
	for {
		prev := boundary.Add(-time.Hour)
		if !prev.After(t) {
			break
		}
		boundary = prev
	}
	return boundary
}

// EffectiveDayKey resolves "today" for scheduling purposes. With a reset time
// configured, times before it still belong to the previous calendar day, so a
// 01:30 session with a 04:00 reset counts toward yesterday.
func EffectiveDayKey(now time.Time, loc *time.Location, resetHour, resetMinute int, hasReset bool) string {
	t := now.In(loc)
	if !hasReset {
		return t.Format(dayKeyLayout)
	}
	if t.Hour() < resetHour || (t.Hour() == resetHour && t.Minute() < resetMinute) {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format(dayKeyLayout)
}

// DueAt returns the absolute due timestamp of a time-of-day on a keyed day.
func DueAt(dayKey string, hour, minute int, loc *time.Location) (time.Time, error) {
	day, err := ParseDayKey(dayKey, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}
