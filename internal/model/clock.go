package model

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the persisted calendar date format.
	DateLayout = "2006-01-02"
	// ClockLayout is the persisted time-of-day format (24-hour).
	ClockLayout = "15:04"
)

// Day is a day of the week as stored on timetable entries.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Week lists days in timetable order, Monday first.
var Week = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Valid reports whether d names a day of the week.
func (d Day) Valid() bool {
	for _, w := range Week {
		if d == w {
			return true
		}
	}
	return false
}

// DayOf returns the weekday of t.
func DayOf(t time.Time) Day {
	return Day(t.Weekday().String())
}

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses a strict "HH:MM" 24-hour string.
func ParseClock(s string) (Clock, error) {
	if len(s) != len(ClockLayout) {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidInput, s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrInvalidInput, s)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// ClockOf returns the time of day of t, truncated to the minute.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ParseDate parses a "YYYY-MM-DD" date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return t, nil
}

// FormatDate renders t as "YYYY-MM-DD".
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
