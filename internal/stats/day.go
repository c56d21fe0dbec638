package stats

import (
	"time"

	"attendify/internal/model"
)

// AttendanceStats are plain counts over a flat list of entries.
type AttendanceStats struct {
	Total                int `json:"total"`
	Present              int `json:"present"`
	Absent               int `json:"absent"`
	Off                  int `json:"off"`
	AttendancePercentage int `json:"attendancePercentage"`
}

// Summarize counts entries by status. Off entries are left out of the
// percentage denominator.
func Summarize(entries []model.AttendanceEntry) AttendanceStats {
	st := AttendanceStats{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case model.Present:
			st.Present++
		case model.Absent:
			st.Absent++
		case model.Off:
			st.Off++
		}
	}
	st.AttendancePercentage = model.Percent(st.Present, st.Total-st.Off)
	return st
}

// DayStatus is the calendar marker for one date.
type DayStatus string

const (
	DayNone     DayStatus = "none"
	DayUnmarked DayStatus = "unmarked"
	DayOff      DayStatus = "off"
	DayPartial  DayStatus = "partial"
	DayPresent  DayStatus = "present"
)

// SlotsOn returns the timetable slots that fall on date's weekday.
func SlotsOn(timetable []model.TimetableEntry, date time.Time) []model.TimetableEntry {
	day := model.DayOf(date)
	out := []model.TimetableEntry{}
	for _, e := range timetable {
		if e.Day == day {
			out = append(out, e)
		}
	}
	return out
}

// EntriesOn returns the attendance entries recorded for date.
func EntriesOn(attendance []model.AttendanceEntry, date time.Time) []model.AttendanceEntry {
	d := model.FormatDate(date)
	out := []model.AttendanceEntry{}
	for _, a := range attendance {
		if a.Date == d {
			out = append(out, a)
		}
	}
	return out
}

// StatusForDay classifies a date for the calendar view.
func StatusForDay(timetable []model.TimetableEntry, attendance []model.AttendanceEntry, date time.Time) DayStatus {
	if len(SlotsOn(timetable, date)) == 0 {
		return DayNone
	}
	entries := EntriesOn(attendance, date)
	if len(entries) == 0 {
		return DayUnmarked
	}

	allOff, anyAbsent, anyPresent := true, false, false
	for _, a := range entries {
		switch a.Status {
		case model.Present:
			anyPresent = true
		case model.Absent:
			anyAbsent = true
		}
		if a.Status != model.Off {
			allOff = false
		}
	}
	switch {
	case allOff:
		return DayOff
	case anyAbsent:
		return DayPartial
	case anyPresent:
		return DayPresent
	default:
		return DayUnmarked
	}
}

// CurrentClass finds the slot in progress at now. Both ends are inclusive at
// minute resolution, so a class is still current during its last minute.
func CurrentClass(timetable []model.TimetableEntry, now time.Time) (model.TimetableEntry, bool) {
	day, clock := model.DayOf(now), model.ClockOf(now)
	for _, e := range timetable {
		if e.Day != day {
			continue
		}
		start, end, err := e.Interval()
		if err != nil {
			continue
		}
		if clock >= start && clock <= end {
			return e, true
		}
	}
	return model.TimetableEntry{}, false
}

// Conflicts returns the slots in existing that overlap candidate. An entry with
// the candidate's own id is skipped so an update does not clash with itself.
func Conflicts(existing []model.TimetableEntry, candidate model.TimetableEntry) []model.TimetableEntry {
	var out []model.TimetableEntry
	for _, e := range existing {
		if candidate.ID != "" && e.ID == candidate.ID {
			continue
		}
		if e.Overlaps(candidate) {
			out = append(out, e)
		}
	}
	return out
}
