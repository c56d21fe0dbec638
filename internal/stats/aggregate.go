// Package stats derives attendance statistics and rule-based predictions from
// a snapshot of one owner's subjects, timetable and attendance. Every function
// here is pure: the same snapshot and clock always give the same result.
package stats

import (
	"time"

	"attendify/internal/model"
)

// SubjectWithAttendance is a subject joined with its live attendance figures.
// Percentage, TotalClasses and AttendedClasses on the embedded Subject carry
// the live values, not the persisted baseline.
type SubjectWithAttendance struct {
	model.Subject
	AttendanceEntries          []model.AttendanceEntry `json:"attendanceEntries"`
	TotalScheduledClasses      int                     `json:"totalScheduledClasses"`
	PresentClasses             int                     `json:"presentClasses"`
	AbsentClasses              int                     `json:"absentClasses"`
	OffClasses                 int                     `json:"offClasses"`
	ActualAttendancePercentage int                     `json:"actualAttendancePercentage"`
}

// WeeksPassed is the number of whole weeks since January 1 of now's year.
func WeeksPassed(now time.Time) int {
	return (now.YearDay() - 1) / 7
}

// Aggregate folds the timetable and attendance of each subject into live
// statistics. Output order follows subjects.
//
// Scheduled classes are estimated as one occurrence of every weekly slot per
// elapsed week of the calendar year; holidays and term boundaries are not
// modelled beyond entries marked off.
func Aggregate(subjects []model.Subject, timetable []model.TimetableEntry, attendance []model.AttendanceEntry, now time.Time) []SubjectWithAttendance {
	weeks := WeeksPassed(now)

	slots := make(map[string]int, len(subjects))
	for _, e := range timetable {
		slots[e.SubjectID]++
	}
	entries := make(map[string][]model.AttendanceEntry, len(subjects))
	for _, a := range attendance {
		entries[a.SubjectID] = append(entries[a.SubjectID], a)
	}

	out := make([]SubjectWithAttendance, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, aggregateSubject(s, slots[s.ID], entries[s.ID], weeks))
	}
	return out
}

func aggregateSubject(s model.Subject, slots int, entries []model.AttendanceEntry, weeks int) SubjectWithAttendance {
	if entries == nil {
		entries = []model.AttendanceEntry{}
	}
	res := SubjectWithAttendance{
		Subject:               s,
		AttendanceEntries:     entries,
		TotalScheduledClasses: slots * weeks,
	}
	for _, a := range entries {
		switch a.Status {
		case model.Present:
			res.PresentClasses++
		case model.Absent:
			res.AbsentClasses++
		case model.Off:
			res.OffClasses++
		}
	}

	// Manual entries can outrun the timetable estimate, so attendable may be
	// zero or negative; both mean nothing to measure against.
	attendable := res.TotalScheduledClasses - res.OffClasses
	res.ActualAttendancePercentage = model.Percent(res.PresentClasses, attendable)

	res.Percentage = res.ActualAttendancePercentage
	res.TotalClasses = res.TotalScheduledClasses
	res.AttendedClasses = res.PresentClasses
	res.Status = model.DisplayStatus(res.ActualAttendancePercentage)
	return res
}
