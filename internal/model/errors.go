package model

import "errors"

var (
	// ErrNotFound is returned by stores when a record does not exist for the owner.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput wraps validation failures of user supplied data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTimeConflict reports an overlapping timetable slot on the same day.
	ErrTimeConflict = errors.New("time conflict with existing class")
	// ErrEndBeforeStart reports a timetable slot whose end is not after its start.
	ErrEndBeforeStart = errors.New("end time must be after start time")
	// ErrUnknownSubject reports a reference to a subject the owner does not have.
	ErrUnknownSubject = errors.New("unknown subject")
	// ErrDuplicateAttendance reports a second entry for one subject on one date.
	ErrDuplicateAttendance = errors.New("attendance already recorded for subject on date")
	// ErrNoClasses reports a day-level operation on a date with nothing scheduled.
	ErrNoClasses = errors.New("no classes scheduled for this day")
)
