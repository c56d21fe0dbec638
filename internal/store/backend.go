// Package store persists subjects, timetable entries and attendance entries
// per owner. Backends are interchangeable; the one in use is chosen once at
// startup.
package store

import (
	"context"

	"attendify/internal/model"
)

// Backend is the entity store port. Reads of a missing record return
// model.ErrNotFound. Put inserts or replaces a whole record by id.
type Backend interface {
	Name() string
	Ping(ctx context.Context) error

	Subjects(ctx context.Context, owner string) ([]model.Subject, error)
	Subject(ctx context.Context, owner, id string) (model.Subject, error)
	PutSubject(ctx context.Context, s model.Subject) error
	DeleteSubject(ctx context.Context, owner, id string) error

	Timetable(ctx context.Context, owner string) ([]model.TimetableEntry, error)
	TimetableEntry(ctx context.Context, owner, id string) (model.TimetableEntry, error)
	PutTimetableEntry(ctx context.Context, e model.TimetableEntry) error
	DeleteTimetableEntry(ctx context.Context, owner, id string) error

	// Attendance lists an owner's entries, only those on date when date is
	// not empty.
	Attendance(ctx context.Context, owner, date string) ([]model.AttendanceEntry, error)
	AttendanceEntry(ctx context.Context, owner, id string) (model.AttendanceEntry, error)
	PutAttendance(ctx context.Context, a model.AttendanceEntry) error
	DeleteAttendance(ctx context.Context, owner, id string) error
}
