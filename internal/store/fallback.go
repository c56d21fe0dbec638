package store

import (
	"context"
	"errors"
	"log"

	"attendify/internal/metrics"
	"attendify/internal/model"
)

// Fallback serves every call from Primary and retries on Local when Primary
// fails. Not-found results and cancelled contexts are returned as they are.
type Fallback struct {
	Primary Backend
	Local   Backend
}

func (f *Fallback) Name() string { return f.Primary.Name() + "+" + f.Local.Name() }

func (f *Fallback) Ping(ctx context.Context) error {
	if err := f.Primary.Ping(ctx); err != nil {
		log.Printf("store: primary %s unhealthy: %v", f.Primary.Name(), err)
		return f.Local.Ping(ctx)
	}
	return nil
}

func (f *Fallback) degrade(ctx context.Context, op string, err error) bool {
	if err == nil || errors.Is(err, model.ErrNotFound) || ctx.Err() != nil {
		return false
	}
	log.Printf("store: %s on %s failed, using %s: %v", op, f.Primary.Name(), f.Local.Name(), err)
	metrics.StoreFallbacks.WithLabelValues(op).Inc()
	return true
}

func (f *Fallback) Subjects(ctx context.Context, owner string) ([]model.Subject, error) {
	out, err := f.Primary.Subjects(ctx, owner)
	if f.degrade(ctx, "subjects", err) {
		return f.Local.Subjects(ctx, owner)
	}
	return out, err
}

func (f *Fallback) Subject(ctx context.Context, owner, id string) (model.Subject, error) {
	out, err := f.Primary.Subject(ctx, owner, id)
	if f.degrade(ctx, "subject", err) {
		return f.Local.Subject(ctx, owner, id)
	}
	return out, err
}

func (f *Fallback) PutSubject(ctx context.Context, s model.Subject) error {
	err := f.Primary.PutSubject(ctx, s)
	if f.degrade(ctx, "put_subject", err) {
		return f.Local.PutSubject(ctx, s)
	}
	return err
}

func (f *Fallback) DeleteSubject(ctx context.Context, owner, id string) error {
	err := f.Primary.DeleteSubject(ctx, owner, id)
	if f.degrade(ctx, "delete_subject", err) {
		return f.Local.DeleteSubject(ctx, owner, id)
	}
	return err
}

func (f *Fallback) Timetable(ctx context.Context, owner string) ([]model.TimetableEntry, error) {
	out, err := f.Primary.Timetable(ctx, owner)
	if f.degrade(ctx, "timetable", err) {
		return f.Local.Timetable(ctx, owner)
	}
	return out, err
}

func (f *Fallback) TimetableEntry(ctx context.Context, owner, id string) (model.TimetableEntry, error) {
	out, err := f.Primary.TimetableEntry(ctx, owner, id)
	if f.degrade(ctx, "timetable_entry", err) {
		return f.Local.TimetableEntry(ctx, owner, id)
	}
	return out, err
}

func (f *Fallback) PutTimetableEntry(ctx context.Context, e model.TimetableEntry) error {
	err := f.Primary.PutTimetableEntry(ctx, e)
	if f.degrade(ctx, "put_timetable_entry", err) {
		return f.Local.PutTimetableEntry(ctx, e)
	}
	return err
}

func (f *Fallback) DeleteTimetableEntry(ctx context.Context, owner, id string) error {
	err := f.Primary.DeleteTimetableEntry(ctx, owner, id)
	if f.degrade(ctx, "delete_timetable_entry", err) {
		return f.Local.DeleteTimetableEntry(ctx, owner, id)
	}
	return err
}

func (f *Fallback) Attendance(ctx context.Context, owner, date string) ([]model.AttendanceEntry, error) {
	out, err := f.Primary.Attendance(ctx, owner, date)
	if f.degrade(ctx, "attendance", err) {
		return f.Local.Attendance(ctx, owner, date)
	}
	return out, err
}

func (f *Fallback) AttendanceEntry(ctx context.Context, owner, id string) (model.AttendanceEntry, error) {
	out, err := f.Primary.AttendanceEntry(ctx, owner, id)
	if f.degrade(ctx, "attendance_entry", err) {
		return f.Local.AttendanceEntry(ctx, owner, id)
	}
	return out, err
}

func (f *Fallback) PutAttendance(ctx context.Context, a model.AttendanceEntry) error {
	err := f.Primary.PutAttendance(ctx, a)
	if f.degrade(ctx, "put_attendance", err) {
		return f.Local.PutAttendance(ctx, a)
	}
	return err
}

func (f *Fallback) DeleteAttendance(ctx context.Context, owner, id string) error {
	err := f.Primary.DeleteAttendance(ctx, owner, id)
	if f.degrade(ctx, "delete_attendance", err) {
		return f.Local.DeleteAttendance(ctx, owner, id)
	}
	return err
}
