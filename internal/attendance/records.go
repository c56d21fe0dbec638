package attendance

import (
	"context"
	"errors"
	"fmt"

	"attendify/internal/model"
	"attendify/internal/stats"
)

// Attendance lists the owner's entries, only those on date when it is set.
func (s *Service) Attendance(ctx context.Context, owner, date string) ([]model.AttendanceEntry, error) {
	if date != "" {
		if _, err := model.ParseDate(date, nil); err != nil {
			return nil, err
		}
	}
	out, err := s.store.Attendance(ctx, owner, date)
	return out, wrap("list attendance", err)
}

// AddAttendance records the status of a subject on a date. There is at most
// one entry per subject and date: recording again overwrites the status of
// the existing entry.
func (s *Service) AddAttendance(ctx context.Context, owner string, in model.AttendanceInput) (model.AttendanceEntry, error) {
	if err := model.Validate(in); err != nil {
		return model.AttendanceEntry{}, err
	}
	a, err := s.record(ctx, owner, in)
	if err != nil {
		return model.AttendanceEntry{}, err
	}
	s.changed(ctx, owner, "attendance")
	return a, nil
}

func (s *Service) record(ctx context.Context, owner string, in model.AttendanceInput) (model.AttendanceEntry, error) {
	sub, err := s.subject(ctx, owner, in.SubjectID)
	if err != nil {
		return model.AttendanceEntry{}, err
	}
	sameDay, err := s.store.Attendance(ctx, owner, in.Date)
	if err != nil {
		return model.AttendanceEntry{}, wrap("add attendance", err)
	}

	now := s.stamp()
	a := model.AttendanceEntry{ID: s.newID(), UserID: owner, Date: in.Date, CreatedAt: now}
	for _, prev := range sameDay {
		if prev.SubjectID == in.SubjectID {
			a = prev
			break
		}
	}
	a.SubjectID = sub.ID
	a.SubjectName = sub.Name
	a.SubjectCode = sub.Code
	a.Status = in.Status
	if in.TimetableEntryID != "" {
		a.TimetableEntryID = in.TimetableEntryID
	}
	if in.Notes != "" {
		a.Notes = in.Notes
	}
	a.UpdatedAt = now

	if err := s.store.PutAttendance(ctx, a); err != nil {
		return model.AttendanceEntry{}, wrap("add attendance", err)
	}
	return a, nil
}

// UpdateAttendance merges p into a stored entry. Moving an entry onto a date
// that already has one for the same subject is rejected.
func (s *Service) UpdateAttendance(ctx context.Context, owner, id string, p model.AttendancePatch) (model.AttendanceEntry, error) {
	if err := model.Validate(p); err != nil {
		return model.AttendanceEntry{}, err
	}
	a, err := s.store.AttendanceEntry(ctx, owner, id)
	if err != nil {
		return model.AttendanceEntry{}, wrap("update attendance", err)
	}
	if p.Date != nil && *p.Date != a.Date {
		sameDay, err := s.store.Attendance(ctx, owner, *p.Date)
		if err != nil {
			return model.AttendanceEntry{}, wrap("update attendance", err)
		}
		for _, other := range sameDay {
			if other.SubjectID == a.SubjectID {
				return model.AttendanceEntry{}, fmt.Errorf("%w: %s on %s", model.ErrDuplicateAttendance, a.SubjectName, *p.Date)
			}
		}
	}
	a.Apply(p, s.stamp())
	if err := s.store.PutAttendance(ctx, a); err != nil {
		return model.AttendanceEntry{}, wrap("update attendance", err)
	}
	s.changed(ctx, owner, "attendance")
	return a, nil
}

// DeleteAttendance removes one entry.
func (s *Service) DeleteAttendance(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteAttendance(ctx, owner, id); err != nil {
		return wrap("delete attendance", err)
	}
	s.changed(ctx, owner, "attendance")
	return nil
}

// AddBulkAttendance records one status for several subjects on one date. It
// stops at the first failure; entries written before it are kept.
func (s *Service) AddBulkAttendance(ctx context.Context, owner string, in model.BulkAttendanceInput) ([]model.AttendanceEntry, error) {
	if err := model.Validate(in); err != nil {
		return nil, err
	}
	out := make([]model.AttendanceEntry, 0, len(in.SubjectIDs))
	defer func() {
		if len(out) > 0 {
			s.changed(ctx, owner, "attendance")
		}
	}()
	for _, id := range in.SubjectIDs {
		a, err := s.record(ctx, owner, model.AttendanceInput{SubjectID: id, Date: in.Date, Status: in.Status})
		if err != nil {
			return out, fmt.Errorf("bulk attendance for subject %s: %w", id, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// MarkDay sets every class scheduled on date to status: entries already
// recorded that day are updated and scheduled subjects without one get a new
// entry. It returns the day's entries afterwards.
func (s *Service) MarkDay(ctx context.Context, owner, date string, status model.AttendanceStatus) ([]model.AttendanceEntry, error) {
	day, err := model.ParseDate(date, nil)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", model.ErrInvalidInput, status)
	}
	slots, err := s.store.Timetable(ctx, owner)
	if err != nil {
		return nil, wrap("mark day", err)
	}
	scheduled := stats.SlotsOn(slots, day)
	if len(scheduled) == 0 {
		return nil, fmt.Errorf("%w: %s", model.ErrNoClasses, date)
	}
	existing, err := s.store.Attendance(ctx, owner, date)
	if err != nil {
		return nil, wrap("mark day", err)
	}
	defer s.changed(ctx, owner, "attendance")

	now := s.stamp()
	marked := map[string]bool{}
	for _, a := range existing {
		marked[a.SubjectID] = true
		if a.Status == status {
			continue
		}
		a.Status = status
		a.UpdatedAt = now
		if err := s.store.PutAttendance(ctx, a); err != nil {
			return nil, wrap("mark day", err)
		}
	}
	for _, slot := range scheduled {
		if marked[slot.SubjectID] {
			continue
		}
		marked[slot.SubjectID] = true
		_, err := s.record(ctx, owner, model.AttendanceInput{
			SubjectID:        slot.SubjectID,
			Date:             date,
			Status:           status,
			TimetableEntryID: slot.ID,
		})
		if err != nil {
			if errors.Is(err, model.ErrUnknownSubject) {
				// Slot left behind by a subject deleted elsewhere.
				continue
			}
			return nil, wrap("mark day", err)
		}
	}

	out, err := s.store.Attendance(ctx, owner, date)
	return out, wrap("mark day", err)
}
