package attendance

import (
	"context"
	"fmt"
	"strings"

	"attendify/internal/model"
	"attendify/internal/stats"
)

// Timetable lists the owner's weekly slots.
func (s *Service) Timetable(ctx context.Context, owner string) ([]model.TimetableEntry, error) {
	out, err := s.store.Timetable(ctx, owner)
	return out, wrap("list timetable", err)
}

// AddTimetableEntry validates and stores a new slot.
func (s *Service) AddTimetableEntry(ctx context.Context, owner string, in model.TimetableInput) (model.TimetableEntry, error) {
	if err := model.Validate(in); err != nil {
		return model.TimetableEntry{}, err
	}
	sub, err := s.subject(ctx, owner, in.SubjectID)
	if err != nil {
		return model.TimetableEntry{}, err
	}
	now := s.stamp()
	e := model.TimetableEntry{
		ID:        s.newID(),
		UserID:    owner,
		Day:       in.Day,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Room:      in.Room,
		CreatedAt: now,
		UpdatedAt: now,
	}
	denormalize(&e, sub)
	if err := s.checkSlot(ctx, owner, e); err != nil {
		return model.TimetableEntry{}, err
	}
	if err := s.store.PutTimetableEntry(ctx, e); err != nil {
		return model.TimetableEntry{}, wrap("add timetable entry", err)
	}
	s.changed(ctx, owner, "timetable")
	return e, nil
}

// UpdateTimetableEntry merges p into a stored slot and re-checks it.
func (s *Service) UpdateTimetableEntry(ctx context.Context, owner, id string, p model.TimetablePatch) (model.TimetableEntry, error) {
	if err := model.Validate(p); err != nil {
		return model.TimetableEntry{}, err
	}
	e, err := s.store.TimetableEntry(ctx, owner, id)
	if err != nil {
		return model.TimetableEntry{}, wrap("update timetable entry", err)
	}
	e.Apply(p, s.stamp())
	if p.SubjectID != nil {
		sub, err := s.subject(ctx, owner, *p.SubjectID)
		if err != nil {
			return model.TimetableEntry{}, err
		}
		denormalize(&e, sub)
	}
	if err := s.checkSlot(ctx, owner, e); err != nil {
		return model.TimetableEntry{}, err
	}
	if err := s.store.PutTimetableEntry(ctx, e); err != nil {
		return model.TimetableEntry{}, wrap("update timetable entry", err)
	}
	s.changed(ctx, owner, "timetable")
	return e, nil
}

// DeleteTimetableEntry removes a slot. Attendance recorded against it stays.
func (s *Service) DeleteTimetableEntry(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteTimetableEntry(ctx, owner, id); err != nil {
		return wrap("delete timetable entry", err)
	}
	s.changed(ctx, owner, "timetable")
	return nil
}

// CurrentClass returns the slot running right now, if any.
func (s *Service) CurrentClass(ctx context.Context, owner string) (model.TimetableEntry, bool, error) {
	slots, err := s.store.Timetable(ctx, owner)
	if err != nil {
		return model.TimetableEntry{}, false, wrap("current class", err)
	}
	e, ok := stats.CurrentClass(slots, s.now())
	return e, ok, nil
}

func (s *Service) checkSlot(ctx context.Context, owner string, e model.TimetableEntry) error {
	if err := e.Check(); err != nil {
		return err
	}
	existing, err := s.store.Timetable(ctx, owner)
	if err != nil {
		return wrap("check timetable", err)
	}
	clashes := stats.Conflicts(existing, e)
	if len(clashes) == 0 {
		return nil
	}
	names := make([]string, 0, len(clashes))
	for _, c := range clashes {
		names = append(names, fmt.Sprintf("%s %s-%s", c.SubjectName, c.StartTime, c.EndTime))
	}
	return fmt.Errorf("%w: %s", model.ErrTimeConflict, strings.Join(names, ", "))
}

func denormalize(e *model.TimetableEntry, sub model.Subject) {
	e.SubjectID = sub.ID
	e.SubjectName = sub.Name
	e.SubjectCode = sub.Code
	e.Instructor = sub.Instructor
}
