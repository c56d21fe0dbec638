package attendance

import (
	"context"

	"attendify/internal/model"
	"attendify/internal/stats"
)

// Subjects lists the owner's subjects as stored.
func (s *Service) Subjects(ctx context.Context, owner string) ([]model.Subject, error) {
	out, err := s.store.Subjects(ctx, owner)
	return out, wrap("list subjects", err)
}

// SubjectsWithAttendance lists subjects with live attendance figures.
func (s *Service) SubjectsWithAttendance(ctx context.Context, owner string) ([]stats.SubjectWithAttendance, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	return stats.Aggregate(snap.Subjects, snap.Timetable, snap.Attendance, s.now()), nil
}

// AddSubject creates a subject with zeroed counters and a palette color.
func (s *Service) AddSubject(ctx context.Context, owner string, in model.SubjectInput) (model.Subject, error) {
	if err := model.Validate(in); err != nil {
		return model.Subject{}, err
	}
	sub := model.NewSubject(s.newID(), owner, in, s.stamp())
	if err := s.store.PutSubject(ctx, sub); err != nil {
		return model.Subject{}, wrap("add subject", err)
	}
	s.changed(ctx, owner, "subject")
	return sub, nil
}

// UpdateSubject merges p into the stored subject.
func (s *Service) UpdateSubject(ctx context.Context, owner, id string, p model.SubjectPatch) (model.Subject, error) {
	if err := model.Validate(p); err != nil {
		return model.Subject{}, err
	}
	sub, err := s.store.Subject(ctx, owner, id)
	if err != nil {
		return model.Subject{}, wrap("update subject", err)
	}
	sub.Apply(p, s.stamp())
	if err := s.store.PutSubject(ctx, sub); err != nil {
		return model.Subject{}, wrap("update subject", err)
	}
	s.changed(ctx, owner, "subject")
	return sub, nil
}

// DeleteSubject removes a subject with its timetable slots and attendance.
// Dependents go first so a failed run can be retried.
func (s *Service) DeleteSubject(ctx context.Context, owner, id string) error {
	if _, err := s.store.Subject(ctx, owner, id); err != nil {
		return wrap("delete subject", err)
	}
	defer s.changed(ctx, owner, "subject")

	slots, err := s.store.Timetable(ctx, owner)
	if err != nil {
		return wrap("delete subject", err)
	}
	for _, e := range slots {
		if e.SubjectID != id {
			continue
		}
		if err := s.store.DeleteTimetableEntry(ctx, owner, e.ID); err != nil {
			return wrap("delete subject timetable", err)
		}
	}

	entries, err := s.store.Attendance(ctx, owner, "")
	if err != nil {
		return wrap("delete subject", err)
	}
	for _, a := range entries {
		if a.SubjectID != id {
			continue
		}
		if err := s.store.DeleteAttendance(ctx, owner, a.ID); err != nil {
			return wrap("delete subject attendance", err)
		}
	}

	return wrap("delete subject", s.store.DeleteSubject(ctx, owner, id))
}
