package store

import (
	"context"
	"slices"
	"sync"

	"attendify/internal/model"
)

// table keeps rows per owner in insertion order.
type table[T any] struct {
	rows  map[string]map[string]T
	order map[string][]string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]map[string]T{}, order: map[string][]string{}}
}

func (t *table[T]) get(owner, id string) (T, bool) {
	row, ok := t.rows[owner][id]
	return row, ok
}

func (t *table[T]) put(owner, id string, row T) {
	if t.rows[owner] == nil {
		t.rows[owner] = map[string]T{}
	}
	if _, ok := t.rows[owner][id]; !ok {
		t.order[owner] = append(t.order[owner], id)
	}
	t.rows[owner][id] = row
}

func (t *table[T]) del(owner, id string) bool {
	if _, ok := t.rows[owner][id]; !ok {
		return false
	}
	delete(t.rows[owner], id)
	t.order[owner] = slices.DeleteFunc(t.order[owner], func(v string) bool { return v == id })
	return true
}

func (t *table[T]) list(owner string, keep func(T) bool) []T {
	out := []T{}
	for _, id := range t.order[owner] {
		row := t.rows[owner][id]
		if keep == nil || keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// Memory is a process-local backend. It serves as the local store when no
// database is configured and backs the tests.
type Memory struct {
	mu         sync.RWMutex
	subjects   *table[model.Subject]
	timetable  *table[model.TimetableEntry]
	attendance *table[model.AttendanceEntry]
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		subjects:   newTable[model.Subject](),
		timetable:  newTable[model.TimetableEntry](),
		attendance: newTable[model.AttendanceEntry](),
	}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Subjects(_ context.Context, owner string) ([]model.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.subjects.list(owner, nil), nil
}

func (m *Memory) Subject(_ context.Context, owner, id string) (model.Subject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subjects.get(owner, id)
	if !ok {
		return model.Subject{}, model.ErrNotFound
	}
	return s, nil
}

func (m *Memory) PutSubject(_ context.Context, s model.Subject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects.put(s.UserID, s.ID, s)
	return nil
}

func (m *Memory) DeleteSubject(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.subjects.del(owner, id) {
		return model.ErrNotFound
	}
	return nil
}

func (m *Memory) Timetable(_ context.Context, owner string) ([]model.TimetableEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timetable.list(owner, nil), nil
}

func (m *Memory) TimetableEntry(_ context.Context, owner, id string) (model.TimetableEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.timetable.get(owner, id)
	if !ok {
		return model.TimetableEntry{}, model.ErrNotFound
	}
	return e, nil
}

func (m *Memory) PutTimetableEntry(_ context.Context, e model.TimetableEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timetable.put(e.UserID, e.ID, e)
	return nil
}

func (m *Memory) DeleteTimetableEntry(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.timetable.del(owner, id) {
		return model.ErrNotFound
	}
	return nil
}

func (m *Memory) Attendance(_ context.Context, owner, date string) ([]model.AttendanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keep func(model.AttendanceEntry) bool
	if date != "" {
		keep = func(a model.AttendanceEntry) bool { return a.Date == date }
	}
	return m.attendance.list(owner, keep), nil
}

func (m *Memory) AttendanceEntry(_ context.Context, owner, id string) (model.AttendanceEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attendance.get(owner, id)
	if !ok {
		return model.AttendanceEntry{}, model.ErrNotFound
	}
	return a, nil
}

func (m *Memory) PutAttendance(_ context.Context, a model.AttendanceEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance.put(a.UserID, a.ID, a)
	return nil
}

func (m *Memory) DeleteAttendance(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.attendance.del(owner, id) {
		return model.ErrNotFound
	}
	return nil
}
