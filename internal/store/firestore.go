package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"attendify/internal/model"
)

const (
	colUsers      = "users"
	colSubjects   = "subjects"
	colTimetable  = "timetable"
	colAttendance = "attendance"
)

// Firestore keeps every owner's records under users/{owner}/{collection}/{id}.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore wraps an initialised client.
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) Name() string { return "firestore" }

func (f *Firestore) Ping(ctx context.Context) error {
	// A read of a missing document is the cheapest round trip that proves
	// credentials and connectivity.
	_, err := f.client.Collection("_health").Doc("ping").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return err
	}
	return nil
}

func (f *Firestore) col(owner, name string) *firestore.CollectionRef {
	return f.client.Collection(colUsers).Doc(owner).Collection(name)
}

func (f *Firestore) Subjects(ctx context.Context, owner string) ([]model.Subject, error) {
	return list[model.Subject](f.col(owner, colSubjects).Documents(ctx), func(s model.Subject) (time.Time, string) {
		return s.CreatedAt, s.ID
	})
}

func (f *Firestore) Subject(ctx context.Context, owner, id string) (model.Subject, error) {
	return get[model.Subject](ctx, f.col(owner, colSubjects).Doc(id))
}

func (f *Firestore) PutSubject(ctx context.Context, s model.Subject) error {
	_, err := f.col(s.UserID, colSubjects).Doc(s.ID).Set(ctx, s)
	return err
}

func (f *Firestore) DeleteSubject(ctx context.Context, owner, id string) error {
	return remove(ctx, f.col(owner, colSubjects).Doc(id))
}

func (f *Firestore) Timetable(ctx context.Context, owner string) ([]model.TimetableEntry, error) {
	return list[model.TimetableEntry](f.col(owner, colTimetable).Documents(ctx), func(e model.TimetableEntry) (time.Time, string) {
		return e.CreatedAt, e.ID
	})
}

func (f *Firestore) TimetableEntry(ctx context.Context, owner, id string) (model.TimetableEntry, error) {
	return get[model.TimetableEntry](ctx, f.col(owner, colTimetable).Doc(id))
}

func (f *Firestore) PutTimetableEntry(ctx context.Context, e model.TimetableEntry) error {
	_, err := f.col(e.UserID, colTimetable).Doc(e.ID).Set(ctx, e)
	return err
}

func (f *Firestore) DeleteTimetableEntry(ctx context.Context, owner, id string) error {
	return remove(ctx, f.col(owner, colTimetable).Doc(id))
}

func (f *Firestore) Attendance(ctx context.Context, owner, date string) ([]model.AttendanceEntry, error) {
	q := f.col(owner, colAttendance).Query
	if date != "" {
		q = q.Where("date", "==", date)
	}
	return list[model.AttendanceEntry](q.Documents(ctx), func(a model.AttendanceEntry) (time.Time, string) {
		return a.CreatedAt, a.ID
	})
}

func (f *Firestore) AttendanceEntry(ctx context.Context, owner, id string) (model.AttendanceEntry, error) {
	return get[model.AttendanceEntry](ctx, f.col(owner, colAttendance).Doc(id))
}

func (f *Firestore) PutAttendance(ctx context.Context, a model.AttendanceEntry) error {
	_, err := f.col(a.UserID, colAttendance).Doc(a.ID).Set(ctx, a)
	return err
}

func (f *Firestore) DeleteAttendance(ctx context.Context, owner, id string) error {
	return remove(ctx, f.col(owner, colAttendance).Doc(id))
}

// list drains iter and orders the rows by creation time then id, matching the
// SQL backend without needing a composite index.
func list[T any](iter *firestore.DocumentIterator, key func(T) (time.Time, string)) ([]T, error) {
	defer iter.Stop()
	out := []T{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var row T
		if err := doc.DataTo(&row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	slices.SortStableFunc(out, func(a, b T) int {
		ta, ia := key(a)
		tb, ib := key(b)
		if c := ta.Compare(tb); c != 0 {
			return c
		}
		return cmp.Compare(ia, ib)
	})
	return out, nil
}

func get[T any](ctx context.Context, ref *firestore.DocumentRef) (T, error) {
	var row T
	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return row, model.ErrNotFound
		}
		return row, err
	}
	err = doc.DataTo(&row)
	return row, err
}

// remove deletes ref, reporting ErrNotFound for a missing document since
// Firestore deletes are otherwise idempotent.
func remove(ctx context.Context, ref *firestore.DocumentRef) error {
	_, err := ref.Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return model.ErrNotFound
	}
	return err
}
