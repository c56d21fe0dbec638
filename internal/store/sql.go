package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"attendify/internal/model"
)

// schema works on both Postgres and SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS subjects (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		name             TEXT NOT NULL,
		code             TEXT NOT NULL,
		instructor       TEXT NOT NULL DEFAULT '',
		credit           INTEGER NOT NULL DEFAULT 0,
		total_classes    INTEGER NOT NULL DEFAULT 0,
		attended_classes INTEGER NOT NULL DEFAULT 0,
		percentage       INTEGER NOT NULL DEFAULT 0,
		last_class       TEXT NOT NULL DEFAULT '',
		status           TEXT NOT NULL,
		color            TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMP NOT NULL,
		updated_at       TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subjects_user ON subjects(user_id)`,
	`CREATE TABLE IF NOT EXISTS timetable_entries (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL,
		subject_id   TEXT NOT NULL,
		subject_name TEXT NOT NULL DEFAULT '',
		subject_code TEXT NOT NULL DEFAULT '',
		day          TEXT NOT NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		room         TEXT NOT NULL DEFAULT '',
		instructor   TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMP NOT NULL,
		updated_at   TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timetable_user ON timetable_entries(user_id)`,
	`CREATE TABLE IF NOT EXISTS attendance_entries (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL,
		subject_id         TEXT NOT NULL,
		subject_name       TEXT NOT NULL DEFAULT '',
		subject_code       TEXT NOT NULL DEFAULT '',
		date               TEXT NOT NULL,
		status             TEXT NOT NULL,
		timetable_entry_id TEXT NOT NULL DEFAULT '',
		notes              TEXT NOT NULL DEFAULT '',
		created_at         TIMESTAMP NOT NULL,
		updated_at         TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_user_date ON attendance_entries(user_id, date)`,
}

const (
	subjectColumns    = `id, user_id, name, code, instructor, credit, total_classes, attended_classes, percentage, last_class, status, color, created_at, updated_at`
	timetableColumns  = `id, user_id, subject_id, subject_name, subject_code, day, start_time, end_time, room, instructor, created_at, updated_at`
	attendanceColumns = `id, user_id, subject_id, subject_name, subject_code, date, status, timetable_entry_id, notes, created_at, updated_at`
)

// SQL persists entities in Postgres or SQLite through sqlx.
type SQL struct {
	db   *sqlx.DB
	name string
}

// NewSQL migrates the schema and returns a backend over db.
func NewSQL(ctx context.Context, db *DB) (*SQL, error) {
	for _, stmt := range schema {
		if _, err := db.Client.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	name := "postgres"
	if db.Driver == DriverSQLite {
		name = "sqlite"
	}
	return &SQL{db: db.Client, name: name}, nil
}

func (s *SQL) Name() string { return s.name }

func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQL) Subjects(ctx context.Context, owner string) ([]model.Subject, error) {
	out := []model.Subject{}
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(
		`SELECT `+subjectColumns+` FROM subjects WHERE user_id = ? ORDER BY created_at, id`), owner)
	return out, err
}

func (s *SQL) Subject(ctx context.Context, owner, id string) (model.Subject, error) {
	var out model.Subject
	err := s.db.GetContext(ctx, &out, s.db.Rebind(
		`SELECT `+subjectColumns+` FROM subjects WHERE user_id = ? AND id = ?`), owner, id)
	return out, notFound(err)
}

func (s *SQL) PutSubject(ctx context.Context, sub model.Subject) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO subjects (`+subjectColumns+`)
		VALUES (:id, :user_id, :name, :code, :instructor, :credit, :total_classes, :attended_classes,
			:percentage, :last_class, :status, :color, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			code = excluded.code,
			instructor = excluded.instructor,
			credit = excluded.credit,
			total_classes = excluded.total_classes,
			attended_classes = excluded.attended_classes,
			percentage = excluded.percentage,
			last_class = excluded.last_class,
			status = excluded.status,
			color = excluded.color,
			updated_at = excluded.updated_at
		WHERE subjects.user_id = excluded.user_id
	`, sub)
	return err
}

func (s *SQL) DeleteSubject(ctx context.Context, owner, id string) error {
	return s.delete(ctx, "subjects", owner, id)
}

func (s *SQL) Timetable(ctx context.Context, owner string) ([]model.TimetableEntry, error) {
	out := []model.TimetableEntry{}
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(
		`SELECT `+timetableColumns+` FROM timetable_entries WHERE user_id = ? ORDER BY created_at, id`), owner)
	return out, err
}

func (s *SQL) TimetableEntry(ctx context.Context, owner, id string) (model.TimetableEntry, error) {
	var out model.TimetableEntry
	err := s.db.GetContext(ctx, &out, s.db.Rebind(
		`SELECT `+timetableColumns+` FROM timetable_entries WHERE user_id = ? AND id = ?`), owner, id)
	return out, notFound(err)
}

func (s *SQL) PutTimetableEntry(ctx context.Context, e model.TimetableEntry) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO timetable_entries (`+timetableColumns+`)
		VALUES (:id, :user_id, :subject_id, :subject_name, :subject_code, :day, :start_time, :end_time,
			:room, :instructor, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			subject_id = excluded.subject_id,
			subject_name = excluded.subject_name,
			subject_code = excluded.subject_code,
			day = excluded.day,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			room = excluded.room,
			instructor = excluded.instructor,
			updated_at = excluded.updated_at
		WHERE timetable_entries.user_id = excluded.user_id
	`, e)
	return err
}

func (s *SQL) DeleteTimetableEntry(ctx context.Context, owner, id string) error {
	return s.delete(ctx, "timetable_entries", owner, id)
}

func (s *SQL) Attendance(ctx context.Context, owner, date string) ([]model.AttendanceEntry, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_entries WHERE user_id = ?`
	args := []any{owner}
	if date != "" {
		query += ` AND date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY created_at, id`

	out := []model.AttendanceEntry{}
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...)
	return out, err
}

func (s *SQL) AttendanceEntry(ctx context.Context, owner, id string) (model.AttendanceEntry, error) {
	var out model.AttendanceEntry
	err := s.db.GetContext(ctx, &out, s.db.Rebind(
		`SELECT `+attendanceColumns+` FROM attendance_entries WHERE user_id = ? AND id = ?`), owner, id)
	return out, notFound(err)
}

func (s *SQL) PutAttendance(ctx context.Context, a model.AttendanceEntry) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO attendance_entries (`+attendanceColumns+`)
		VALUES (:id, :user_id, :subject_id, :subject_name, :subject_code, :date, :status,
			:timetable_entry_id, :notes, :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			subject_id = excluded.subject_id,
			subject_name = excluded.subject_name,
			subject_code = excluded.subject_code,
			date = excluded.date,
			status = excluded.status,
			timetable_entry_id = excluded.timetable_entry_id,
			notes = excluded.notes,
			updated_at = excluded.updated_at
		WHERE attendance_entries.user_id = excluded.user_id
	`, a)
	return err
}

func (s *SQL) DeleteAttendance(ctx context.Context, owner, id string) error {
	return s.delete(ctx, "attendance_entries", owner, id)
}

// delete removes one owned row; table is always one of the constants above.
func (s *SQL) delete(ctx context.Context, table, owner, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM `+table+` WHERE user_id = ? AND id = ?`), owner, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}
