package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendify/internal/cache"
	"attendify/internal/model"
	"attendify/internal/queue"
	"attendify/internal/stats"
	"attendify/internal/store"
)

const owner = "u1"

// Thursday 2026-05-21, 10:15 UTC.
var clock = time.Date(2026, 5, 21, 10, 15, 0, 0, time.UTC)

type fixture struct {
	svc   *Service
	mem   *store.Memory
	cache *cache.Memory
	queue *queue.InMemory
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		mem:   store.NewMemory(),
		cache: cache.NewMemory(time.Minute, time.Minute),
		queue: queue.NewInMemory(64),
	}
	f.cache.Now = func() time.Time { return clock }
	f.svc = NewService(f.mem, WithCache(f.cache), WithQueue(f.queue), WithClock(func() time.Time { return clock }))
	n := 0
	f.svc.newID = func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
	return f
}

func (f fixture) subject(t *testing.T, name, code string) model.Subject {
	t.Helper()
	s, err := f.svc.AddSubject(context.Background(), owner, model.SubjectInput{Name: name, Code: code, Credit: 3})
	require.NoError(t, err)
	return s
}

func (f fixture) slot(t *testing.T, subjectID string, day model.Day, start, end string) model.TimetableEntry {
	t.Helper()
	e, err := f.svc.AddTimetableEntry(context.Background(), owner, model.TimetableInput{
		SubjectID: subjectID, Day: day, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)
	return e
}

func TestAddSubject(t *testing.T) {
	f := newFixture(t)
	s := f.subject(t, "Physics", "PH101")
	assert.Equal(t, owner, s.UserID)
	assert.Equal(t, model.StatusGood, s.Status)
	assert.Contains(t, model.Palette, s.Color)
	assert.Zero(t, s.TotalClasses)

	_, err := f.svc.AddSubject(context.Background(), owner, model.SubjectInput{Code: "X"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestUpdateSubjectRecomputesStoredStatus(t *testing.T) {
	f := newFixture(t)
	s := f.subject(t, "Physics", "PH101")
	total, attended := 20, 15
	got, err := f.svc.UpdateSubject(context.Background(), owner, s.ID, model.SubjectPatch{TotalClasses: &total, AttendedClasses: &attended})
	require.NoError(t, err)
	assert.Equal(t, 75, got.Percentage)
	assert.Equal(t, model.StatusWarning, got.Status)

	_, err = f.svc.UpdateSubject(context.Background(), owner, "missing", model.SubjectPatch{})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteSubjectCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")
	math := f.subject(t, "Math", "MA101")
	f.slot(t, phy.ID, model.Monday, "09:00", "10:00")
	f.slot(t, math.ID, model.Monday, "10:00", "11:00")
	_, err := f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-18", Status: model.Present})
	require.NoError(t, err)
	_, err = f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: math.ID, Date: "2026-05-18", Status: model.Absent})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSubject(ctx, owner, phy.ID))

	slots, err := f.svc.Timetable(ctx, owner)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, math.ID, slots[0].SubjectID)

	entries, err := f.svc.Attendance(ctx, owner, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, math.ID, entries[0].SubjectID)

	assert.ErrorIs(t, f.svc.DeleteSubject(ctx, owner, phy.ID), model.ErrNotFound)
}

func TestAddTimetableEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")

	e := f.slot(t, phy.ID, model.Monday, "09:00", "10:00")
	assert.Equal(t, "Physics", e.SubjectName)
	assert.Equal(t, "PH101", e.SubjectCode)

	// Touching slots are fine.
	f.slot(t, phy.ID, model.Monday, "10:00", "11:00")

	_, err := f.svc.AddTimetableEntry(ctx, owner, model.TimetableInput{SubjectID: phy.ID, Day: model.Monday, StartTime: "09:30", EndTime: "10:30"})
	assert.ErrorIs(t, err, model.ErrTimeConflict)

	_, err = f.svc.AddTimetableEntry(ctx, owner, model.TimetableInput{SubjectID: phy.ID, Day: model.Tuesday, StartTime: "10:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, model.ErrEndBeforeStart)

	_, err = f.svc.AddTimetableEntry(ctx, owner, model.TimetableInput{SubjectID: "nope", Day: model.Tuesday, StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, model.ErrUnknownSubject)

	_, err = f.svc.AddTimetableEntry(ctx, owner, model.TimetableInput{SubjectID: phy.ID, Day: "Funday", StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestUpdateTimetableEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")
	math := f.subject(t, "Math", "MA101")
	first := f.slot(t, phy.ID, model.Monday, "09:00", "10:00")
	f.slot(t, math.ID, model.Monday, "11:00", "12:00")

	// Moving within its own interval does not conflict with itself.
	end := "10:30"
	got, err := f.svc.UpdateTimetableEntry(ctx, owner, first.ID, model.TimetablePatch{EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "10:30", got.EndTime)

	start := "10:45"
	end = "11:15"
	_, err = f.svc.UpdateTimetableEntry(ctx, owner, first.ID, model.TimetablePatch{StartTime: &start, EndTime: &end})
	assert.ErrorIs(t, err, model.ErrTimeConflict)

	sid := math.ID
	got, err = f.svc.UpdateTimetableEntry(ctx, owner, first.ID, model.TimetablePatch{SubjectID: &sid})
	require.NoError(t, err)
	assert.Equal(t, "Math", got.SubjectName)
}

func TestAddAttendanceUpsertsPerSubjectAndDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")

	first, err := f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-18", Status: model.Present, Notes: "lab"})
	require.NoError(t, err)
	assert.Equal(t, "Physics", first.SubjectName)

	second, err := f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-18", Status: model.Absent})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, model.Absent, second.Status)
	assert.Equal(t, "lab", second.Notes)

	all, err := f.svc.Attendance(ctx, owner, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "18/05/2026", Status: model.Present})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-18", Status: "late"})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	_, err = f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: "nope", Date: "2026-05-18", Status: model.Present})
	assert.ErrorIs(t, err, model.ErrUnknownSubject)
}

func TestUpdateAttendanceRejectsDuplicateDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")
	a, err := f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-18", Status: model.Present})
	require.NoError(t, err)
	_, err = f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-19", Status: model.Present})
	require.NoError(t, err)

	date := "2026-05-19"
	_, err = f.svc.UpdateAttendance(ctx, owner, a.ID, model.AttendancePatch{Date: &date})
	assert.ErrorIs(t, err, model.ErrDuplicateAttendance)

	off := model.Off
	got, err := f.svc.UpdateAttendance(ctx, owner, a.ID, model.AttendancePatch{Status: &off})
	require.NoError(t, err)
	assert.Equal(t, model.Off, got.Status)

	require.NoError(t, f.svc.DeleteAttendance(ctx, owner, a.ID))
	assert.ErrorIs(t, f.svc.DeleteAttendance(ctx, owner, a.ID), model.ErrNotFound)
}

func TestAddBulkAttendance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")
	math := f.subject(t, "Math", "MA101")

	got, err := f.svc.AddBulkAttendance(ctx, owner, model.BulkAttendanceInput{
		Date: "2026-05-18", Status: model.Present, SubjectIDs: []string{phy.ID, math.ID},
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.svc.AddBulkAttendance(ctx, owner, model.BulkAttendanceInput{
		Date: "2026-05-19", Status: model.Absent, SubjectIDs: []string{phy.ID, "nope", math.ID},
	})
	assert.ErrorIs(t, err, model.ErrUnknownSubject)
	assert.Len(t, got, 1)

	day, err := f.svc.Attendance(ctx, owner, "2026-05-19")
	require.NoError(t, err)
	assert.Len(t, day, 1)
}

func TestMarkDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")
	math := f.subject(t, "Math", "MA101")
	chem := f.subject(t, "Chemistry", "CH101")
	f.slot(t, phy.ID, model.Monday, "09:00", "10:00")
	f.slot(t, math.ID, model.Monday, "10:00", "11:00")
	f.slot(t, phy.ID, model.Monday, "14:00", "15:00")
	f.slot(t, chem.ID, model.Tuesday, "09:00", "10:00")

	// 2026-05-18 is a Monday; Physics already has an entry.
	_, err := f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-18", Status: model.Absent})
	require.NoError(t, err)

	got, err := f.svc.MarkDay(ctx, owner, "2026-05-18", model.Off)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, model.Off, a.Status)
		assert.Contains(t, []string{phy.ID, math.ID}, a.SubjectID)
	}

	day, err := f.svc.Calendar(ctx, owner, "2026-05-18")
	require.NoError(t, err)
	assert.Equal(t, stats.DayOff, day.Status)
	assert.Equal(t, model.Monday, day.Weekday)
	assert.Len(t, day.Classes, 3)

	// 2026-05-20 is a Wednesday with nothing scheduled.
	_, err = f.svc.MarkDay(ctx, owner, "2026-05-20", model.Present)
	assert.ErrorIs(t, err, model.ErrNoClasses)
	_, err = f.svc.MarkDay(ctx, owner, "2026-05-18", "late")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestDashboardCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")
	f.slot(t, phy.ID, model.Monday, "09:00", "10:00")

	d, err := f.svc.Dashboard(ctx, owner)
	require.NoError(t, err)
	require.Len(t, d.Subjects, 1)
	assert.Equal(t, 20, d.Subjects[0].TotalScheduledClasses)
	assert.Equal(t, 1, d.ClassesThisWeek)

	_, ok, _ := f.cache.Dashboard(ctx, owner)
	assert.True(t, ok)
	active, err := f.cache.ActiveOwners(ctx, clock.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{owner}, active)

	_, err = f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-18", Status: model.Present})
	require.NoError(t, err)
	_, ok, _ = f.cache.Dashboard(ctx, owner)
	assert.False(t, ok)

	d, err = f.svc.Dashboard(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Subjects[0].PresentClasses)
}

func TestWritesPublishChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f := newFixture(t)
	f.subject(t, "Physics", "PH101")

	ch, err := f.queue.Consume(ctx)
	require.NoError(t, err)
	select {
	case msg := <-ch:
		assert.Equal(t, queue.TypeChanged, msg.Type)
		assert.Equal(t, owner, msg.Owner)
		assert.Equal(t, "subject", msg.Kind)
	case <-time.After(time.Second):
		t.Fatal("no change published")
	}
}

func TestPredictionsAndStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")
	f.slot(t, phy.ID, model.Monday, "09:00", "10:00")
	for i, st := range []model.AttendanceStatus{model.Present, model.Present, model.Absent, model.Off} {
		_, err := f.svc.AddAttendance(ctx, owner, model.AttendanceInput{
			SubjectID: phy.ID, Date: fmt.Sprintf("2026-05-%02d", 4+i), Status: st,
		})
		require.NoError(t, err)
	}

	p, err := f.svc.Predictions(ctx, owner)
	require.NoError(t, err)
	require.Len(t, p.Predictions, 1)
	// 2 present of 20 scheduled minus 1 off.
	assert.Equal(t, 11, p.Predictions[0].CurrentPercentage)
	assert.Equal(t, stats.RiskHigh, p.Predictions[0].Risk)

	st, err := f.svc.Stats(ctx, owner, "")
	require.NoError(t, err)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 67, st.AttendancePercentage)
}

func TestCurrentClassAndPrompts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phy := f.subject(t, "Physics", "PH101")
	f.slot(t, phy.ID, model.Thursday, "10:00", "11:00")

	cur, ok, err := f.svc.CurrentClass(ctx, owner)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, phy.ID, cur.SubjectID)

	_, err = f.svc.Dashboard(ctx, owner)
	require.NoError(t, err)
	n, err := f.svc.RaisePrompts(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, ok, err := f.svc.Prompt(ctx, owner)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Physics", p.SubjectName)
	assert.Equal(t, "2026-05-21", p.Date)

	// Once today's attendance is recorded no new prompt is raised.
	_, err = f.svc.AddAttendance(ctx, owner, model.AttendanceInput{SubjectID: phy.ID, Date: "2026-05-21", Status: model.Present})
	require.NoError(t, err)
	n, err = f.svc.RaisePrompts(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}
