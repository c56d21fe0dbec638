package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendify/internal/attendance"
	"attendify/internal/auth"
	"attendify/internal/cache"
	"attendify/internal/model"
	"attendify/internal/store"
)

const key = "handler-test-key"

type server struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func newServer(t *testing.T) server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidations())

	now := func() time.Time { return time.Date(2026, 5, 21, 10, 15, 0, 0, time.UTC) }
	svc := attendance.NewService(store.NewMemory(),
		attendance.WithCache(cache.NewMemory(time.Minute, time.Minute)),
		attendance.WithClock(now))
	h := &Handler{
		Service: svc,
		Catalog: []string{"Chemistry", "Mathematics", "Physics"},
		Issue: func(name string) (auth.Token, error) {
			return auth.Issue("local", name, "", key, time.Hour, time.Now())
		},
	}
	r := gin.New()
	h.Register(r, auth.RequireOwner(auth.HMAC{Key: key}))

	s := server{t: t, r: r}
	w := s.do(http.MethodPost, "/v1/auth/token", map[string]string{"name": "Sam"})
	require.Equal(t, http.StatusCreated, w.Code)
	var tok auth.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	s.token = tok.AccessToken
	return s
}

func (s server) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRequiresToken(t *testing.T) {
	s := newServer(t)
	s.token = ""
	w := s.do(http.MethodGet, "/v1/subjects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalogFilter(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/v1/catalog/subjects?q=MATH", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string][]string](t, w)
	assert.Equal(t, []string{"Mathematics"}, got["subjects"])
}

func TestSubjectTimetableAttendanceFlow(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/v1/subjects", model.SubjectInput{Name: "Physics", Code: "PH101", Credit: 4})
	require.Equal(t, http.StatusCreated, w.Code)
	sub := decode[model.Subject](t, w)
	assert.Equal(t, "local", sub.UserID)

	w = s.do(http.MethodPost, "/v1/timetable", model.TimetableInput{SubjectID: sub.ID, Day: model.Thursday, StartTime: "10:00", EndTime: "11:00"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/v1/timetable", model.TimetableInput{SubjectID: sub.ID, Day: model.Thursday, StartTime: "10:30", EndTime: "11:30"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/v1/timetable", map[string]string{"subjectId": sub.ID, "day": "Thursday", "startTime": "9:00", "endTime": "10:00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/timetable/current", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cur := decode[map[string]*model.TimetableEntry](t, w)
	require.NotNil(t, cur["current"])
	assert.Equal(t, sub.ID, cur["current"].SubjectID)

	w = s.do(http.MethodPost, "/v1/attendance", model.AttendanceInput{SubjectID: sub.ID, Date: "2026-05-21", Status: model.Present})
	require.Equal(t, http.StatusCreated, w.Code)
	entry := decode[model.AttendanceEntry](t, w)

	w = s.do(http.MethodGet, "/v1/attendance?date=2026-05-21", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string][]model.AttendanceEntry](t, w)
	assert.Len(t, list["attendance"], 1)

	w = s.do(http.MethodGet, "/v1/attendance?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	absent := model.Absent
	w = s.do(http.MethodPatch, "/v1/attendance/"+entry.ID, model.AttendancePatch{Status: &absent})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Absent, decode[model.AttendanceEntry](t, w).Status)

	w = s.do(http.MethodGet, "/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, dash["classesThisWeek"])

	w = s.do(http.MethodDelete, "/v1/subjects/"+sub.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodDelete, "/v1/subjects/"+sub.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarMark(t *testing.T) {
	s := newServer(t)
	sub := decode[model.Subject](t, s.do(http.MethodPost, "/v1/subjects", model.SubjectInput{Name: "Math", Code: "MA1"}))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/v1/timetable",
		model.TimetableInput{SubjectID: sub.ID, Day: model.Monday, StartTime: "09:00", EndTime: "10:00"}).Code)

	w := s.do(http.MethodPost, "/v1/calendar/2026-05-18/mark", model.MarkDayInput{Status: model.Present})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/v1/calendar/2026-05-18", nil)
	require.Equal(t, http.StatusOK, w.Code)
	day := decode[attendance.Day](t, w)
	assert.Equal(t, "present", string(day.Status))
	assert.Len(t, day.Attendance, 1)

	w = s.do(http.MethodPost, "/v1/calendar/2026-05-19/mark", model.MarkDayInput{Status: model.Present})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 100, decode[map[string]any](t, w)["attendancePercentage"])
}

func TestBulkAttendanceUnknownSubject(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodPost, "/v1/attendance/bulk", model.BulkAttendanceInput{
		Date: "2026-05-18", Status: model.Off, SubjectIDs: []string{"missing"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/v1/attendance/bulk", map[string]any{"date": "2026-05-18", "status": "off", "subjectIds": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPredictionsEmpty(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodGet, "/v1/predictions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Empty(t, got["predictions"])

	w = s.do(http.MethodGet, "/v1/prompt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[map[string]any](t, w)["prompt"])
}
