package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"academia/internal/activity"
	"academia/internal/apperr"
	"academia/internal/attendance"
	"academia/internal/auth"
	"academia/internal/reports"
	"academia/internal/timetable"
	"academia/internal/validation"
)

const (
	testKey    = "test-signing-key"
	testIssuer = "academia-test"
	testCookie = "academia_session"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Setup(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubAuth struct {
	AuthService
	session auth.Session
	err     error
	revoked []string
}

func (s *stubAuth) Login(context.Context, string, string, string) (auth.Session, error) {
	return s.session, s.err
}

func (s *stubAuth) Logout(_ context.Context, claims auth.Claims) error {
	s.revoked = append(s.revoked, claims.ID)
	return nil
}

func (s *stubAuth) TTL() time.Duration { return time.Hour }

type stubTimetable struct {
	TimetableService
	createErr error
	created   []timetable.CreateInput
}

func (s *stubTimetable) Create(_ context.Context, _ auth.Principal, in timetable.CreateInput) (timetable.Entry, error) {
	if s.createErr != nil {
		return timetable.Entry{}, s.createErr
	}
	s.created = append(s.created, in)
	return timetable.Entry{ID: uuid.NewString(), SectionID: in.SectionID, DayOfWeek: in.DayOfWeek, StartTime: in.StartTime}, nil
}

func (s *stubTimetable) Entry(context.Context, auth.Principal, string) (timetable.Entry, error) {
	return timetable.Entry{}, errors.New("connection reset by peer at 10.0.0.7")
}

type stubAttendance struct {
	AttendanceService
	err error
}

func (s *stubAttendance) ForStudent(_ context.Context, _ auth.Principal, id string) (attendance.StudentReport, error) {
	return attendance.StudentReport{StudentID: id}, s.err
}

type stubActivity struct {
	ActivityService
	err error
}

func (s *stubActivity) SetStatus(_ context.Context, _ auth.Principal, id string, in activity.StatusInput) (activity.Activity, error) {
	return activity.Activity{ID: id, Status: in.Status}, s.err
}

type stubReports struct {
	ReportService
	rep reports.Report
}

func (s *stubReports) Get(_ context.Context, _ auth.Principal, id, kind string) (reports.Report, error) {
	if id != s.rep.ID || (kind != "" && kind != s.rep.Kind) {
		return reports.Report{}, reports.ErrNotFound
	}
	return s.rep, nil
}

type fixture struct {
	engine     *gin.Engine
	auth       *stubAuth
	timetable  *stubTimetable
	attendance *stubAttendance
	activity   *stubActivity
	reports    *stubReports
	logs       *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	f := &fixture{
		engine:     gin.New(),
		auth:       &stubAuth{},
		timetable:  &stubTimetable{},
		attendance: &stubAttendance{},
		activity:   &stubActivity{},
		reports:    &stubReports{},
		logs:       logs,
	}
	Register(f.engine, Deps{
		Auth:       f.auth,
		Timetable:  f.timetable,
		Attendance: f.attendance,
		Activity:   f.activity,
		Reports:    f.reports,
		Sessions:   auth.NewMiddleware(testKey, testIssuer, testCookie, auth.NewMemoryRevoker()),
		Cookie:     Cookie{Name: testCookie},
		Log:        zap.New(core),
		RenderPDF: func(w io.Writer, rep reports.Report) error {
			_, err := io.WriteString(w, "%PDF-1.3 "+rep.Title)
			return err
		},
	})
	return f
}

func token(t *testing.T, p auth.Principal) string {
	t.Helper()
	tok, err := auth.Issue(p, testIssuer, testKey, time.Hour)
	require.NoError(t, err)
	return tok.Value
}

var (
	spocUser    = auth.Principal{ID: uuid.NewString(), Role: auth.RoleSPOC, UniversityID: "uni-1", ProgramID: "prog-1", Name: "Spoc"}
	facultyUser = auth.Principal{ID: uuid.NewString(), Role: auth.RoleFaculty, UniversityID: "uni-1", ProgramID: "prog-1", Name: "Prof"}
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func (f *fixture) do(t *testing.T, method, path, body string, p *auth.Principal) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, *p))
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func timetableBody(day string) string {
	return `{"sectionId":"` + uuid.NewString() + `","courseId":"` + uuid.NewString() + `","facultyId":"` + uuid.NewString() +
		`","dayOfWeek":"` + day + `","startTime":"09:00","endTime":"10:00","room":"B-101"}`
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)

	w, env = f.do(t, http.MethodGet, "/api/auth/me", "", &spocUser)
	require.Equal(t, http.StatusOK, w.Code)
	var p auth.Principal
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, spocUser.ID, p.ID)
	assert.Equal(t, auth.RoleSPOC, p.Role)
}

func TestSessionCookie(t *testing.T) {
	f := newFixture(t)
	tok := token(t, facultyUser)
	f.auth.session = auth.Session{Token: tok, Principal: facultyUser}

	w, env := f.do(t, http.MethodPost, "/api/auth/login", `{"role":"faculty","email":"prof@example.edu","password":"secret123"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	cookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, testCookie+"="+tok)
	assert.Contains(t, cookie, "HttpOnly")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: tok})
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: tok})
	rec = httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, f.auth.revoked, 1)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	f.auth.err = auth.ErrInvalidCredentials

	w, env := f.do(t, http.MethodPost, "/api/auth/login", `{"role":"student","email":"a@b.edu","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", env.Message)

	w, env = f.do(t, http.MethodPost, "/api/auth/login", `{"role":"janitor","email":"a@b.edu","password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "role")
}

func TestTimetableCreate(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/timetable", timetableBody("Mon"), &spocUser)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Len(t, f.timetable.created, 1)

	w, _ = f.do(t, http.MethodPost, "/api/timetable", timetableBody("Mon"), &facultyUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = f.do(t, http.MethodPost, "/api/timetable", timetableBody("Sun"), &spocUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", env.Message)
	assert.Contains(t, env.Errors, "dayOfWeek")

	f.timetable.createErr = timetable.ErrSlotConflict
	w, env = f.do(t, http.MethodPost, "/api/timetable", timetableBody("Tue"), &spocUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Time slot already occupied", env.Message)
}

func TestInternalErrorsAreNotDisclosed(t *testing.T) {
	f := newFixture(t)
	w, env := f.do(t, http.MethodGet, "/api/timetable/"+uuid.NewString(), "", &spocUser)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.7")

	entries := f.logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, spocUser.ID, entries[0].ContextMap()["principal_id"])
}

func TestMalformedIDIsNotFound(t *testing.T) {
	f := newFixture(t)
	w, env := f.do(t, http.MethodGet, "/api/timetable/not-a-uuid", "", &spocUser)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, timetable.ErrNotFound.Message, env.Message)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"coordinator gate", attendance.ErrNotCoordinator, http.StatusForbidden},
		{"not pending", activity.ErrNotPending, http.StatusBadRequest},
		{"missing", activity.ErrNotFound, http.StatusNotFound},
		{"conflict", apperr.Conflict("taken"), http.StatusBadRequest},
		{"unauthorized", apperr.Unauthorized("who are you"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.attendance.err = tt.err
			f.activity.err = tt.err

			w, env := f.do(t, http.MethodGet, "/api/attendance/student/"+uuid.NewString(), "", &facultyUser)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.err.Error(), env.Message)

			w, _ = f.do(t, http.MethodPatch, "/api/student-details/"+uuid.NewString()+"/status", `{"status":"approved"}`, &facultyUser)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestReportPDF(t *testing.T) {
	f := newFixture(t)
	f.reports.rep = reports.Report{ID: uuid.NewString(), UniversityID: "uni-1", Kind: reports.KindNAAC, AcademicYear: "2023-24", Title: "SSR"}

	w, _ := f.do(t, http.MethodGet, "/api/reports/naac/"+f.reports.rep.ID+"/pdf", "", &spocUser)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="naac-2023-24.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w, _ = f.do(t, http.MethodGet, "/api/reports/nirf/"+f.reports.rep.ID+"/pdf", "", &spocUser)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/reports/"+f.reports.rep.ID+"/pdf", "", &spocUser)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/reports/naac/"+f.reports.rep.ID+"/pdf", "", &facultyUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealth(t *testing.T) {
	r := gin.New()
	r.GET("/healthz", Health(map[string]Check{
		"db":    func(context.Context) bool { return true },
		"redis": func(context.Context) bool { return false },
	}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["db"])
	assert.Equal(t, false, body["redis"])
	assert.Equal(t, "degraded", body["status"])
}
