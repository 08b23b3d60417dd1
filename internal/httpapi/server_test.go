package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollbook/internal/attendance"
	"rollbook/internal/export"
	"rollbook/internal/queue"
	"rollbook/internal/session"
	"rollbook/internal/store"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	kv   *store.Memory
	jobs *queue.InMemory
	r    *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := store.NewMemory()
	require.NoError(t, store.Save(context.Background(), kv, store.Snapshot{
		Students: []attendance.Student{{ID: "p1", Name: "Ann", SectionIDs: []string{"s1"}}},
		Sections: []attendance.Section{
			{ID: "s1", Name: "Art", Color: "#f59e0b"},
			{ID: "s2", Name: "Sports", Color: "#10b981"},
		},
		Prefs: store.DefaultPrefs(),
	}))
	sess, err := session.Open(context.Background(), kv, nil)
	require.NoError(t, err)

	jobs := queue.NewInMemory(4)
	srv := New(sess, jobs, nil)
	srv.now = func() time.Time { return time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC) }
	return &fixture{kv: kv, jobs: jobs, r: srv.Router(Options{})}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func mark(t *testing.T, f *fixture, studentID, sectionID, date string, present bool) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPut, "/v1/attendance", gin.H{
		"studentId": studentID, "sectionId": sectionID, "date": date, "present": present,
	})
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","store":true}`, w.Body.String())
}

func TestAttendance_MarkAndList(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Date string          `json:"date"`
		Rows []attendanceRow `json:"rows"`
	}](t, w)
	assert.Equal(t, "2024-01-15", got.Date)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "unmarked", got.Rows[0].Mark.String())
	assert.False(t, got.Rows[0].Present)

	w = mark(t, f, "p1", "s1", "2024-01-15", true)
	require.Equal(t, http.StatusOK, w.Code)
	rec := decode[attendance.Record](t, w)
	assert.NotEmpty(t, rec.ID)
	assert.True(t, rec.Present)

	w = f.do(t, http.MethodGet, "/v1/attendance?date=2024-01-15&section=s1&q=an", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mark":"present"`)

	snap, err := store.Load(context.Background(), f.kv, nil)
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, rec.ID, snap.Records[0].ID)
}

func TestAttendance_MarkRejects(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, mark(t, f, "p1", "s1", "15/01/2024", true).Code)
	assert.Equal(t, http.StatusNotFound, mark(t, f, "nobody", "s1", "2024-01-15", true).Code)
	assert.Equal(t, http.StatusNotFound, mark(t, f, "p1", "gone", "2024-01-15", true).Code)

	w := f.do(t, http.MethodPut, "/v1/attendance", gin.H{"studentId": "p1", "sectionId": "s1", "date": "2024-01-15"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/v1/attendance?date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"date: must be YYYY-MM-DD"}`, w.Body.String())
}

func TestStudents_CRUD(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/students", gin.H{"name": "  Bob ", "sectionIds": []string{"s2", "s2"}})
	require.Equal(t, http.StatusCreated, w.Code)
	bob := decode[attendance.Student](t, w)
	assert.Equal(t, "Bob", bob.Name)
	assert.Equal(t, []string{"s2"}, bob.SectionIDs)

	w = f.do(t, http.MethodGet, "/v1/students?q=BO", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Students []studentView `json:"students"`
	}](t, w)
	require.Len(t, list.Students, 1)
	assert.Equal(t, "Sports", list.Students[0].Sections[0].Name)

	w = f.do(t, http.MethodPut, "/v1/students/"+bob.ID, gin.H{"name": "Robert", "sectionIds": []string{"s1"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Robert", decode[attendance.Student](t, w).Name)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/v1/students", gin.H{"name": "Ann", "sectionIds": []string{}}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/v1/students", gin.H{"name": "", "sectionIds": []string{"s1"}}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPut, "/v1/students/nope", gin.H{"name": "X", "sectionIds": []string{"s1"}}).Code)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/v1/students/"+bob.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/v1/students/"+bob.ID, nil).Code)
}

func TestSections_CRUDCascade(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, mark(t, f, "p1", "s1", "2024-01-15", true).Code)

	w := f.do(t, http.MethodGet, "/v1/sections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Sections []sectionView `json:"sections"`
	}](t, w)
	require.Len(t, list.Sections, 2)
	assert.Equal(t, 1, list.Sections[0].StudentCount)
	assert.Equal(t, 0, list.Sections[1].StudentCount)

	w = f.do(t, http.MethodPost, "/v1/sections", gin.H{"name": "Music"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, attendance.DefaultSectionColor, decode[attendance.Section](t, w).Color)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/v1/sections", gin.H{"name": "X", "color": "not-a-colour"}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPut, "/v1/sections/nope", gin.H{"name": "X"}).Code)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/v1/sections/s1", nil).Code)
	snap, err := store.Load(context.Background(), f.kv, nil)
	require.NoError(t, err)
	assert.Empty(t, snap.Records)
	assert.Empty(t, snap.Students[0].SectionIDs)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, mark(t, f, "p1", "s1", "2024-01-15", true).Code)
	require.Equal(t, http.StatusOK, mark(t, f, "p1", "s1", "2024-02-01", false).Code)

	w := f.do(t, http.MethodGet, "/v1/reports?from=2024-01-01&to=2024-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rep := decode[struct {
		Stats attendance.Stats `json:"stats"`
		Rows  []reportRow      `json:"rows"`
	}](t, w)
	assert.Equal(t, 1, rep.Stats.TotalRecords)
	assert.Equal(t, 100.0, rep.Stats.Rate)
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "Ann", rep.Rows[0].StudentName)

	w = f.do(t, http.MethodGet, "/v1/reports?from=2030-01-01&lang=pt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Nenhum registro de presença encontrado")

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/v1/reports?to=Jan", nil).Code)
}

func TestReports_Export(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, mark(t, f, "p1", "s1", "2024-01-15", true).Code)

	w := f.do(t, http.MethodGet, "/v1/reports/export?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="attendance_report_2024-01-15.csv"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "Attendance Report\n"))
	assert.Contains(t, w.Body.String(), "1/15/2024,Ann,Art,Present")

	w = f.do(t, http.MethodGet, "/v1/reports/export?format=pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, http.MethodGet, "/v1/reports/export?format=xlsx&section=s2", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/v1/reports/export?format=doc", nil).Code)
}

func TestReports_EnqueueExport(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/reports/exports", gin.H{"format": "xlsx", "section": "s1", "language": "tr-TR"})
	require.Equal(t, http.StatusAccepted, w.Code)
	resp := decode[struct {
		JobID string `json:"job_id"`
	}](t, w)
	assert.NotEmpty(t, resp.JobID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := f.jobs.Consume(ctx)
	require.NoError(t, err)
	job, err := export.DecodeJob(<-msgs)
	require.NoError(t, err)
	assert.Equal(t, resp.JobID, job.ID)
	assert.Equal(t, "tr", job.Language)
	assert.Equal(t, "s1", job.Filter.SectionID)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/v1/reports/exports", gin.H{}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/v1/reports/exports", gin.H{"format": "txt"}).Code)
}

func TestPreferences(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/preferences", nil)
	assert.JSONEq(t, `{"language":"en","theme":"light"}`, w.Body.String())

	w = f.do(t, http.MethodPut, "/v1/preferences", gin.H{"language": "pt-BR"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"language":"pt","theme":"light"}`, w.Body.String())

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPut, "/v1/preferences", gin.H{"theme": "blue"}).Code)

	w = f.do(t, http.MethodPost, "/v1/preferences/theme/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"language":"pt","theme":"dark"}`, w.Body.String())

	snap, err := store.Load(context.Background(), f.kv, nil)
	require.NoError(t, err)
	assert.Equal(t, store.Prefs{Language: "pt", Theme: "dark"}, snap.Prefs)
}

func TestRateLimit(t *testing.T) {
	f := newFixture(t)
	sess, err := session.Open(context.Background(), f.kv, nil)
	require.NoError(t, err)
	r := New(sess, f.jobs, nil).Router(Options{RateLimitPerMin: 1})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sections", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/sections", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
