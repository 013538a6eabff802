package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avelichka/steptrack/internal/csvcodec"
	"github.com/avelichka/steptrack/internal/models"
	"github.com/avelichka/steptrack/internal/service"
	"github.com/avelichka/steptrack/internal/storage"
)

type fakeDashboardService struct {
	SaveProfileFn      func(ctx context.Context, name string, goal int) (*models.UserProfile, error)
	AddEntryFn         func(ctx context.Context, name, date string, steps int) error
	ComputeDashboardFn func(ctx context.Context, name string, today time.Time) (*service.Dashboard, error)
	ExportCSVFn        func(ctx context.Context, name string) (string, error)
	ImportCSVFn        func(ctx context.Context, name, text string) (int, error)
	ResetFn            func(ctx context.Context, name string) error
}

func (f *fakeDashboardService) SaveProfile(ctx context.Context, name string, goal int) (*models.UserProfile, error) {
	return f.SaveProfileFn(ctx, name, goal)
}

func (f *fakeDashboardService) AddEntry(ctx context.Context, name, date string, steps int) error {
	return f.AddEntryFn(ctx, name, date, steps)
}

func (f *fakeDashboardService) ComputeDashboard(ctx context.Context, name string, today time.Time) (*service.Dashboard, error) {
	return f.ComputeDashboardFn(ctx, name, today)
}

func (f *fakeDashboardService) ExportCSV(ctx context.Context, name string) (string, error) {
	return f.ExportCSVFn(ctx, name)
}

func (f *fakeDashboardService) ImportCSV(ctx context.Context, name, text string) (int, error) {
	return f.ImportCSVFn(ctx, name, text)
}

func (f *fakeDashboardService) Reset(ctx context.Context, name string) error {
	return f.ResetFn(ctx, name)
}

func newTestServer(dash DashboardService, team TeamService) *httptest.Server {
	router := NewRouter(
		&ProfileHandler{Service: dash},
		&TeamHandler{Service: team},
		zap.NewNop(),
	)
	return httptest.NewServer(router)
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestProfileSave(t *testing.T) {
	dash := &fakeDashboardService{
		SaveProfileFn: func(ctx context.Context, name string, goal int) (*models.UserProfile, error) {
			assert.Equal(t, "alice", name)
			assert.Equal(t, 70000, goal)
			return &models.UserProfile{Name: name, WeeklyGoal: goal, Entries: []models.StepEntry{}}, nil
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodPut, "/api/profiles/alice", "application/json", `{"weeklyGoal":70000}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"alice","weeklyGoal":70000,"entries":0}`, readBody(t, resp))
}

func TestProfileSave_InvalidBody(t *testing.T) {
	srv := newTestServer(&fakeDashboardService{}, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodPut, "/api/profiles/alice", "application/json", `{"weeklyGoal":`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileSave_UnsupportedContentType(t *testing.T) {
	srv := newTestServer(&fakeDashboardService{}, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodPut, "/api/profiles/alice", "text/plain", `{"weeklyGoal":1}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestAddEntryRoute(t *testing.T) {
	dash := &fakeDashboardService{
		AddEntryFn: func(ctx context.Context, name, date string, steps int) error {
			assert.Equal(t, "alice", name)
			assert.Equal(t, "2024-06-03", date)
			assert.Equal(t, 2500, steps)
			return nil
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodPost, "/api/profiles/alice/entries", "application/json",
		`{"date":"2024-06-03","steps":2500}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAddEntryRoute_InvalidInput(t *testing.T) {
	dash := &fakeDashboardService{
		AddEntryFn: func(ctx context.Context, name, date string, steps int) error {
			return models.ErrInvalidInput
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodPost, "/api/profiles/alice/entries", "application/json",
		`{"date":"bad","steps":-2}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardRoute(t *testing.T) {
	dash := &fakeDashboardService{
		ComputeDashboardFn: func(ctx context.Context, name string, today time.Time) (*service.Dashboard, error) {
			assert.Equal(t, "2024-06-05", today.Format(models.DateLayout))
			return &service.Dashboard{
				Name:      name,
				WeekStart: "2024-06-03",
				WeekEnd:   "2024-06-09",
				Total:     3000,
				Goal:      10000,
				Percent:   30,
			}, nil
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/api/profiles/alice/dashboard?date=2024-06-05", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t,
		`{"name":"alice","weekStart":"2024-06-03","weekEnd":"2024-06-09","total":3000,"goal":10000,"percent":30}`,
		readBody(t, resp))
}

func TestDashboardRoute_BadDate(t *testing.T) {
	srv := newTestServer(&fakeDashboardService{}, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/api/profiles/alice/dashboard?date=tomorrow", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardRoute_UnknownProfile(t *testing.T) {
	dash := &fakeDashboardService{
		ComputeDashboardFn: func(ctx context.Context, name string, today time.Time) (*service.Dashboard, error) {
			return nil, storage.ErrNotFound
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/api/profiles/ghost/dashboard", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportRoute(t *testing.T) {
	dash := &fakeDashboardService{
		ExportCSVFn: func(ctx context.Context, name string) (string, error) {
			return "date,steps\n2024-06-03,1000\n", nil
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/api/profiles/alice/export", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Equal(t, "date,steps\n2024-06-03,1000\n", readBody(t, resp))
}

func TestImportRoute(t *testing.T) {
	dash := &fakeDashboardService{
		ImportCSVFn: func(ctx context.Context, name, text string) (int, error) {
			assert.Equal(t, "date,steps\n2024-06-03,1000\n", text)
			return 1, nil
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodPost, "/api/profiles/alice/import", "text/csv",
		"date,steps\n2024-06-03,1000\n")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"imported":1}`, readBody(t, resp))
}

func TestImportRoute_BadLine(t *testing.T) {
	dash := &fakeDashboardService{
		ImportCSVFn: func(ctx context.Context, name, text string) (int, error) {
			return 0, &csvcodec.ParseError{Line: 3, Msg: `non-numeric steps "abc"`}
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodPost, "/api/profiles/alice/import", "text/csv",
		"date,steps\n2024-06-03,1000\n2024-06-04,abc\n")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "csv line 3")
}

func TestResetRoute(t *testing.T) {
	reset := ""
	dash := &fakeDashboardService{
		ResetFn: func(ctx context.Context, name string) error {
			reset = name
			return nil
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodDelete, "/api/profiles/alice", "", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", reset)
}

func TestStorageFailureIs500(t *testing.T) {
	dash := &fakeDashboardService{
		ExportCSVFn: func(ctx context.Context, name string) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	srv := newTestServer(dash, &fakeTeamService{})
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/api/profiles/alice/export", "", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	// internals stay out of the response body
	assert.NotContains(t, readBody(t, resp), "connection refused")
}
