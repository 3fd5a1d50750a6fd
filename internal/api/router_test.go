package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/api"
	"github.com/roomwatch/roomwatch/internal/monitoring"
	"github.com/roomwatch/roomwatch/internal/room"
)

type jobsRecorder struct {
	reconciled []string
	removed    []string
}

func (j *jobsRecorder) ReconcileRoom(rm *room.Room) {
	j.reconciled = append(j.reconciled, rm.ID)
}

func (j *jobsRecorder) RemoveRoom(roomID string) {
	j.removed = append(j.removed, roomID)
}

type testServer struct {
	router   http.Handler
	jobs     *jobsRecorder
	rooms    *room.InMemoryRepository
	alerts   *alert.Manager
	alertsDB *alert.InMemoryRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	rooms := room.NewInMemoryRepository()
	checks := monitoring.NewInMemoryHealthCheckRepository()
	calls := monitoring.NewInMemoryTestCallRepository()
	alertsDB := alert.NewInMemoryRepository()
	alerts := alert.NewManager(alertsDB, nil, zerolog.Nop())
	jobs := &jobsRecorder{}

	router := api.NewRouter(api.RouterConfig{
		Version:      "test",
		BuildTime:    "now",
		Logger:       zerolog.Nop(),
		Rooms:        room.NewService(rooms, checks, calls, alertsDB),
		Jobs:         jobs,
		HealthChecks: checks,
		TestCalls:    calls,
		Alerts:       alerts,
	})

	return &testServer{router: router, jobs: jobs, rooms: rooms, alerts: alerts, alertsDB: alertsDB}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestRooms_CRUD(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/rooms", `{"name":"Boardroom","ipAddress":"10.0.0.5","testCallEnabled":true,"testCallTime":"08:30"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID           string `json:"id"`
		Status       string `json:"status"`
		TestCallTime string `json:"testCallTime"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "unknown", created.Status)
	assert.Equal(t, "08:30", created.TestCallTime)
	assert.Equal(t, []string{created.ID}, s.jobs.reconciled)
	assert.Equal(t, "/v1/rooms/"+created.ID, rec.Header().Get("Location"))

	rec = s.do(t, http.MethodGet, "/v1/rooms/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Items, 1)

	rec = s.do(t, http.MethodPut, "/v1/rooms/"+created.ID, `{"name":"Boardroom West","healthCheckEnabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Boardroom West")
	assert.Len(t, s.jobs.reconciled, 2)

	rec = s.do(t, http.MethodDelete, "/v1/rooms/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{created.ID}, s.jobs.removed)

	rec = s.do(t, http.MethodGet, "/v1/rooms/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRooms_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/rooms", `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem struct {
		Status int    `json:"status"`
		Title  string `json:"title"`
		Errors []struct {
			Field string `json:"field"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusBadRequest, problem.Status)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "name", problem.Errors[0].Field)
	assert.Empty(t, s.jobs.reconciled)
}

func TestRooms_InvalidTestCallTime(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/rooms", `{"name":"Boardroom","testCallTime":"25:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlerts_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	rm := &room.Room{ID: "rm_1", Name: "Boardroom"}
	require.NoError(t, s.rooms.Create(context.Background(), rm))
	raised, err := s.alerts.Raise(context.Background(), rm, alert.TypeHealthCheckFail, alert.SeverityHigh,
		"Health Check Failed - Boardroom", "Health check failed for room Boardroom. Error: timeout")
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/v1/alerts/?status=open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), raised.ID)

	rec = s.do(t, http.MethodPost, "/v1/alerts/"+raised.ID+"/acknowledge", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"acknowledged"`)

	rec = s.do(t, http.MethodPost, "/v1/alerts/"+raised.ID+"/resolve", `{"resolvedBy":"ops@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"resolved"`)
	assert.Contains(t, rec.Body.String(), "ops@example.com")

	rec = s.do(t, http.MethodGet, "/v1/alerts/?status=open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), raised.ID)
}

func TestAlerts_InvalidStatusFilter(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/alerts/?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOps_Health(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/ops/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestOps_Ready_NoDatabase(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/ops/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
