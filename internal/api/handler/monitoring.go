package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomwatch/roomwatch/internal/api/models"
	"github.com/roomwatch/roomwatch/internal/api/response"
	"github.com/roomwatch/roomwatch/internal/call"
	"github.com/roomwatch/roomwatch/internal/health"
	"github.com/roomwatch/roomwatch/internal/monitoring"
	"github.com/roomwatch/roomwatch/internal/room"
)

// MonitoringHandler handles manual check triggers and record listings.
type MonitoringHandler struct {
	health *health.Assessor
	calls  *call.Orchestrator
	checks monitoring.HealthCheckRepository
	rec    monitoring.TestCallRepository
}

// NewMonitoringHandler creates a new MonitoringHandler.
func NewMonitoringHandler(h *health.Assessor, c *call.Orchestrator, checks monitoring.HealthCheckRepository, rec monitoring.TestCallRepository) *MonitoringHandler {
	return &MonitoringHandler{health: h, calls: c, checks: checks, rec: rec}
}

// TriggerHealthCheck handles POST /v1/rooms/{roomId}/health-check. The check
// runs synchronously and the snapshot is returned.
func (h *MonitoringHandler) TriggerHealthCheck(w http.ResponseWriter, r *http.Request) {
	hc, err := h.health.Check(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			response.NotFound(w, r, "room not found")
			return
		}
		response.InternalError(w, r, "health check failed")
		return
	}
	response.JSON(w, r, http.StatusOK, models.HealthCheckFromDomain(hc))
}

// TriggerTestCall handles POST /v1/rooms/{roomId}/test-call. The call is
// started and torn down later by its scheduled job; the in-flight record is
// returned immediately.
func (h *MonitoringHandler) TriggerTestCall(w http.ResponseWriter, r *http.Request) {
	tc, err := h.calls.Start(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			response.NotFound(w, r, "room not found")
			return
		}
		if tc != nil {
			// The call record exists in the failed state; report it with
			// the failure status.
			response.JSON(w, r, http.StatusBadGateway, models.TestCallFromDomain(tc))
			return
		}
		response.InternalError(w, r, "test call failed to start")
		return
	}
	response.JSON(w, r, http.StatusAccepted, models.TestCallFromDomain(tc))
}

// ListHealthChecks handles GET /v1/rooms/{roomId}/health-checks.
func (h *MonitoringHandler) ListHealthChecks(w http.ResponseWriter, r *http.Request) {
	checks, err := h.checks.ListByRoom(r.Context(), chi.URLParam(r, "roomId"), monitoring.ListOptions{Limit: queryLimit(r)})
	if err != nil {
		response.InternalError(w, r, "failed to list health checks")
		return
	}
	response.JSON(w, r, http.StatusOK, models.HealthCheckList{Items: models.HealthChecksFromDomain(checks)})
}

// ListTestCalls handles GET /v1/rooms/{roomId}/test-calls.
func (h *MonitoringHandler) ListTestCalls(w http.ResponseWriter, r *http.Request) {
	calls, err := h.rec.ListByRoom(r.Context(), chi.URLParam(r, "roomId"), monitoring.ListOptions{Limit: queryLimit(r)})
	if err != nil {
		response.InternalError(w, r, "failed to list test calls")
		return
	}
	response.JSON(w, r, http.StatusOK, models.TestCallList{Items: models.TestCallsFromDomain(calls)})
}
