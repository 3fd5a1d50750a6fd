package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomwatch/roomwatch/internal/alert"
	"github.com/roomwatch/roomwatch/internal/api/models"
	"github.com/roomwatch/roomwatch/internal/api/response"
)

// AlertHandler handles alert listing and lifecycle endpoints.
type AlertHandler struct {
	manager *alert.Manager
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(manager *alert.Manager) *AlertHandler {
	return &AlertHandler{manager: manager}
}

// ListAlerts handles GET /v1/alerts with optional status and roomId filters.
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	opts := alert.ListOptions{
		Limit:  queryLimit(r),
		Status: alert.Status(r.URL.Query().Get("status")),
		RoomID: r.URL.Query().Get("roomId"),
	}

	switch opts.Status {
	case "", alert.StatusOpen, alert.StatusAcknowledged, alert.StatusResolved:
	default:
		response.BadRequest(w, r, "invalid status filter", []models.FieldError{{Field: "status", Message: "must be open, acknowledged or resolved"}})
		return
	}

	alerts, err := h.manager.List(r.Context(), opts)
	if err != nil {
		response.InternalError(w, r, "failed to list alerts")
		return
	}
	response.JSON(w, r, http.StatusOK, models.AlertList{Items: models.AlertsFromDomain(alerts)})
}

// AcknowledgeAlert handles POST /v1/alerts/{alertId}/acknowledge.
func (h *AlertHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	a, err := h.manager.Acknowledge(r.Context(), chi.URLParam(r, "alertId"))
	if err != nil {
		writeAlertError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.AlertFromDomain(a))
}

// ResolveAlert handles POST /v1/alerts/{alertId}/resolve.
func (h *AlertHandler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveAlertRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, r, "invalid request body", nil)
			return
		}
	}

	a, err := h.manager.Resolve(r.Context(), chi.URLParam(r, "alertId"), req.ResolvedBy)
	if err != nil {
		writeAlertError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.AlertFromDomain(a))
}

func writeAlertError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, alert.ErrAlertNotFound) {
		response.NotFound(w, r, "alert not found")
		return
	}
	response.InternalError(w, r, "alert operation failed")
}
