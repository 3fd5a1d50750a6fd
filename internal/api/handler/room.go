// Package handler provides HTTP handlers for the monitoring API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roomwatch/roomwatch/internal/api/models"
	"github.com/roomwatch/roomwatch/internal/api/response"
	"github.com/roomwatch/roomwatch/internal/room"
)

// Jobs keeps the scheduler's per-room jobs aligned with configuration
// changes made through the API.
type Jobs interface {
	ReconcileRoom(rm *room.Room)
	RemoveRoom(roomID string)
}

// RoomHandler handles room configuration endpoints.
type RoomHandler struct {
	service *room.Service
	jobs    Jobs
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(service *room.Service, jobs Jobs) *RoomHandler {
	return &RoomHandler{service: service, jobs: jobs}
}

// ListRooms handles GET /v1/rooms.
func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), queryLimit(r))
	if err != nil {
		response.InternalError(w, r, "failed to list rooms")
		return
	}
	response.JSON(w, r, http.StatusOK, models.RoomList{Items: models.RoomsFromDomain(result.Items)})
}

// GetRoom handles GET /v1/rooms/{roomId}.
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := h.service.Get(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		writeRoomError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.RoomFromDomain(rm))
}

// CreateRoom handles POST /v1/rooms.
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req models.RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	rm, err := h.service.Create(r.Context(), roomInput(&req, true))
	if err != nil {
		writeRoomError(w, r, err)
		return
	}

	h.jobs.ReconcileRoom(rm)
	response.Created(w, r, "/v1/rooms/"+rm.ID, models.RoomFromDomain(rm))
}

// UpdateRoom handles PUT /v1/rooms/{roomId}. The body is a full
// representation; omitted flags read as false.
func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	var req models.RoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid request body", nil)
		return
	}

	rm, err := h.service.Update(r.Context(), chi.URLParam(r, "roomId"), roomInput(&req, false))
	if err != nil {
		writeRoomError(w, r, err)
		return
	}

	h.jobs.ReconcileRoom(rm)
	response.JSON(w, r, http.StatusOK, models.RoomFromDomain(rm))
}

// DeleteRoom handles DELETE /v1/rooms/{roomId}. Deleting a room removes its
// monitoring history, alerts and scheduled jobs.
func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if err := h.service.Delete(r.Context(), roomID); err != nil {
		writeRoomError(w, r, err)
		return
	}

	h.jobs.RemoveRoom(roomID)
	response.NoContent(w, r)
}

// roomInput maps the request body onto the service input. On create an
// omitted healthCheckEnabled defaults to true so new rooms join the fleet
// sweep immediately.
func roomInput(req *models.RoomRequest, create bool) *room.Input {
	in := &room.Input{
		Name:        req.Name,
		Location:    req.Location,
		IPAddress:   req.IPAddress,
		WebexRoomID: req.WebexRoomID,
		DeviceType:  req.DeviceType,
	}
	if req.HealthCheckEnabled != nil {
		in.HealthCheckEnabled = *req.HealthCheckEnabled
	} else if create {
		in.HealthCheckEnabled = true
	}
	if req.TestCallEnabled != nil {
		in.TestCallEnabled = *req.TestCallEnabled
	}
	if req.TestCallTime != nil {
		in.TestCallTime = *req.TestCallTime
	}
	return in
}

func writeRoomError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *room.ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, r, "invalid room", []models.FieldError{{Field: verr.Field, Message: verr.Message}})
	case errors.Is(err, room.ErrRoomNotFound):
		response.NotFound(w, r, "room not found")
	default:
		response.InternalError(w, r, "room operation failed")
	}
}
