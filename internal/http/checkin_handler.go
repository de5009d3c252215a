package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/workspace-planner/internal/application"
	"github.com/example/workspace-planner/internal/floorplan"
)

type checkInService interface {
	CheckIn(ctx context.Context, principal application.Principal, input application.CheckInInput) (floorplan.Booking, error)
	CheckOut(ctx context.Context, principal application.Principal) ([]string, error)
}

type CheckInHandler struct {
	service   checkInService
	responder responder
	logger    *slog.Logger
}

func NewCheckInHandler(service checkInService, logger *slog.Logger) *CheckInHandler {
	base := defaultLogger(logger)
	return &CheckInHandler{service: service, responder: newResponder(base), logger: base}
}

// CheckIn answers POST /checkins.
func (h *CheckInHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req checkInRequest
	if err := decodeRequest(r, &req); err != nil {
		if errors.Is(err, errBadRequestBody) {
			handlerLogger(r.Context(), h.logger, "CheckInHandler", "CheckIn", "error_kind", "bad_request").
				WarnContext(r.Context(), "failed to decode check-in request", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	booking, err := h.service.CheckIn(r.Context(), principal, application.CheckInInput{
		RoomID:           req.RoomID,
		Duration:         time.Duration(req.DurationMinutes) * time.Minute,
		NeedsWorkstation: req.NeedsWorkstation,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, checkInResponse{RoomID: req.RoomID, Booking: booking})
}

// CheckOut answers DELETE /checkins/current.
func (h *CheckInHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	left, err := h.service.CheckOut(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if left == nil {
		left = []string{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checkOutResponse{RoomsLeft: left})
}

type checkInRequest struct {
	RoomID           string `json:"room_id" validate:"required"`
	DurationMinutes  int    `json:"duration_minutes" validate:"min=0,max=1440"`
	NeedsWorkstation bool   `json:"needs_workstation"`
}

type checkInResponse struct {
	RoomID  string            `json:"room_id"`
	Booking floorplan.Booking `json:"booking"`
}

type checkOutResponse struct {
	RoomsLeft []string `json:"rooms_left"`
}
