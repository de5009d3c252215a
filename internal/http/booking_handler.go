package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/workspace-planner/internal/allocation"
	"github.com/example/workspace-planner/internal/application"
)

type bookingService interface {
	RecommendDesks(ctx context.Context, query allocation.DeskQuery) ([]allocation.DeskRecommendation, error)
	ScheduleBestFit(ctx context.Context, principal application.Principal, input application.MeetingInput) (allocation.MeetingResult, error)
	ScheduleInRoom(ctx context.Context, principal application.Principal, roomID string, input application.MeetingInput) (allocation.MeetingResult, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

// Recommendations answers GET /desks/recommendations?needs_workstation=&floor=.
func (h *BookingHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	query := allocation.DeskQuery{FloorID: r.URL.Query().Get("floor")}
	if raw := r.URL.Query().Get("needs_workstation"); raw != "" {
		needs, err := strconv.ParseBool(raw)
		if err != nil {
			h.responder.handleServiceError(r.Context(), w, &application.ValidationError{
				FieldErrors: map[string]string{"needs_workstation": "needs_workstation must be true or false"},
			})
			return
		}
		query.NeedsWorkstation = needs
	}

	recs, err := h.service.RecommendDesks(r.Context(), query)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	out := make([]deskRecommendationDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDeskRecommendationDTO(rec))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, recommendationsResponse{Recommendations: out})
}

// ScheduleBestFit answers POST /meetings.
func (h *BookingHandler) ScheduleBestFit(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req meetingRequest
	if !h.decode(w, r, "ScheduleBestFit", &req) {
		return
	}

	result, err := h.service.ScheduleBestFit(r.Context(), principal, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, meetingStatus(result.Outcome), result)
}

// ScheduleInRoom answers POST /rooms/{roomID}/meetings.
func (h *BookingHandler) ScheduleInRoom(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	roomID := chi.URLParam(r, "roomID")

	var req roomMeetingRequest
	if !h.decode(w, r, "ScheduleInRoom", &req) {
		return
	}

	result, err := h.service.ScheduleInRoom(r.Context(), principal, roomID, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, meetingStatus(result.Outcome), result)
}

func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request, operation string, dst any) bool {
	err := decodeRequest(r, dst)
	if err == nil {
		return true
	}
	if errors.Is(err, errBadRequestBody) {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode meeting request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return false
	}
	h.responder.handleServiceError(r.Context(), w, err)
	return false
}

// meetingStatus maps a reservation outcome to a status code. The body always
// carries the full result so clients can show suggestions.
func meetingStatus(outcome allocation.Outcome) int {
	switch outcome {
	case allocation.OutcomeBooked:
		return http.StatusCreated
	case allocation.OutcomeOverlap, allocation.OutcomeAllSlotsConflicted:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

type meetingRequest struct {
	Title     string    `json:"title" validate:"max=120"`
	Attendees int       `json:"attendees" validate:"required,min=1"`
	FloorID   string    `json:"floor_id"`
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required,gtfield=Start"`
}

func (m meetingRequest) toInput() application.MeetingInput {
	return application.MeetingInput{
		Title:     m.Title,
		Attendees: m.Attendees,
		FloorID:   m.FloorID,
		Start:     m.Start,
		End:       m.End,
	}
}

// roomMeetingRequest books a named room; attendees is optional and only
// checked against capacity when given.
type roomMeetingRequest struct {
	Title     string    `json:"title" validate:"max=120"`
	Attendees int       `json:"attendees" validate:"min=0"`
	Start     time.Time `json:"start" validate:"required"`
	End       time.Time `json:"end" validate:"required,gtfield=Start"`
}

func (m roomMeetingRequest) toInput() application.MeetingInput {
	return application.MeetingInput{
		Title:     m.Title,
		Attendees: m.Attendees,
		Start:     m.Start,
		End:       m.End,
	}
}

type deskRecommendationDTO struct {
	RoomID     string     `json:"room_id"`
	Name       string     `json:"name"`
	FloorID    string     `json:"floor_id"`
	Category   string     `json:"category"`
	Capacity   int        `json:"capacity"`
	Occupants  int        `json:"occupants"`
	Features   []string   `json:"features"`
	IsFull     bool       `json:"is_full"`
	NextFreeAt *time.Time `json:"next_free_at,omitempty"`
}

func toDeskRecommendationDTO(rec allocation.DeskRecommendation) deskRecommendationDTO {
	features := rec.Room.Features
	if features == nil {
		features = []string{}
	}
	return deskRecommendationDTO{
		RoomID:     rec.Room.ID,
		Name:       rec.Room.Name,
		FloorID:    rec.Room.FloorID,
		Category:   string(rec.Room.Category),
		Capacity:   rec.Room.Capacity,
		Occupants:  len(rec.Room.Occupants),
		Features:   features,
		IsFull:     rec.IsFull,
		NextFreeAt: rec.NextFreeAt,
	}
}

type recommendationsResponse struct {
	Recommendations []deskRecommendationDTO `json:"recommendations"`
}
