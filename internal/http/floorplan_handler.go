package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/example/workspace-planner/internal/application"
	"github.com/example/workspace-planner/internal/floorplan"
	"github.com/example/workspace-planner/internal/occupancy"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

type floorPlanService interface {
	Get(ctx context.Context) (floorplan.FloorPlan, error)
	Commit(ctx context.Context, principal application.Principal, candidate floorplan.FloorPlan) (floorplan.FloorPlan, error)
	TriggerExternalMutation(ctx context.Context, principal application.Principal) (floorplan.FloorPlan, error)
	Alerts(ctx context.Context) ([]occupancy.Alert, error)
	FloorStats(ctx context.Context, floorID string) (occupancy.FloorStats, error)
	UpcomingSchedule(ctx context.Context, roomID string) ([]floorplan.Booking, error)
}

// Subscriber delivers committed plans to the change stream.
type Subscriber interface {
	Subscribe() (<-chan floorplan.FloorPlan, func())
}

// StreamObserver counts open stream connections.
type StreamObserver interface {
	StreamOpened()
	StreamClosed()
}

type FloorPlanHandler struct {
	service   floorPlanService
	changes   Subscriber
	observer  StreamObserver
	upgrader  websocket.Upgrader
	responder responder
	logger    *slog.Logger
}

func NewFloorPlanHandler(service floorPlanService, changes Subscriber, observer StreamObserver, logger *slog.Logger) *FloorPlanHandler {
	base := defaultLogger(logger)
	return &FloorPlanHandler{
		service:  service,
		changes:  changes,
		observer: observer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *FloorPlanHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "FloorPlanHandler", operation, attrs...)
}

func (h *FloorPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.Get(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, plan)
}

// Put commits the submitted plan. The body is a full floor plan carrying the
// version the caller wants to create.
func (h *FloorPlanHandler) Put(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var candidate floorplan.FloorPlan
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		h.log(r.Context(), "Put", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode floor plan", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	plan, err := h.service.Commit(r.Context(), principal, candidate)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, plan)
}

func (h *FloorPlanHandler) ExternalMutation(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	plan, err := h.service.TriggerExternalMutation(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, plan)
}

func (h *FloorPlanHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.service.Alerts(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if alerts == nil {
		alerts = []occupancy.Alert{}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, alertsResponse{Alerts: alerts})
}

func (h *FloorPlanHandler) FloorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.FloorStats(r.Context(), chi.URLParam(r, "floorID"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, stats)
}

func (h *FloorPlanHandler) RoomSchedule(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.UpcomingSchedule(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, scheduleResponse{Bookings: bookings})
}

// Stream upgrades to a websocket, sends the current plan and then every
// committed plan. A slow client skips intermediate versions.
func (h *FloorPlanHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.log(ctx, "Stream")

	// Subscribe before reading so no commit falls between the two.
	updates, cancel := h.changes.Subscribe()
	defer cancel()

	current, err := h.service.Get(ctx)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	if h.observer != nil {
		h.observer.StreamOpened()
		defer h.observer.StreamClosed()
	}
	logger.InfoContext(ctx, "stream opened", "version", current.Version)

	// The client never sends data; reading surfaces its close frame.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(plan floorplan.FloorPlan) error {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		return conn.WriteJSON(plan)
	}
	if err := send(current); err != nil {
		logger.WarnContext(ctx, "stream write failed", "error", err)
		return
	}
	sent := current.Version

	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			logger.InfoContext(ctx, "stream closed by client")
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteTimeout)); err != nil {
				return
			}
		case plan, ok := <-updates:
			if !ok {
				return
			}
			if plan.Version <= sent {
				continue
			}
			if err := send(plan); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					logger.WarnContext(ctx, "stream write failed", "error", err)
				}
				return
			}
			sent = plan.Version
		}
	}
}

type alertsResponse struct {
	Alerts []occupancy.Alert `json:"alerts"`
}

type scheduleResponse struct {
	Bookings []floorplan.Booking `json:"bookings"`
}
