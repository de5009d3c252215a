package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig lists the handlers and collaborators mounted by NewRouter.
// Nil handlers leave their routes unmounted.
type RouterConfig struct {
	FloorPlans *FloorPlanHandler
	Bookings   *BookingHandler
	CheckIns   *CheckInHandler
	Users      *UserHandler
	// Auth guards every route except /health and /metrics.
	Auth    Authenticator
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewRouter builds the chi router serving the workspace API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		newResponder(cfg.Logger).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(RequireUser(cfg.Auth, cfg.Logger))
		}

		if h := cfg.FloorPlans; h != nil {
			r.Get("/floorplan", h.Get)
			r.Put("/floorplan", h.Put)
			r.Get("/floorplan/stream", h.Stream)
			r.Post("/ops/external-mutation", h.ExternalMutation)
			r.Get("/alerts", h.Alerts)
			r.Get("/floors/{floorID}/stats", h.FloorStats)
			r.Get("/rooms/{roomID}/schedule", h.RoomSchedule)
		}
		if h := cfg.Bookings; h != nil {
			r.Get("/desks/recommendations", h.Recommendations)
			r.Post("/meetings", h.ScheduleBestFit)
			r.Post("/rooms/{roomID}/meetings", h.ScheduleInRoom)
		}
		if h := cfg.CheckIns; h != nil {
			r.Post("/checkins", h.CheckIn)
			r.Delete("/checkins/current", h.CheckOut)
		}
		if h := cfg.Users; h != nil {
			r.Get("/users", h.List)
			r.Post("/users", h.Register)
			r.Get("/users/{userID}", h.Get)
		}
	})

	return r
}
