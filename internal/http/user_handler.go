package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/workspace-planner/internal/application"
	"github.com/example/workspace-planner/internal/directory"
)

type userService interface {
	Register(ctx context.Context, principal application.Principal, input application.UserInput) (directory.User, error)
	Get(ctx context.Context, principal application.Principal, id string) (directory.User, error)
	List(ctx context.Context, principal application.Principal) ([]directory.User, error)
}

// UserHandler exposes account registration and lookup.
type UserHandler struct {
	service   userService
	responder responder
	logger    *slog.Logger
}

func NewUserHandler(service userService, logger *slog.Logger) *UserHandler {
	base := defaultLogger(logger)
	return &UserHandler{service: service, responder: newResponder(base), logger: base}
}

// Register answers POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req registerUserRequest
	if err := decodeRequest(r, &req); err != nil {
		if errors.Is(err, errBadRequestBody) {
			handlerLogger(r.Context(), h.logger, "UserHandler", "Register", "error_kind", "bad_request").
				WarnContext(r.Context(), "failed to decode registration request", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	user, err := h.service.Register(r.Context(), principal, application.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     directory.Role(req.Role),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	w.Header().Set("Location", "/users/"+user.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, user)
}

// Get answers GET /users/{userID}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	user, err := h.service.Get(r.Context(), principal, chi.URLParam(r, "userID"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, user)
}

// List answers GET /users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	users, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, users)
}

type registerUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN EMPLOYEE"`
}
