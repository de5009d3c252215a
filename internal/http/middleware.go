package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/example/workspace-planner/internal/application"
	"github.com/example/workspace-planner/internal/directory"
)

// Authenticator resolves Basic credentials to a directory account.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (directory.User, error)
}

// RequireUser authenticates every request with HTTP Basic credentials and
// stores the principal in the request context.
func RequireUser(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login, password, ok := r.BasicAuth()
			if !ok || login == "" {
				w.Header().Set("WWW-Authenticate", `Basic realm="workspace"`)
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingCredentials)
				return
			}

			user, err := auth.Authenticate(r.Context(), login, password)
			if err != nil {
				if errors.Is(err, application.ErrInvalidCredentials) {
					w.Header().Set("WWW-Authenticate", `Basic realm="workspace"`)
				}
				responder.handleServiceError(r.Context(), w, err)
				return
			}

			principal := application.PrincipalFromUser(user)
			ctx := ContextWithPrincipal(r.Context(), principal)
			if logger := LoggerFromContext(ctx); logger != nil {
				ctx = ContextWithLogger(ctx, logger.With("principal_id", principal.UserID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a request scoped logger and logs start and
// completion. The chi request id is used when present.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = defaultLogger(base)
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id any = chimiddleware.GetReqID(r.Context())
			if id == "" {
				id = counter.Add(1)
			}
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(ww, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", ww.Status(), "duration", time.Since(start))
		})
	}
}
