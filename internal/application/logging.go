package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/workspace-planner/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = defaultLogger(base)
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	pairs = append(pairs, attrs...)
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var stale *StaleVersionError
	if errors.As(err, &stale) {
		return "stale_version"
	}

	return "unexpected"
}

// isRejection reports errors that describe a refused request rather than a
// failure; they are logged below error level.
func isRejection(err error) bool {
	switch ErrorKind(err) {
	case "", "unexpected":
		return false
	}
	return true
}

func logOutcome(ctx context.Context, logger *slog.Logger, err error, failure, success string) {
	switch {
	case err == nil:
		logger.InfoContext(ctx, success)
	case isRejection(err):
		logger.WarnContext(ctx, failure, "error", err, "error_kind", ErrorKind(err))
	default:
		logger.ErrorContext(ctx, failure, "error", err, "error_kind", ErrorKind(err))
	}
}
