package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/court-reservations/internal/logging"
)

func serviceLogger(ctx context.Context, base *slog.Logger, service, operation string, attrs ...any) *slog.Logger {
	return logging.For(ctx, base).With("service", service, "operation", operation).With(attrs...)
}

// ErrorKind labels err for the error_kind log attribute.
func ErrorKind(err error) string {
	var vErr *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.As(err, &vErr):
		return "validation"
	default:
		return "unexpected"
	}
}
