package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/example/court-reservations/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger attaches a request scoped logger to the context and logs the
// start and completion of every request.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = logging.OrDefault(base)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := logging.ContextWithLogger(r.Context(), logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Header().Set(requestIDHeader, id)

			start := time.Now()
			logger.InfoContext(ctx, "request started", "remote_addr", r.RemoteAddr)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.InfoContext(ctx, "request completed",
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
