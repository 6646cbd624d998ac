package http

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"log/slog"
	"net/http"

	"github.com/example/court-reservations/internal/logging"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: logging.OrDefault(logger)}
}

// twimlResponse is the messaging provider's reply document.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func (r responder) writeTwiML(ctx context.Context, w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		logging.For(ctx, r.logger).ErrorContext(ctx, "failed to write response", "error", err)
		return
	}
	if err := xml.NewEncoder(w).Encode(twimlResponse{Message: message}); err != nil {
		logging.For(ctx, r.logger).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.For(ctx, r.logger).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeText(ctx context.Context, w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(text)); err != nil {
		logging.For(ctx, r.logger).ErrorContext(ctx, "failed to write response", "error", err)
	}
}
