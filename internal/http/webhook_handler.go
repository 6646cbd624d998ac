package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/court-reservations/internal/logging"
)

const maxWebhookBodyBytes = 64 << 10

// MessageHandler turns one inbound chat message into one reply.
type MessageHandler interface {
	HandleMessage(ctx context.Context, from, body string) string
}

// WebhookHandler receives chat messages from the messaging provider.
type WebhookHandler struct {
	messages  MessageHandler
	logger    *slog.Logger
	responder responder
}

// NewWebhookHandler constructs a webhook handler.
func NewWebhookHandler(messages MessageHandler, logger *slog.Logger) *WebhookHandler {
	logger = logging.OrDefault(logger)
	return &WebhookHandler{messages: messages, logger: logger, responder: newResponder(logger)}
}

// Receive handles POST /whatsapp.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.For(ctx, h.logger).With("handler", "webhook")

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "invalid webhook form", "error", err)
		h.responder.writeText(ctx, w, http.StatusBadRequest, "invalid form body")
		return
	}

	from := strings.TrimSpace(r.PostForm.Get("From"))
	if from == "" {
		logger.WarnContext(ctx, "webhook without sender")
		h.responder.writeText(ctx, w, http.StatusBadRequest, "missing From")
		return
	}

	reply := h.messages.HandleMessage(ctx, from, r.PostForm.Get("Body"))
	h.responder.writeTwiML(ctx, w, reply)
}
