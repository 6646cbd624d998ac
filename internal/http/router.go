package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Webhook    *WebhookHandler
	Health     *HealthHandler
	Logger     *slog.Logger
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	if cfg.Health != nil {
		r.Get("/", cfg.Health.Live)
		r.Get("/healthz", cfg.Health.Ready)
	}
	if cfg.Webhook != nil {
		r.Post("/whatsapp", cfg.Webhook.Receive)
	}

	return r
}
