package server

import (
	"net/http"

	"github.com/clausewise/counselai/internal/api"
	"github.com/clausewise/counselai/internal/api/handlers"
	"github.com/clausewise/counselai/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AgentHandler  *handlers.AgentHandler
	IngestHandler *handlers.IngestHandler
	AskHandler    *handlers.AskHandler
	AlertHandler  *handlers.AlertHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/agents", func(r chi.Router) {
		r.Post("/", cfg.AgentHandler.Create)
		r.Get("/", cfg.AgentHandler.List)

		r.Route("/{agentID}", func(r chi.Router) {
			r.Get("/", cfg.AgentHandler.Get)
			r.Post("/context", cfg.AgentHandler.SetBusinessContext)
			r.Put("/status", cfg.AgentHandler.SetStatus)

			r.Post("/messages", cfg.IngestHandler.IngestMessage)
			r.Post("/documents", cfg.IngestHandler.IngestDocument)
			r.Get("/documents", cfg.IngestHandler.ListDocuments)

			r.Post("/ask", cfg.AskHandler.Ask)
			r.Get("/history", cfg.AskHandler.History)

			r.Post("/sweep", cfg.AlertHandler.Sweep)
			r.Get("/alerts", cfg.AlertHandler.List)
		})
	})

	r.Post("/alerts/{alertID}/ack", cfg.AlertHandler.Acknowledge)

	return r
}
