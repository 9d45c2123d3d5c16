package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/metrics"
)

// NewRouter creates a new HTTP router with all API endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(Recovery)
	r.Use(middleware.RequestID)
	r.Use(Logger)
	r.Use(CORS)

	r.Get("/health", h.Health)
	r.Handle("/metrics", metrics.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/list", h.GetList)
		r.Head("/list", h.GetList)
		r.Post("/list/refresh", h.RefreshList)

		r.Get("/status", h.GetStatus)
		r.Get("/endpoints", h.GetEndpoints)
		r.Get("/check/{ip}", h.CheckAddr)
	})

	return r
}
