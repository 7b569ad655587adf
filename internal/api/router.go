// Package api exposes the process's HTTP surface: two plain-text probes
// that hosting platforms poll while all real traffic flows over Telegram.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tgvidbot/internal/api/handler"
	mw "tgvidbot/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(healthHandler *handler.HealthHandler) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //health -> /health)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.GetHead) // HEAD probes are answered by the GET handlers

	r.Get("/health", healthHandler.Live)
	r.Get("/", healthHandler.Root)

	return r
}
