package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/api/middleware"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/handlers"
	"github.com/rishugoyal805/ChatterlyAi-Backend-1/internal/relay"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, hub *relay.Hub, h *handlers.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// CORS - allow all origins, browser clients connect from anywhere
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Plain request/response surface. The metrics and logging middleware
	// wrap the response writer, so the WebSocket endpoint stays outside
	// this group to keep the connection hijackable.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Metrics)
		r.Use(middleware.Logger(logger))

		// Metrics endpoint (for Prometheus scraping)
		r.Handle("/metrics", promhttp.Handler())

		// Liveness probe, GET and HEAD (supervisors use both)
		r.Get("/health", h.Health)
		r.Head("/health", h.Health)
	})

	// Event channel
	r.Get("/ws", hub.ServeWS)

	return r
}
