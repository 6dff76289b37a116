package api

import (
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds settings for the status API router.
type RouterConfig struct {
	// BackendAPIKey protects the /v1 routes. Empty skips auth (development).
	BackendAPIKey string

	// CorsAllowedOrigins is a comma-separated list of allowed origins.
	// Empty defaults to "*" (development).
	CorsAllowedOrigins string
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	allowedOrigins := []string{"*"}
	if cfg.CorsAllowedOrigins != "" {
		origins := strings.Split(cfg.CorsAllowedOrigins, ",")
		trimmed := make([]string, 0, len(origins))
		for _, o := range origins {
			if s := strings.TrimSpace(o); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			allowedOrigins = trimmed
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check is public.
	r.Get("/health", h.Health)

	r.Route("/v1", func(r chi.Router) {
		if cfg.BackendAPIKey != "" {
			r.Use(APIKeyAuth(cfg.BackendAPIKey))
		}

		r.Get("/status", h.Status)
		r.Get("/episodes", h.ListEpisodes)
		r.Get("/episodes/{episodeID}", h.GetEpisode)
	})

	return r
}
