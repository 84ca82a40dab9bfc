package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/VoidMesh/terrain/internal/config"
)

func SetupRoutes(handler *Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	for _, middleware := range SetupMiddleware(cfg.Server, cfg.Terrain) {
		r.Use(middleware)
	}

	// JSON content type
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// Health check endpoint
	r.Get("/health", handler.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/terrain", func(r chi.Router) {
			// Generation is CPU bound; cap how many run at once.
			r.Use(ThrottleMiddleware(cfg.Terrain.BatchConcurrency * 4))

			r.Get("/", handler.GetTerrain)
			r.Post("/", handler.PostTerrain)
			r.Post("/batch", handler.BatchTerrain)
		})

		r.Route("/presets", func(r chi.Router) {
			r.Get("/", handler.ListPresets)
			r.Post("/", handler.CreatePreset)

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", handler.GetPreset)
				r.Delete("/", handler.DeletePreset)
				r.With(ThrottleMiddleware(cfg.Terrain.BatchConcurrency * 4)).Get("/mesh", handler.GetPresetMesh)
			})
		})
	})

	return r
}
