package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/VoidMesh/terrain/internal/config"
	"github.com/VoidMesh/terrain/internal/logging"
)

func SetupMiddleware(server config.ServerConfig, terrainCfg config.TerrainConfig) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// Request ID for tracing
		middleware.RequestID,
		middleware.RealIP,

		// Structured request logging
		RequestLogger,

		// Recovery middleware
		middleware.Recoverer,

		// CORS for browser renderers fetching meshes
		cors.Handler(cors.Options{
			AllowedOrigins:   server.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}),

		// Large meshes compress well
		middleware.Compress(5, "application/json"),

		// Timeout middleware
		middleware.Timeout(terrainCfg.RequestTimeout + 5*time.Second),
	}
}

// RequestLogger logs one line per request through the shared logger.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.GetLogger().Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ThrottleMiddleware limits concurrent requests, queueing a backlog of the
// same size before rejecting with 429.
func ThrottleMiddleware(limit int) func(http.Handler) http.Handler {
	if limit < 1 {
		limit = 1
	}
	return middleware.ThrottleBacklog(limit, limit, 30*time.Second)
}
