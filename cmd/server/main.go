package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/VoidMesh/terrain/internal/api"
	"github.com/VoidMesh/terrain/internal/config"
	"github.com/VoidMesh/terrain/internal/db"
	"github.com/VoidMesh/terrain/internal/logging"
	"github.com/VoidMesh/terrain/internal/preset"
	"github.com/VoidMesh/terrain/pkg/noise"
	"github.com/VoidMesh/terrain/pkg/terrain"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	logger := setupLogging(cfg.Logging)
	logger.Debug("Configuration loaded",
		"server_port", cfg.Server.Port,
		"db_path", cfg.Database.Path,
		"noise_backend", cfg.Terrain.NoiseBackend,
		"max_cells", cfg.Terrain.MaxCells,
	)

	// Initialize database
	database, err := db.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", "error", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run database migrations", "error", err)
	}

	// Noise backend shared by all requests; its per-seed cache is bounded
	src, err := noise.NewSized(cfg.Terrain.NoiseBackend, cfg.Terrain.NoiseCacheSize)
	if err != nil {
		logger.Fatal("Failed to create noise backend", "error", err, "available", noise.Backends())
	}

	generator := terrain.NewGenerator(src, terrain.NewDefaultLoggerWrapper())
	presets := preset.NewManager(db.NewLoggingQueries(database), terrain.NewDefaultLoggerWrapper())

	handler := api.NewHandler(generator, presets, cfg.Terrain)
	router := api.SetupRoutes(handler, cfg)
	logger.Debug("API routes configured")

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting VoidMesh terrain server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("Shutting down server...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// setupLogging also installs the logger as the charmbracelet/log default, so
// the db package follows the same level and format.
func setupLogging(cfg config.LoggingConfig) *log.Logger {
	return logging.Configure(logging.Options{
		Level:      cfg.Level,
		Format:     cfg.Format,
		Structured: cfg.Structured,
		Prefix:     "voidmesh-terrain",
	})
}
