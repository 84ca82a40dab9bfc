package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/VoidMesh/terrain/internal/config"
	"github.com/VoidMesh/terrain/internal/logging"
	"github.com/VoidMesh/terrain/internal/preset"
	"github.com/VoidMesh/terrain/pkg/noise"
	"github.com/VoidMesh/terrain/pkg/terrain"
)

// requestError carries the HTTP status a failure should be reported with.
type requestError struct {
	status  int
	message string
	err     error
}

func (e *requestError) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *requestError) Unwrap() error {
	return e.err
}

func newRequestError(status int, message string, err error) *requestError {
	return &requestError{status: status, message: message, err: err}
}

type Handler struct {
	generator *terrain.Generator
	presets   *preset.Manager
	limits    config.TerrainConfig
}

func NewHandler(generator *terrain.Generator, presets *preset.Manager, limits config.TerrainConfig) *Handler {
	return &Handler{
		generator: generator,
		presets:   presets,
		limits:    limits,
	}
}

// HealthCheck reports service status. Counting presets also checks the
// database; a failing store marks the service degraded.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":         "healthy",
		"timestamp":      time.Now().Unix(),
		"service":        "voidmesh-terrain",
		"version":        "1.0.0",
		"noise_backends": noise.Backends(),
	}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	count, err := h.presets.Count(ctx)
	if err != nil {
		logging.GetLogger().Error("Health check could not reach preset store", "error", err)
		response["status"] = "degraded"
		response["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		response["presets"] = count
	}

	render.Status(r, status)
	render.JSON(w, r, response)
}

// GetTerrain generates a mesh from query parameters.
func (h *Handler) GetTerrain(w http.ResponseWriter, r *http.Request) {
	settings, err := SettingsFromQuery(r.URL.Query())
	if err != nil {
		h.renderRequestError(w, r, newRequestError(http.StatusBadRequest, "invalid query parameters", err))
		return
	}
	h.renderMesh(w, r, settings)
}

// PostTerrain generates a mesh from a JSON settings body.
func (h *Handler) PostTerrain(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := render.Bind(r, &req); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	h.renderMesh(w, r, req.Settings())
}

func (h *Handler) renderMesh(w http.ResponseWriter, r *http.Request, settings terrain.Settings) {
	resp, err := h.generate(settings)
	if err != nil {
		h.renderRequestError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// BatchTerrain generates several meshes concurrently. The first failing item
// decides the response.
func (h *Handler) BatchTerrain(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := render.Bind(r, &req); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if len(req.Items) > h.limits.MaxBatchItems {
		h.renderError(w, r, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch holds %d items, limit is %d", len(req.Items), h.limits.MaxBatchItems), nil)
		return
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), h.limits.RequestTimeout)
	defer cancel()

	meshes := make([]*MeshResponse, len(req.Items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.limits.BatchConcurrency, 1))

	for i, item := range req.Items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return newRequestError(http.StatusServiceUnavailable, "batch cancelled", err)
			}
			resp, err := h.generate(item.Settings())
			if err != nil {
				var reqErr *requestError
				if errors.As(err, &reqErr) {
					reqErr.message = fmt.Sprintf("item %d: %s", i, reqErr.message)
				}
				return err
			}
			meshes[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		h.renderRequestError(w, r, err)
		return
	}

	logging.WithDuration("batch_terrain", time.Since(start)).Info("Batch terrain generated", "items", len(meshes))
	render.Status(r, http.StatusOK)
	render.JSON(w, r, BatchResponse{Meshes: meshes})
}

// generate checks request limits, runs the pipeline and converts the result.
// Every returned error is a *requestError.
func (h *Handler) generate(settings terrain.Settings) (*MeshResponse, error) {
	cfg, err := settings.Configuration()
	if err != nil {
		return nil, newRequestError(http.StatusBadRequest, "invalid terrain configuration", err)
	}
	if err := h.checkLimits(cfg); err != nil {
		return nil, err
	}

	mesh := h.generator.GenerateConfigured(cfg)
	if err := mesh.CheckFinite(); err != nil {
		logging.WithSeed(cfg.Seed).Warn("Refusing to serialize non-finite mesh", "error", err)
		return nil, newRequestError(http.StatusUnprocessableEntity, "generated mesh is not finite", err)
	}
	return NewMeshResponse(mesh), nil
}

// checkLimits rejects configurations that would degenerate or exceed the
// configured work budget.
func (h *Handler) checkLimits(cfg *terrain.Configuration) error {
	if !(cfg.Falloff > 0) {
		return newRequestError(http.StatusUnprocessableEntity,
			fmt.Sprintf("falloff must be greater than zero, got %v", cfg.Falloff), terrain.ErrNumericDegeneracy)
	}

	cells := cellCount(cfg.Width) * cellCount(cfg.Depth)
	if cells > float64(h.limits.MaxCells) {
		logging.WithExtent(cfg.Width, cfg.Depth).Warn("Terrain request over cell budget", "cells", cells)
		return newRequestError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("terrain of %.0f cells exceeds limit of %d", cells, h.limits.MaxCells), nil)
	}

	// Each column yields at most floor(max_height)+1 cubes.
	cubes := cells * (math.Floor(float64(cfg.MaxHeight)) + 1)
	if cubes > float64(h.limits.MaxCubes) {
		logging.WithExtent(cfg.Width, cfg.Depth).Warn("Terrain request over cube budget", "cubes", cubes, "max_height", cfg.MaxHeight)
		return newRequestError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("terrain of up to %.0f cubes exceeds limit of %d", cubes, h.limits.MaxCubes), nil)
	}
	return nil
}

func cellCount(extent float32) float64 {
	if extent <= 0 {
		return 0
	}
	return math.Ceil(float64(extent))
}

func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	presets, err := h.presets.List(ctx)
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "failed to list presets", err)
		return
	}

	resp := make([]*PresetResponse, 0, len(presets))
	for _, p := range presets {
		resp = append(resp, NewPresetResponse(p))
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]interface{}{
		"presets": resp,
	})
}

func (h *Handler) CreatePreset(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if err := render.Bind(r, &req); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	saved, err := h.presets.Save(ctx, preset.Preset{
		Name:         req.Name,
		Description:  req.Description,
		Settings:     req.Settings.Settings(),
		NoiseBackend: req.NoiseBackend,
	})
	if err != nil {
		h.renderPresetError(w, r, "failed to save preset", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, NewPresetResponse(saved))
}

func (h *Handler) GetPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	p, err := h.presets.Get(ctx, name)
	if err != nil {
		h.renderPresetError(w, r, "failed to load preset", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewPresetResponse(p))
}

func (h *Handler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.presets.Delete(ctx, name); err != nil {
		h.renderPresetError(w, r, "failed to delete preset", err)
		return
	}

	render.NoContent(w, r)
}

// GetPresetMesh generates the mesh for a stored preset, using the noise
// backend recorded with it.
func (h *Handler) GetPresetMesh(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	ctx, cancel := context.WithTimeout(r.Context(), h.limits.RequestTimeout)
	defer cancel()

	p, err := h.presets.Get(ctx, name)
	if err != nil {
		h.renderPresetError(w, r, "failed to load preset", err)
		return
	}

	cfg, err := p.Settings.Configuration()
	if err != nil {
		h.renderError(w, r, http.StatusInternalServerError, "stored preset is invalid", err)
		return
	}
	if err := h.checkLimits(cfg); err != nil {
		h.renderRequestError(w, r, err)
		return
	}

	logging.WithPreset(p.Name).Debug("Generating preset mesh", "backend", p.NoiseBackend)
	mesh, err := h.presets.Generate(p)
	if err != nil {
		h.renderPresetError(w, r, "failed to generate preset mesh", err)
		return
	}
	if err := mesh.CheckFinite(); err != nil {
		h.renderError(w, r, http.StatusUnprocessableEntity, "generated mesh is not finite", err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewMeshResponse(mesh))
}

func (h *Handler) renderPresetError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var cfgErr *terrain.ConfigurationError
	switch {
	case errors.Is(err, preset.ErrPresetNotFound):
		h.renderError(w, r, http.StatusNotFound, "preset not found", err)
	case errors.As(err, &cfgErr),
		errors.Is(err, preset.ErrInvalidName),
		errors.Is(err, preset.ErrNonFinite),
		errors.Is(err, noise.ErrUnknownBackend):
		h.renderError(w, r, http.StatusBadRequest, err.Error(), err)
	default:
		h.renderError(w, r, http.StatusInternalServerError, message, err)
	}
}

func (h *Handler) renderRequestError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		message := reqErr.message
		if reqErr.status < 500 && reqErr.err != nil {
			message = fmt.Sprintf("%s: %v", reqErr.message, reqErr.err)
		}
		h.renderError(w, r, reqErr.status, message, reqErr.err)
		return
	}
	h.renderError(w, r, http.StatusInternalServerError, "terrain generation failed", err)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	errorResponse := ErrorResponse{
		Error:   message,
		Code:    status,
		Message: message,
	}

	if err != nil {
		logging.GetLogger().Error("API error", "error", err, "message", message, "status", status)
		// Don't expose internal errors to the client
		if status >= 500 {
			errorResponse.Error = "Internal server error"
		}
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse)
}
