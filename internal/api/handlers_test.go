package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/terrain/internal/config"
	"github.com/VoidMesh/terrain/internal/db"
	"github.com/VoidMesh/terrain/internal/preset"
	"github.com/VoidMesh/terrain/internal/testutil"
	"github.com/VoidMesh/terrain/pkg/noise"
	"github.com/VoidMesh/terrain/pkg/terrain"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			AllowedOrigins: []string{"*"},
		},
		Terrain: config.TerrainConfig{
			NoiseBackend:     noise.BackendOpenSimplex,
			MaxCells:         4096,
			MaxCubes:         1 << 16,
			MaxBatchItems:    4,
			BatchConcurrency: 2,
			RequestTimeout:   10 * time.Second,
		},
	}
}

// newTestServer wires the router against a temp database. A nil source uses
// OpenSimplex.
func newTestServer(t *testing.T, src noise.Source) http.Handler {
	t.Helper()
	if src == nil {
		src = noise.NewOpenSimplex()
	}

	cfg := testConfig()
	generator := terrain.NewGenerator(src, terrain.NewDefaultLoggerWrapper())
	presets := preset.NewManager(db.NewLoggingQueries(testutil.OpenTestDB(t)), terrain.NewDefaultLoggerWrapper())
	return SetupRoutes(NewHandler(generator, presets, cfg.Terrain), cfg)
}

func doRequest(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	rec := doRequest(t, newTestServer(t, nil), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "voidmesh-terrain", body["service"])
	assert.Equal(t, float64(0), body["presets"])
}

func TestHealthCheck_CountsPresets(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	server := newTestServer(t, nil)
	for _, name := range []string{"dunes", "ridge"} {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/presets", map[string]interface{}{
			"name":     name,
			"settings": map[string]interface{}{"width": 4, "depth": 4},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doRequest(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode[map[string]interface{}](t, rec)["presets"])
}

func TestHealthCheck_DatabaseUnavailable(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	database := testutil.OpenTestDB(t)
	cfg := testConfig()
	generator := terrain.NewGenerator(noise.NewOpenSimplex(), terrain.NewDefaultLoggerWrapper())
	presets := preset.NewManager(db.NewLoggingQueries(database), terrain.NewDefaultLoggerWrapper())
	server := SetupRoutes(NewHandler(generator, presets, cfg.Terrain), cfg)
	require.NoError(t, database.Close())

	rec := doRequest(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["database"])
	assert.NotContains(t, body, "presets")
}

func TestGetTerrain(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	server := newTestServer(t, nil)
	rec := doRequest(t, server, http.MethodGet,
		"/api/v1/terrain?width=2&depth=2&seed=1&color=336699&max_height=5&falloff=10&z=0&fractal_octaves=1&fractal_frequency=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	mesh := decode[MeshResponse](t, rec)
	require.NotEmpty(t, mesh.Positions)
	assert.Zero(t, len(mesh.Positions)%8)
	assert.Zero(t, len(mesh.Indices)%36)
	assert.Len(t, mesh.Colors, len(mesh.Positions))
	for _, idx := range mesh.Indices {
		require.Less(t, int(idx), len(mesh.Positions))
	}

	// Same parameters, same bytes.
	again := doRequest(t, server, http.MethodGet,
		"/api/v1/terrain?width=2&depth=2&seed=1&color=336699&max_height=5&falloff=10&z=0&fractal_octaves=1&fractal_frequency=2", nil)
	assert.Equal(t, rec.Body.String(), again.Body.String())
}

func TestGetTerrain_WireFormat(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	server := newTestServer(t, testutil.ConstantNoise(0.5))
	rec := doRequest(t, server, http.MethodGet,
		"/api/v1/terrain?width=1&depth=1&color=336699&max_height=4&falloff=10&fractal_octaves=1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	mesh := decode[MeshResponse](t, rec)
	require.Len(t, mesh.Positions, 24)
	require.Len(t, mesh.Indices, 108)
	assert.Equal(t, Vec3{X: 0, Y: 1, Z: 0}, mesh.Positions[0])
	assert.Equal(t, RGBA{R: 0x33, G: 158, B: 0x99, A: 255}, mesh.Colors[0])
	assert.Equal(t, RGBA{R: 0x33, G: 169, B: 0x99, A: 255}, mesh.Colors[16])

	raw := rec.Body.String()
	for _, key := range []string{`"positions"`, `"indices"`, `"colors"`, `"x"`, `"y"`, `"z"`, `"r"`, `"g"`, `"b"`, `"a"`} {
		assert.Contains(t, raw, key)
	}
}

func TestGetTerrain_Errors(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	server := newTestServer(t, nil)

	tests := []struct {
		name         string
		query        string
		expectStatus int
		expectInBody string
	}{
		{name: "bad color", query: "color=ZZ0000", expectStatus: http.StatusBadRequest, expectInBody: "color"},
		{name: "negative max height", query: "max_height=-1", expectStatus: http.StatusBadRequest, expectInBody: "max_height"},
		{name: "unparseable seed", query: "seed=abc", expectStatus: http.StatusBadRequest, expectInBody: "seed"},
		{name: "nan width", query: "width=NaN", expectStatus: http.StatusBadRequest, expectInBody: "width"},
		{name: "unparseable octaves", query: "fractal_octaves=lots", expectStatus: http.StatusBadRequest, expectInBody: "invalid fractal_octaves"},
		{name: "infinite z", query: "z=Inf", expectStatus: http.StatusBadRequest, expectInBody: "invalid z: value must be finite"},
		{name: "zero falloff", query: "falloff=0", expectStatus: http.StatusUnprocessableEntity, expectInBody: "falloff"},
		{name: "negative falloff", query: "falloff=-3", expectStatus: http.StatusUnprocessableEntity, expectInBody: "falloff"},
		{name: "too many cells", query: "width=100&depth=100", expectStatus: http.StatusRequestEntityTooLarge, expectInBody: "cells"},
		{name: "too many cubes", query: "width=4&depth=4&max_height=100000", expectStatus: http.StatusRequestEntityTooLarge, expectInBody: "cubes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, http.MethodGet, "/api/v1/terrain?"+tt.query, nil)
			require.Equal(t, tt.expectStatus, rec.Code, rec.Body.String())

			errResp := decode[ErrorResponse](t, rec)
			assert.Equal(t, tt.expectStatus, errResp.Code)
			assert.Contains(t, errResp.Message, tt.expectInBody)
		})
	}
}

func TestPostTerrain(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	server := newTestServer(t, testutil.ConstantNoise(0))

	t.Run("json settings", func(t *testing.T) {
		body := map[string]interface{}{
			"width": 2, "depth": 2, "seed": 7, "color": "336699",
			"max_height": 5, "falloff": 10, "z": 0, "fractal_octaves": 0, "fractal_frequency": 2,
		}
		rec := doRequest(t, server, http.MethodPost, "/api/v1/terrain", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		mesh := decode[MeshResponse](t, rec)
		assert.Len(t, mesh.Positions, 32)
		assert.Len(t, mesh.Indices, 144)
		for _, c := range mesh.Colors {
			assert.Equal(t, uint8(124), c.G)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/terrain", `{"width": `)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong field type", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/terrain", `{"seed": "twelve"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBatchTerrain(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	server := newTestServer(t, nil)

	item := func(seed int64, color string) map[string]interface{} {
		return map[string]interface{}{
			"width": 3, "depth": 3, "seed": seed, "color": color,
			"max_height": 4, "falloff": 6, "fractal_octaves": 2, "fractal_frequency": 2,
		}
	}

	t.Run("meshes keep request order", func(t *testing.T) {
		items := []interface{}{item(1, "336699"), item(2, "112233"), item(3, "aabbcc")}
		rec := doRequest(t, server, http.MethodPost, "/api/v1/terrain/batch", map[string]interface{}{"items": items})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		batch := decode[BatchResponse](t, rec)
		require.Len(t, batch.Meshes, 3)

		for i, it := range items {
			single := doRequest(t, server, http.MethodPost, "/api/v1/terrain", it)
			require.Equal(t, http.StatusOK, single.Code)
			want := decode[MeshResponse](t, single)
			assert.Equal(t, &want, batch.Meshes[i], "item %d", i)
		}
	})

	t.Run("failing item names its index", func(t *testing.T) {
		items := []interface{}{item(1, "336699"), item(2, "ZZ0000")}
		rec := doRequest(t, server, http.MethodPost, "/api/v1/terrain/batch", map[string]interface{}{"items": items})
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		assert.Contains(t, decode[ErrorResponse](t, rec).Message, "item 1")
	})

	t.Run("empty batch", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/terrain/batch", `{"items": []}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("oversized batch", func(t *testing.T) {
		items := make([]interface{}, 5)
		for i := range items {
			items[i] = item(int64(i), "336699")
		}
		rec := doRequest(t, server, http.MethodPost, "/api/v1/terrain/batch", map[string]interface{}{"items": items})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestPresetEndpoints(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	server := newTestServer(t, nil)
	settings := map[string]interface{}{
		"width": 4, "depth": 4, "seed": 99, "color": "C2B280",
		"max_height": 3, "falloff": 5, "z": 0.25, "fractal_octaves": 3, "fractal_frequency": 2,
	}

	rec := doRequest(t, server, http.MethodPost, "/api/v1/presets", map[string]interface{}{
		"name": "dunes", "description": "sandy", "noise_backend": "perlin", "settings": settings,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[PresetResponse](t, rec)
	assert.Equal(t, "dunes", created.Name)
	assert.Equal(t, "perlin", created.NoiseBackend)
	assert.Equal(t, "c2b280", created.Settings.Color)
	assert.Equal(t, int64(99), created.Settings.Seed)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/presets/dunes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.Settings, decode[PresetResponse](t, rec).Settings)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/presets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]PresetResponse](t, rec)
	require.Len(t, list["presets"], 1)

	rec = doRequest(t, server, http.MethodGet, "/api/v1/presets/dunes/mesh", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	presetMesh := decode[MeshResponse](t, rec)

	direct, err := terrain.NewGenerator(noise.NewPerlin(), terrain.NewDefaultLoggerWrapper()).
		Generate(4, 4, 99, "c2b280", 3, 5, 0.25, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, *NewMeshResponse(direct), presetMesh, "preset mesh uses the stored backend")

	rec = doRequest(t, server, http.MethodDelete, "/api/v1/presets/dunes", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, target := range []string{"/api/v1/presets/dunes", "/api/v1/presets/dunes/mesh"} {
		rec = doRequest(t, server, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
	rec = doRequest(t, server, http.MethodDelete, "/api/v1/presets/dunes", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPresetEndpoints_Errors(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	server := newTestServer(t, nil)

	tests := []struct {
		name         string
		body         interface{}
		expectStatus int
	}{
		{name: "missing name", body: map[string]interface{}{"settings": map[string]interface{}{}}, expectStatus: http.StatusBadRequest},
		{name: "invalid name", body: map[string]interface{}{"name": "a b"}, expectStatus: http.StatusBadRequest},
		{name: "bad color", body: map[string]interface{}{"name": "x", "settings": map[string]interface{}{"color": "12345"}}, expectStatus: http.StatusBadRequest},
		{name: "unknown backend", body: map[string]interface{}{"name": "x", "noise_backend": "value"}, expectStatus: http.StatusBadRequest},
		{name: "not json", body: "name=x", expectStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, http.MethodPost, "/api/v1/presets", tt.body)
			assert.Equal(t, tt.expectStatus, rec.Code, rec.Body.String())
		})
	}

	t.Run("degenerate preset cannot be meshed", func(t *testing.T) {
		rec := doRequest(t, server, http.MethodPost, "/api/v1/presets", map[string]interface{}{
			"name": "flat", "settings": map[string]interface{}{"falloff": 0},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = doRequest(t, server, http.MethodGet, "/api/v1/presets/flat/mesh", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/terrain", nil)
	req.Header.Set("Origin", "https://viewer.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	newTestServer(t, nil).ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}

func TestSettingsFromQuery_Defaults(t *testing.T) {
	got, err := SettingsFromQuery(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings, got)

	var req *SettingsRequest
	assert.Equal(t, DefaultSettings, req.Settings())
}
