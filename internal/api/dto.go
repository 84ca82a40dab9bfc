package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/VoidMesh/terrain/internal/preset"
	"github.com/VoidMesh/terrain/pkg/terrain"
)

// Defaults fill parameters a request leaves out.
var DefaultSettings = terrain.Settings{
	Width:            32,
	Depth:            32,
	Seed:             0,
	Color:            "4a7a3b",
	MaxHeight:        8,
	Falloff:          24,
	Z:                0,
	FractalOctaves:   4,
	FractalFrequency: 2,
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SettingsRequest is the JSON form of terrain.Settings. Absent fields take
// their value from DefaultSettings.
type SettingsRequest struct {
	Width            *float32 `json:"width,omitempty"`
	Depth            *float32 `json:"depth,omitempty"`
	Seed             *int64   `json:"seed,omitempty"`
	Color            *string  `json:"color,omitempty"`
	MaxHeight        *float32 `json:"max_height,omitempty"`
	Falloff          *float32 `json:"falloff,omitempty"`
	Z                *float64 `json:"z,omitempty"`
	FractalOctaves   *int32   `json:"fractal_octaves,omitempty"`
	FractalFrequency *float64 `json:"fractal_frequency,omitempty"`
}

// Bind satisfies render.Binder. Range checks happen later, against the
// resolved settings.
func (s *SettingsRequest) Bind(r *http.Request) error {
	return nil
}

// Settings resolves the request against DefaultSettings.
func (s *SettingsRequest) Settings() terrain.Settings {
	out := DefaultSettings
	if s == nil {
		return out
	}
	if s.Width != nil {
		out.Width = *s.Width
	}
	if s.Depth != nil {
		out.Depth = *s.Depth
	}
	if s.Seed != nil {
		out.Seed = *s.Seed
	}
	if s.Color != nil {
		out.Color = *s.Color
	}
	if s.MaxHeight != nil {
		out.MaxHeight = *s.MaxHeight
	}
	if s.Falloff != nil {
		out.Falloff = *s.Falloff
	}
	if s.Z != nil {
		out.Z = *s.Z
	}
	if s.FractalOctaves != nil {
		out.FractalOctaves = *s.FractalOctaves
	}
	if s.FractalFrequency != nil {
		out.FractalFrequency = *s.FractalFrequency
	}
	return out
}

// SettingsFromQuery reads the nine parameters from URL query values.
func SettingsFromQuery(q url.Values) (terrain.Settings, error) {
	out := DefaultSettings

	float32s := []struct {
		key string
		dst *float32
	}{
		{"width", &out.Width},
		{"depth", &out.Depth},
		{"max_height", &out.MaxHeight},
		{"falloff", &out.Falloff},
	}
	for _, f := range float32s {
		if raw := q.Get(f.key); raw != "" {
			v, err := parseFinite(raw, 32)
			if err != nil {
				return out, fmt.Errorf("invalid %s: %w", f.key, err)
			}
			*f.dst = float32(v)
		}
	}

	float64s := []struct {
		key string
		dst *float64
	}{
		{"z", &out.Z},
		{"fractal_frequency", &out.FractalFrequency},
	}
	for _, f := range float64s {
		if raw := q.Get(f.key); raw != "" {
			v, err := parseFinite(raw, 64)
			if err != nil {
				return out, fmt.Errorf("invalid %s: %w", f.key, err)
			}
			*f.dst = v
		}
	}

	if raw := q.Get("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return out, fmt.Errorf("invalid seed: %w", err)
		}
		out.Seed = v
	}
	if raw := q.Get("fractal_octaves"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return out, fmt.Errorf("invalid fractal_octaves: %w", err)
		}
		out.FractalOctaves = int32(v)
	}
	if q.Has("color") {
		out.Color = q.Get("color")
	}

	return out, nil
}

var errNonFinite = errors.New("value must be finite")

func parseFinite(raw string, bitSize int) (float64, error) {
	v, err := strconv.ParseFloat(raw, bitSize)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFinite
	}
	return v, nil
}

type SettingsResponse struct {
	Width            float32 `json:"width"`
	Depth            float32 `json:"depth"`
	Seed             int64   `json:"seed"`
	Color            string  `json:"color"`
	MaxHeight        float32 `json:"max_height"`
	Falloff          float32 `json:"falloff"`
	Z                float64 `json:"z"`
	FractalOctaves   int32   `json:"fractal_octaves"`
	FractalFrequency float64 `json:"fractal_frequency"`
}

func NewSettingsResponse(s terrain.Settings) SettingsResponse {
	return SettingsResponse(s)
}

type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

type RGBA struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// MeshResponse is the wire form of terrain.Mesh.
type MeshResponse struct {
	Positions []Vec3   `json:"positions"`
	Indices   []uint32 `json:"indices"`
	Colors    []RGBA   `json:"colors"`
}

func NewMeshResponse(m *terrain.Mesh) *MeshResponse {
	resp := &MeshResponse{
		Positions: make([]Vec3, len(m.Positions)),
		Indices:   m.Indices,
		Colors:    make([]RGBA, len(m.Colors)),
	}
	for i, p := range m.Positions {
		resp.Positions[i] = Vec3{X: p.X(), Y: p.Y(), Z: p.Z()}
	}
	for i, c := range m.Colors {
		resp.Colors[i] = RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	if resp.Indices == nil {
		resp.Indices = []uint32{}
	}
	return resp
}

type BatchRequest struct {
	Items []*SettingsRequest `json:"items"`
}

func (b *BatchRequest) Bind(r *http.Request) error {
	if len(b.Items) == 0 {
		return errors.New("items must not be empty")
	}
	return nil
}

type BatchResponse struct {
	Meshes []*MeshResponse `json:"meshes"`
}

type PresetRequest struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	NoiseBackend string           `json:"noise_backend"`
	Settings     *SettingsRequest `json:"settings"`
}

func (p *PresetRequest) Bind(r *http.Request) error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type PresetResponse struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	NoiseBackend string           `json:"noise_backend"`
	Settings     SettingsResponse `json:"settings"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func NewPresetResponse(p *preset.Preset) *PresetResponse {
	return &PresetResponse{
		Name:         p.Name,
		Description:  p.Description,
		NoiseBackend: p.NoiseBackend,
		Settings:     NewSettingsResponse(p.Settings),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
