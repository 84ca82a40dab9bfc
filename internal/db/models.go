package db

import (
	"time"
)

type TerrainPreset struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Width            float64   `json:"width"`
	Depth            float64   `json:"depth"`
	Seed             int64     `json:"seed"`
	Color            string    `json:"color"`
	MaxHeight        float64   `json:"max_height"`
	Falloff          float64   `json:"falloff"`
	Z                float64   `json:"z"`
	FractalOctaves   int64     `json:"fractal_octaves"`
	FractalFrequency float64   `json:"fractal_frequency"`
	NoiseBackend     string    `json:"noise_backend"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
