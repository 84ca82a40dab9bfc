package terrain

import "github.com/VoidMesh/terrain/pkg/noise"

// persistence is the per-octave amplitude decay.
const persistence = 0.5

// FractalNoise sums cfg.FractalOctaves octaves of src at (x, y) on the z
// slice, scales by MaxHeight and clamps to [0, MaxHeight]. Negative sums
// clamp to zero rather than mirroring.
func FractalNoise(src noise.Source, cfg *Configuration, x, y float32, z float64) float32 {
	var height float32
	amplitude := float32(1.0)
	frequency := 1.0

	for i := int32(0); i < cfg.FractalOctaves; i++ {
		sample := float32(src.Noise3(cfg.Seed, float64(x)*frequency, float64(y)*frequency, z))
		height += float32(sample * amplitude)
		amplitude *= persistence
		frequency *= cfg.FractalFrequency
	}

	height *= cfg.MaxHeight
	return clamp(height, 0, cfg.MaxHeight)
}

// clamp keeps NaN as NaN so degenerate input stays visible downstream.
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
