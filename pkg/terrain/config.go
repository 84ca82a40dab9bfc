package terrain

import (
	"encoding/hex"
	"fmt"
	"math"
)

// CubeSize is the edge length of one voxel and the height of the base slab
// every sampled column starts with.
const CubeSize = 1.0

// MaxExtent is the largest width or depth whose unit steps are still exact in
// float32 arithmetic.
const MaxExtent = 1 << 24

// RGB is a decoded RRGGBB base color.
type RGB struct {
	R, G, B uint8
}

// ParseColor decodes exactly six hexadecimal characters (no leading '#').
func ParseColor(s string) (RGB, error) {
	if len(s) != 6 {
		return RGB{}, &ConfigurationError{Field: "color", Value: s, Err: ErrInvalidColor}
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return RGB{}, &ConfigurationError{Field: "color", Value: s, Err: fmt.Errorf("%w: %v", ErrInvalidColor, err)}
	}
	return RGB{R: b[0], G: b[1], B: b[2]}, nil
}

// String renders the color back to its RRGGBB form.
func (c RGB) String() string {
	return hex.EncodeToString([]byte{c.R, c.G, c.B})
}

// Settings is the nine-field parameter aggregate accepted by
// GenerateFromSettings. Color is still in its textual form.
type Settings struct {
	Width            float32
	Depth            float32
	Seed             int64
	Color            string
	MaxHeight        float32
	Falloff          float32
	Z                float64
	FractalOctaves   int32
	FractalFrequency float64
}

// Configuration is a validated parameter set with the color already decoded.
// Falloff is deliberately not validated: a zero radius is a documented
// precondition violation that surfaces as non-finite geometry.
type Configuration struct {
	Width            float32
	Depth            float32
	Seed             int64
	Color            RGB
	MaxHeight        float32
	Falloff          float32
	Z                float64
	FractalOctaves   int32
	FractalFrequency float64
}

// NewConfiguration validates the raw parameters and decodes the color.
func NewConfiguration(
	width, depth float32,
	seed int64,
	color string,
	maxHeight, falloff float32,
	z float64,
	fractalOctaves int32,
	fractalFrequency float64,
) (*Configuration, error) {
	rgb, err := ParseColor(color)
	if err != nil {
		return nil, err
	}

	for _, extent := range []struct {
		field string
		value float32
	}{{"width", width}, {"depth", depth}} {
		v := float64(extent.value)
		if math.IsNaN(v) || v > MaxExtent {
			return nil, &ConfigurationError{Field: extent.field, Value: extent.value, Err: ErrInvalidExtent}
		}
	}

	mh := float64(maxHeight)
	if math.IsNaN(mh) || math.IsInf(mh, 0) || maxHeight < 0 {
		return nil, &ConfigurationError{Field: "max_height", Value: maxHeight, Err: ErrInvalidMaxHeight}
	}

	return &Configuration{
		Width:            width,
		Depth:            depth,
		Seed:             seed,
		Color:            rgb,
		MaxHeight:        maxHeight,
		Falloff:          falloff,
		Z:                z,
		FractalOctaves:   fractalOctaves,
		FractalFrequency: fractalFrequency,
	}, nil
}

// Configuration validates the aggregate. It is equivalent to calling
// NewConfiguration with the individual fields.
func (s Settings) Configuration() (*Configuration, error) {
	return NewConfiguration(
		s.Width, s.Depth, s.Seed, s.Color, s.MaxHeight, s.Falloff, s.Z, s.FractalOctaves, s.FractalFrequency,
	)
}

// Settings converts a configuration back into its aggregate form.
func (c *Configuration) Settings() Settings {
	return Settings{
		Width:            c.Width,
		Depth:            c.Depth,
		Seed:             c.Seed,
		Color:            c.Color.String(),
		MaxHeight:        c.MaxHeight,
		Falloff:          c.Falloff,
		Z:                c.Z,
		FractalOctaves:   c.FractalOctaves,
		FractalFrequency: c.FractalFrequency,
	}
}
