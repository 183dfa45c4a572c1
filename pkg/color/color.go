// Package color provides an sRGB colour value used by text spans.
package color

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Color represents a non-linear sRGB colour with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Palette colours used by billboards and the example programs.
var (
	White  = Color{1, 1, 1, 1}
	Black  = Color{0, 0, 0, 1}
	Orange = Color{1, 0.647, 0, 1}
	Silver = Color{0.753, 0.753, 0.753, 1}
	Gray   = Color{0.502, 0.502, 0.502, 1}
)

// RGBA creates a colour from 8-bit sRGB values (0-255).
func RGBA(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// RGB creates a colour from 8-bit sRGB values with full alpha.
func RGB(r, g, b uint8) Color {
	return RGBA(r, g, b, 255)
}

// Hex parses "#rrggbb" into a colour with full alpha.
func Hex(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}, nil
}

// WithAlpha returns a copy of the colour with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}

// Linear converts the colour to linear RGB, the space vertex colours are
// interpolated in. Alpha is passed through unchanged.
func (c Color) Linear() [4]float32 {
	r, g, b := colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.LinearRgb()
	return [4]float32{float32(r), float32(g), float32(b), c.A}
}
