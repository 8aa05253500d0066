// Package color implements the linear, unbounded (HDR) RGB color type used
// throughout the path tracer, plus the bridge to display-space color.
package color

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB triple. It is unbounded above; path-traced radiance
// routinely exceeds 1.0 before tone mapping. There are no invariants.
type Color struct {
	R, G, B float64
}

// Black, White, and a few convenience constants mirror the material
// prototypes' needs without introducing a separate palette type.
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
)

// RGB constructs a Color from three components.
func RGB(r, g, b float64) Color {
	return Color{r, g, b}
}

// Add returns the componentwise sum.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Scale returns the color multiplied by a scalar.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Mul returns the componentwise (tint) product.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Div divides every channel by the scalar s (used to average accumulated
// samples).
func (c Color) Div(s float64) Color {
	return Color{c.R / s, c.G / s, c.B / s}
}

// Luminance is the perceptual (Rec. 709) weighting of the three channels,
// used by the tests' brightness comparisons; Russian roulette uses
// MaxComponent instead.
func (c Color) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// MaxComponent returns the largest of the three channels, the quantity the
// spec's Russian roulette rule uses for the continuation probability.
func (c Color) MaxComponent() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// Clamp255 caps each channel at 255, for display. The unclamped HDR value is
// otherwise carried all the way to the accumulator.
func (c Color) Clamp255() Color {
	return Color{clamp(c.R, 0, 255), clamp(c.G, 0, 255), clamp(c.B, 0, 255)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ToDisplay converts a linear-space, [0,1]-normalized color (i.e. the value
// after dividing by 255 or by the sample count) to 8-bit sRGB display bytes
// by way of go-colorful's linear-RGB constructor, instead of hand-rolling the
// gamma OETF.
func (c Color) ToDisplay() (r, g, b uint8) {
	lc := colorful.LinearRgb(clamp01(c.R), clamp01(c.G), clamp01(c.B))
	fr, fg, fb := lc.R, lc.G, lc.B
	return uint8(clamp(fr*255, 0, 255)), uint8(clamp(fg*255, 0, 255)), uint8(clamp(fb*255, 0, 255))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
