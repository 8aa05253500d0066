package scene

import (
	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/math3d"
)

// Texture is a row-major pixel grid sampled with nearest-neighbor lookup and
// border clamping, per the spec's texture sampling rule (no filtering).
type Texture struct {
	Width, Height int
	Pixels        []color.Color // row-major, length Width*Height
}

// NewTexture allocates a blank texture.
func NewTexture(w, h int) *Texture {
	return &Texture{Width: w, Height: h, Pixels: make([]color.Color, w*h)}
}

// Get maps (u,v) in [0,1]^2 to the nearest pixel, clamping into bounds.
func (t *Texture) Get(u, v float64) color.Color {
	x, y := t.texel(u, v)
	return t.Pixels[y*t.Width+x]
}

func (t *Texture) texel(u, v float64) (int, int) {
	x := int(u * float64(t.Width-1))
	y := int(v * float64(t.Height-1))
	if x < 0 {
		x = 0
	} else if x > t.Width-1 {
		x = t.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y > t.Height-1 {
		y = t.Height - 1
	}
	return x, y
}

// Set writes a pixel; used by loaders.
func (t *Texture) Set(x, y int, c color.Color) {
	t.Pixels[y*t.Width+x] = c
}

// NormalMap has the same shape as Texture but stores unit tangent-space
// normals decoded from bytes as 2*c-1 by the loader.
type NormalMap struct {
	Width, Height int
	Normals       []math3d.Vec3
}

// Get maps (u,v) to the nearest tangent-space normal, same clamping rule as
// Texture.Get.
func (n *NormalMap) Get(u, v float64) math3d.Vec3 {
	x := clampIndex(int(u*float64(n.Width-1)), n.Width)
	y := clampIndex(int(v*float64(n.Height-1)), n.Height)
	return n.Normals[y*n.Width+x]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
