package scene

import (
	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/math3d"
)

// Background is what a ray that escapes the scene sees: either a flat color
// or an equirectangular texture sampled along the ray direction after
// rotating it by the three Euler angles, matching background_container in
// the original. Importance sampling of the background (alias-table sampling
// from infinite_area.hpp) is out of scope per spec's Non-goals on multi
// strategy light sampling; this is a plain lookup.
type Background struct {
	Color                  color.Color
	Texture                *Texture // nil for a flat-color background
	RotateX, RotateY, RotateZ float64 // radians
}

// Sample returns the radiance seen along a unit direction that left the
// scene without hitting anything.
func (b *Background) Sample(dir math3d.Vec3) color.Color {
	if b.Texture == nil {
		return b.Color
	}
	rotated := b.rotate(dir)
	u, v := equirectangularUV(rotated)
	return b.Texture.Get(u, v)
}

func (b *Background) rotate(dir math3d.Vec3) math3d.Vec3 {
	m := math3d.Identity()
	m = m.Mul(math3d.RotateX(b.RotateX))
	m = m.Mul(math3d.RotateY(b.RotateY))
	m = m.Mul(math3d.RotateZ(b.RotateZ))
	return m.MulVec3Dir(dir)
}

// equirectangularUV maps a unit direction to (u,v) in [0,1]^2 using the same
// longitude/latitude projection as sphereUV.
func equirectangularUV(dir math3d.Vec3) (u, v float64) {
	return sphereUV(dir)
}
