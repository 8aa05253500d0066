package pathtrace

import (
	"math"

	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/rng"
	"github.com/taigrr/lumen/pkg/scene"
)

// biasEpsilon is the offset applied along the geometric normal before
// casting the next segment so a ray leaving a surface does not immediately
// re-intersect it, matching apply_bias in tracing.cpp.
const biasEpsilon = 1e-3

// ApplyBias offsets point along normal, outward (away from the surface on
// the incoming side) when outward is true, inward otherwise.
func ApplyBias(point, normal math3d.Vec3, outward bool) math3d.Vec3 {
	if outward {
		return point.Add(normal.Scale(biasEpsilon))
	}
	return point.Sub(normal.Scale(biasEpsilon))
}

// Bounce is the outcome of one shading decision at a hit: the next
// direction to trace, the throughput multiplier for this bounce, and
// whether the refraction-index stack should push (entering a dielectric) or
// pop (exiting one) as a result.
type Bounce struct {
	Direction     math3d.Vec3
	Throughput    color.Color
	EnteringGlass bool
	ExitingGlass  bool

	// glassIndex is the refraction index to push onto the index stack when
	// EnteringGlass is set; only TraceMultisample's branch closures need it
	// since tracer.go's ordinary loop reads it straight off the material.
	glassIndex float64
}

// ShadeOpaque implements spec §4.8's opaque branch (material.Transparency ==
// 0): with probability SpecularProbability, reflect around a cone centered
// on the blend of the normal and the mirror direction; otherwise sample a
// cosine-weighted diffuse direction.
func ShadeOpaque(r *rng.Source, hit scene.Hit, m scene.Material, surfaceColor color.Color) Bounce {
	if !m.HasSpecProb() || r.Unit() < m.SpecularProbability {
		central := CentralReflectedDirection(hit.Ray.Direction, hit.Normal, m.Reflectivity)
		thetaMax := math.Pi * (1 - m.Reflectivity)
		dir := RandomDirection(r, central, thetaMax)
		throughput := color.White
		if m.ReflectsColor {
			throughput = surfaceColor
		}
		return Bounce{Direction: dir, Throughput: throughput}
	}
	return Bounce{Direction: CosineHemisphere(r, hit.Normal), Throughput: surfaceColor}
}

// ShadeTransparent implements spec §4.8's transparent branch
// (material.Transparency > 0). n1 is the refraction index of the medium the
// ray currently travels through (the top of the path's index stack); n2 is
// the index on the other side of the surface (the material's index when
// entering, the stack's next-to-top when exiting) — the caller (tracer.go)
// owns the stack and resolves n1/n2 before calling this.
func ShadeTransparent(r *rng.Source, hit scene.Hit, m scene.Material, surfaceColor color.Color, n1, n2 float64) Bounce {
	cosTheta := -hit.Ray.Direction.Dot(hit.Normal)
	kr := Schlick(cosTheta, n1, n2)
	transparency := m.Transparency
	if transparency < 1e-9 {
		transparency = 1e-9
	}
	kr = clamp01(kr / transparency)

	if kr >= 1 || r.Unit() < kr {
		central := CentralReflectedDirection(hit.Ray.Direction, hit.Normal, 1)
		return Bounce{Direction: central, Throughput: color.White}
	}

	refracted, ok := RefractedDirection(hit.Ray.Direction, hit.Normal, n1, n2)
	if !ok {
		// Total internal reflection: fall back to the specular reflect path.
		central := CentralReflectedDirection(hit.Ray.Direction, hit.Normal, 1)
		return Bounce{Direction: central, Throughput: color.White}
	}

	thetaMax := m.RefractionScattering * math.Pi / 2
	dir := RandomDirection(r, refracted, thetaMax)
	return Bounce{
		Direction:     dir,
		Throughput:    surfaceColor,
		EnteringGlass: hit.Inward,
		ExitingGlass:  !hit.Inward,
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
