package scene

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// SphereData holds a sphere's geometric parameters.
type SphereData struct {
	Center math3d.Vec3
	Radius float64
}

// measureDistance solves |origin + t*dir - center|^2 = r^2. Let v = center -
// origin, b = dir.v, delta = b^2 + r^2 - |v|^2.
func (s *SphereData) measureDistance(r Ray) (float64, bool) {
	if s.Radius < degenerateEps {
		return 0, false
	}
	v := s.Center.Sub(r.Origin)
	b := r.Direction.Dot(v)
	delta := b*b + s.Radius*s.Radius - v.LenSq()
	if delta < 0 {
		return 0, false
	}
	sq := math.Sqrt(delta)
	if t1 := b - sq; t1 >= 0 {
		return t1, true
	}
	if t2 := b + sq; t2 >= 0 {
		return t2, true
	}
	return 0, false
}

func (s *SphereData) computeIntersection(r Ray, t float64, prim *Primitive) Hit {
	p := r.At(t)
	n := p.Sub(s.Center).Div(s.Radius)
	normal, inward := orientNormal(r.Direction, n)
	return Hit{Ray: r, Point: p, Normal: normal, Primitive: prim, Inward: inward}
}

func (s *SphereData) bounds() (min, max math3d.Vec3) {
	rv := math3d.V3(s.Radius, s.Radius, s.Radius)
	return s.Center.Sub(rv), s.Center.Add(rv)
}

// sphereUV computes an equirectangular (u,v) for a unit direction relative to
// the sphere center, used by projective sphere texturing.
func sphereUV(localDir math3d.Vec3) (u, v float64) {
	theta := math.Acos(clampf(localDir.Y, -1, 1))
	phi := math.Atan2(localDir.Z, localDir.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi / (2 * math.Pi), theta / math.Pi
}

func clampf(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
