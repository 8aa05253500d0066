package scene

import "github.com/taigrr/lumen/pkg/math3d"

// BoxData is an axis-free rectangular box: center, three orthonormal face
// normals, and half-extents along each. Not necessarily world-aligned, unlike
// the hierarchy's internal BoundingBox.
type BoxData struct {
	Center     math3d.Vec3
	N1, N2, N3 math3d.Vec3
	L1, L2, L3 float64
}

func (b *BoxData) axes() ([3]math3d.Vec3, [3]float64) {
	return [3]math3d.Vec3{b.N1, b.N2, b.N3}, [3]float64{b.L1, b.L2, b.L3}
}

// measureDistance tests each of the box's 3 face-pairs via signed distance
// from the ray origin to the face plane, using a factor a that is -1 when the
// origin is outside the box along that test and +1 when inside, mirroring the
// original per-face intersection test rather than a generic AABB slab test
// (this box need not be axis-aligned).
func (b *BoxData) measureDistance(r Ray) (float64, bool) {
	axes, half := b.axes()
	p := r.Origin.Sub(b.Center)
	inside := b.containsLocal(p, axes, half)

	best := -1.0
	for i := 0; i < 3; i++ {
		n := axes[i]
		denom := r.Direction.Dot(n)
		if denom > -degenerateEps && denom < degenerateEps {
			continue
		}
		a := 1.0
		if !inside {
			a = -1.0
		}
		t := -(p.Dot(n)) / denom
		t += a * half[i] / absf(denom)
		if t < 0 {
			continue
		}
		contact := r.At(t).Sub(b.Center)
		o1, o2 := (i+1)%3, (i+2)%3
		if absf(contact.Dot(axes[o1])) > half[o1]+1e-9 || absf(contact.Dot(axes[o2])) > half[o2]+1e-9 {
			continue
		}
		if best < 0 || t < best {
			best = t
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

func (b *BoxData) containsLocal(p math3d.Vec3, axes [3]math3d.Vec3, half [3]float64) bool {
	for i := 0; i < 3; i++ {
		if absf(p.Dot(axes[i])) > half[i] {
			return false
		}
	}
	return true
}

func (b *BoxData) computeIntersection(r Ray, t float64, prim *Primitive) Hit {
	pt := r.At(t)
	local := pt.Sub(b.Center)
	axes, half := b.axes()

	var faceNormal math3d.Vec3
	bestSlack := 1e300
	for i := 0; i < 3; i++ {
		d := local.Dot(axes[i])
		slack := half[i] - absf(d)
		if slack < bestSlack {
			bestSlack = slack
			if d >= 0 {
				faceNormal = axes[i]
			} else {
				faceNormal = axes[i].Negate()
			}
		}
	}
	normal, inward := orientNormal(r.Direction, faceNormal)
	return Hit{Ray: r, Point: pt, Normal: normal, Primitive: prim, Inward: inward}
}

func (b *BoxData) bounds() (min, max math3d.Vec3) {
	axes, half := b.axes()
	ext := axes[0].Abs().Scale(half[0]).
		Add(axes[1].Abs().Scale(half[1])).
		Add(axes[2].Abs().Scale(half[2]))
	return b.Center.Sub(ext), b.Center.Add(ext)
}
