package scene

import (
	"github.com/taigrr/lumen/pkg/math3d"
)

// TriangleData is a flat triangle with per-vertex normals for smooth
// (Phong) shading and a precomputed plane normal for the ray-plane test.
type TriangleData struct {
	V0, V1, V2    math3d.Vec3
	N0, N1, N2    math3d.Vec3 // per-vertex normals, for smooth shading
	FlatNormal    math3d.Vec3 // face normal, precomputed
}

// NewTriangleData builds a TriangleData, deriving the flat face normal from
// the vertex winding.
func NewTriangleData(v0, v1, v2, n0, n1, n2 math3d.Vec3) TriangleData {
	flat := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	return TriangleData{V0: v0, V1: v1, V2: v2, N0: n0, N1: n1, N2: n2, FlatNormal: flat}
}

// measureDistance intersects the ray with the triangle's plane, then tests
// barycentric membership via Cramer's rule, projecting the plane's 2D
// coordinates onto the xy, xz and yz pairs in that order and using the first
// whose determinant is not too close to zero, matching the original's
// projection-fallback chain.
func (t *TriangleData) measureDistance(r Ray) (float64, bool) {
	denom := r.Direction.Dot(t.FlatNormal)
	if denom > -degenerateEps && denom < degenerateEps {
		return 0, false
	}
	d := -t.V0.Dot(t.FlatNormal)
	dist := -(r.Origin.Dot(t.FlatNormal) + d) / denom
	if dist < 0 {
		return 0, false
	}
	p := r.At(dist)
	if !triangleContains(t.V0, t.V1, t.V2, p) {
		return 0, false
	}
	return dist, true
}

// triangleContains tests barycentric membership of p in triangle (a,b,c) by
// solving the 2x2 system in the first axis-pair projection, trying xy, then
// xz, then yz, whose determinant has magnitude at least 1e-10.
func triangleContains(a, b, c, p math3d.Vec3) bool {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	vp := p.Sub(a)

	type proj struct{ e1x, e1y, e2x, e2y, vpx, vpy float64 }
	projections := []proj{
		{e1.X, e1.Y, e2.X, e2.Y, vp.X, vp.Y},
		{e1.X, e1.Z, e2.X, e2.Z, vp.X, vp.Z},
		{e1.Y, e1.Z, e2.Y, e2.Z, vp.Y, vp.Z},
	}
	for _, pr := range projections {
		det := pr.e1x*pr.e2y - pr.e2x*pr.e1y
		if det > -1e-10 && det < 1e-10 {
			continue
		}
		l1 := (pr.vpx*pr.e2y - pr.e2x*pr.vpy) / det
		l2 := (pr.e1x*pr.vpy - pr.vpx*pr.e1y) / det
		return l1 >= -1e-9 && l2 >= -1e-9 && l1+l2 <= 1+1e-9
	}
	return false
}

// barycentricOf returns the (l1,l2) weights of p against (a,b,c) such that
// p = a + l1*(b-a) + l2*(c-a), using the same projection-fallback chain as
// triangleContains.
func barycentricOf(a, b, c, p math3d.Vec3) (l1, l2 float64) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	vp := p.Sub(a)

	type axisPair struct{ e1x, e1y, e2x, e2y, vpx, vpy float64 }
	pairs := []axisPair{
		{e1.X, e1.Y, e2.X, e2.Y, vp.X, vp.Y},
		{e1.X, e1.Z, e2.X, e2.Z, vp.X, vp.Z},
		{e1.Y, e1.Z, e2.Y, e2.Z, vp.Y, vp.Z},
	}
	for _, pr := range pairs {
		det := pr.e1x*pr.e2y - pr.e2x*pr.e1y
		if det > -1e-10 && det < 1e-10 {
			continue
		}
		l1 = (pr.vpx*pr.e2y - pr.e2x*pr.vpy) / det
		l2 = (pr.e1x*pr.vpy - pr.vpx*pr.e1y) / det
		return l1, l2
	}
	return 0, 0
}

func (t *TriangleData) computeIntersection(r Ray, dist float64, prim *Primitive) Hit {
	p := r.At(dist)
	l1, l2 := barycentricOf(t.V0, t.V1, t.V2, p)
	l0 := 1 - l1 - l2
	smooth := t.N0.Scale(l0).Add(t.N1.Scale(l1)).Add(t.N2.Scale(l2)).Normalize()

	normal, inward := orientNormal(r.Direction, smooth)
	flat, _ := orientNormal(r.Direction, t.FlatNormal)
	return Hit{
		Ray: r, Point: p, Normal: normal,
		FlatNormal: flat, HasFlat: true,
		Primitive: prim, Inward: inward,
	}
}

func (t *TriangleData) bounds() (min, max math3d.Vec3) {
	min = t.V0.Min(t.V1).Min(t.V2)
	max = t.V0.Max(t.V1).Max(t.V2)
	return min, max
}
