package scene

import "github.com/taigrr/lumen/pkg/math3d"

// QuadData is a planar quadrilateral v0,v1,v2,v3 (in winding order), tested
// as two triangles (v0,v1,v2) and (v0,v2,v3). The hit does not record which
// half was struck; callers that need the matching per-vertex normal/UV trio
// re-test the point against (v0,v1,v2).
type QuadData struct {
	V0, V1, V2, V3 math3d.Vec3
	N0, N1, N2, N3 math3d.Vec3
	FlatNormal     math3d.Vec3
}

// NewQuadData builds a QuadData, deriving the flat face normal from the
// first triangle's winding.
func NewQuadData(v0, v1, v2, v3, n0, n1, n2, n3 math3d.Vec3) QuadData {
	flat := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	return QuadData{V0: v0, V1: v1, V2: v2, V3: v3, N0: n0, N1: n1, N2: n2, N3: n3, FlatNormal: flat}
}

// measureDistance intersects the quad's plane, then tests the hit point
// against the lower triangle (v0,v1,v2) first and the upper (v0,v2,v3)
// second, matching the original's two-triangle decomposition.
func (q *QuadData) measureDistance(r Ray) (float64, bool) {
	denom := r.Direction.Dot(q.FlatNormal)
	if denom > -degenerateEps && denom < degenerateEps {
		return 0, false
	}
	d := -q.V0.Dot(q.FlatNormal)
	dist := -(r.Origin.Dot(q.FlatNormal) + d) / denom
	if dist < 0 {
		return 0, false
	}
	p := r.At(dist)
	if triangleContains(q.V0, q.V1, q.V2, p) || triangleContains(q.V0, q.V2, q.V3, p) {
		return dist, true
	}
	return 0, false
}

func (q *QuadData) computeIntersection(r Ray, dist float64, prim *Primitive) Hit {
	p := r.At(dist)

	var smooth math3d.Vec3
	if triangleContains(q.V0, q.V1, q.V2, p) {
		l1, l2 := barycentricOf(q.V0, q.V1, q.V2, p)
		l0 := 1 - l1 - l2
		smooth = q.N0.Scale(l0).Add(q.N1.Scale(l1)).Add(q.N2.Scale(l2)).Normalize()
	} else {
		l1, l2 := barycentricOf(q.V0, q.V2, q.V3, p)
		l0 := 1 - l1 - l2
		smooth = q.N0.Scale(l0).Add(q.N2.Scale(l1)).Add(q.N3.Scale(l2)).Normalize()
	}

	normal, inward := orientNormal(r.Direction, smooth)
	flat, _ := orientNormal(r.Direction, q.FlatNormal)
	return Hit{
		Ray: r, Point: p, Normal: normal,
		FlatNormal: flat, HasFlat: true,
		Primitive: prim, Inward: inward,
	}
}

func (q *QuadData) bounds() (min, max math3d.Vec3) {
	min = q.V0.Min(q.V1).Min(q.V2).Min(q.V3)
	max = q.V0.Max(q.V1).Max(q.V2).Max(q.V3)
	return min, max
}
