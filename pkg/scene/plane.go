package scene

import "github.com/taigrr/lumen/pkg/math3d"

// PlaneData is an infinite plane through Point with unit Normal.
type PlaneData struct {
	Point  math3d.Vec3
	Normal math3d.Vec3
}

func (p *PlaneData) measureDistance(r Ray) (float64, bool) {
	denom := r.Direction.Dot(p.Normal)
	if denom > -degenerateEps && denom < degenerateEps {
		return 0, false
	}
	t := p.Point.Sub(r.Origin).Dot(p.Normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

func (p *PlaneData) computeIntersection(r Ray, t float64, prim *Primitive) Hit {
	pt := r.At(t)
	normal, inward := orientNormal(r.Direction, p.Normal)
	return Hit{Ray: r, Point: pt, Normal: normal, Primitive: prim, Inward: inward}
}

// bounds returns a huge but finite cube (±1e6 on every axis), since planes
// have no natural extent; planes added with AddPrimitive are clustered into
// the hierarchy like any other primitive, and this keeps the k-means/octree
// code total.
func (p *PlaneData) bounds() (min, max math3d.Vec3) {
	const huge = 1e6
	return math3d.V3(-huge, -huge, -huge), math3d.V3(huge, huge, huge)
}
