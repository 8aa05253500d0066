package scene

import "github.com/taigrr/lumen/pkg/math3d"

// Kind tags which variant of Primitive is populated. Using a tag + switch
// instead of an interface removes vtable indirection from the intersection
// hot loop and lets each variant's math inline (spec design note §9).
type Kind int

const (
	KindSphere Kind = iota
	KindPlane
	KindBox
	KindCylinder
	KindTriangle
	KindQuad
)

// Primitive is a tagged variant over the six supported surface types. Only
// the field matching Kind is populated; the rest are zero.
type Primitive struct {
	Kind             Kind
	MaterialIndex    int
	TextureInfoIndex int // NoTexture if untextured

	Sphere   SphereData
	Plane    PlaneData
	Box      BoxData
	Cylinder CylinderData
	Triangle TriangleData
	Quad     QuadData
}

// MeasureDistance returns the smallest positive parametric distance at which
// ray meets the surface, or (0, false) on a miss.
func (p *Primitive) MeasureDistance(r Ray) (float64, bool) {
	switch p.Kind {
	case KindSphere:
		return p.Sphere.measureDistance(r)
	case KindPlane:
		return p.Plane.measureDistance(r)
	case KindBox:
		return p.Box.measureDistance(r)
	case KindCylinder:
		return p.Cylinder.measureDistance(r)
	case KindTriangle:
		return p.Triangle.measureDistance(r)
	case KindQuad:
		return p.Quad.measureDistance(r)
	}
	return 0, false
}

// ComputeIntersection builds the shading-ready Hit at the given t, assumed to
// have come from a prior MeasureDistance call on the same ray.
func (p *Primitive) ComputeIntersection(r Ray, t float64) Hit {
	switch p.Kind {
	case KindSphere:
		return p.Sphere.computeIntersection(r, t, p)
	case KindPlane:
		return p.Plane.computeIntersection(r, t, p)
	case KindBox:
		return p.Box.computeIntersection(r, t, p)
	case KindCylinder:
		return p.Cylinder.computeIntersection(r, t, p)
	case KindTriangle:
		return p.Triangle.computeIntersection(r, t, p)
	case KindQuad:
		return p.Quad.computeIntersection(r, t, p)
	}
	return Hit{}
}

// AxisAlignedBounds returns the primitive's world-space (min,max), used only
// by the hierarchy builder.
func (p *Primitive) AxisAlignedBounds() (min, max math3d.Vec3) {
	switch p.Kind {
	case KindSphere:
		return p.Sphere.bounds()
	case KindPlane:
		return p.Plane.bounds()
	case KindBox:
		return p.Box.bounds()
	case KindCylinder:
		return p.Cylinder.bounds()
	case KindTriangle:
		return p.Triangle.bounds()
	case KindQuad:
		return p.Quad.bounds()
	}
	return math3d.Zero3(), math3d.Zero3()
}

// Centroid returns the primitive's center for k-means/octree purposes.
func (p *Primitive) Centroid() math3d.Vec3 {
	min, max := p.AxisAlignedBounds()
	return min.Add(max).Scale(0.5)
}

const degenerateEps = 1e-6

// Hit is the shading-ready result of an intersection. It carries a back
// reference to its generating Ray, a world-space contact point, a shading
// normal already oriented so that Inward holds, an optional flat geometric
// normal for polygon smooth shading, and the primitive hit.
type Hit struct {
	Ray         Ray
	Point       math3d.Vec3
	Normal      math3d.Vec3
	FlatNormal  math3d.Vec3
	HasFlat     bool
	Primitive   *Primitive
	Inward      bool // (ray.direction . normal) <= 0
}

func orientNormal(dir, n math3d.Vec3) (math3d.Vec3, bool) {
	if dir.Dot(n) <= 0 {
		return n, true
	}
	return n.Negate(), false
}
