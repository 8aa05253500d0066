package scene

import "github.com/taigrr/lumen/pkg/math3d"

// Ray carries precomputed inv_dir and |inv_dir| alongside origin/direction so
// the box predicate avoids per-test divisions. Invariant: Direction is unit;
// NewRay (the only constructor) establishes invDir atomically with it.
type Ray struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
	invDir    math3d.Vec3
	absInvDir math3d.Vec3
}

// NewRay constructs a Ray, normalizing direction and precomputing the
// reciprocal-direction fields used by the box slab test.
func NewRay(origin, direction math3d.Vec3) Ray {
	d := direction.Normalize()
	inv := math3d.V3(safeInv(d.X), safeInv(d.Y), safeInv(d.Z))
	return Ray{
		Origin:    origin,
		Direction: d,
		invDir:    inv,
		absInvDir: inv.Abs(),
	}
}

func safeInv(x float64) float64 {
	if x == 0 {
		return math3dInf
	}
	return 1 / x
}

const math3dInf = 1e300 // effectively infinite for slab-test purposes without producing NaN on 1/0

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) math3d.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// InvDir returns the precomputed componentwise reciprocal direction.
func (r Ray) InvDir() math3d.Vec3 { return r.invDir }

// AbsInvDir returns the componentwise absolute value of InvDir.
func (r Ray) AbsInvDir() math3d.Vec3 { return r.absInvDir }
