package scene

import "github.com/taigrr/lumen/pkg/math3d"

// BoundingBox is a general oriented box: center, three orthonormal axes, and
// half-extents. Hierarchy-internal boxes always use the world axes; Box
// primitives use their own BoxData type rather than this one.
type BoundingBox struct {
	Center               math3d.Vec3
	N1, N2, N3           math3d.Vec3 // orthonormal axes
	L1, L2, L3           float64     // half-extents along N1,N2,N3
}

// WorldAABB constructs an axis-aligned box (N1,N2,N3 = world axes) spanning
// [min,max], the form the hierarchy builder always produces.
func WorldAABB(min, max math3d.Vec3) BoundingBox {
	center := min.Add(max).Scale(0.5)
	half := max.Sub(min).Scale(0.5)
	return BoundingBox{
		Center: center,
		N1:     math3d.V3(1, 0, 0), N2: math3d.V3(0, 1, 0), N3: math3d.V3(0, 0, 1),
		L1: half.X, L2: half.Y, L3: half.Z,
	}
}

// isWorldAligned reports whether the box's axes are exactly the world axes,
// which lets IsHitBy take the cheap slab-test path used by hierarchy nodes.
func (b BoundingBox) isWorldAligned() bool {
	return b.N1 == math3d.V3(1, 0, 0) && b.N2 == math3d.V3(0, 1, 0) && b.N3 == math3d.V3(0, 0, 1)
}

// IsHitBy is the fast "does this ray hit the box" predicate used as an
// internal-node filter during traversal. For world-aligned boxes it runs a
// standard slab test using the ray's precomputed inv_dir/|inv_dir|; general
// boxes fall back to the full per-axis signed-distance test (same one Box
// primitives use for intersection).
func (b BoundingBox) IsHitBy(r Ray) bool {
	if b.isWorldAligned() {
		return b.hitByWorldSlab(r)
	}
	return b.hitByGeneralSlab(r)
}

func (b BoundingBox) hitByWorldSlab(r Ray) bool {
	min := math3d.V3(b.Center.X-b.L1, b.Center.Y-b.L2, b.Center.Z-b.L3)
	max := math3d.V3(b.Center.X+b.L1, b.Center.Y+b.L2, b.Center.Z+b.L3)

	// Origin-inside-box is always a hit.
	if r.Origin.X >= min.X && r.Origin.X <= max.X &&
		r.Origin.Y >= min.Y && r.Origin.Y <= max.Y &&
		r.Origin.Z >= min.Z && r.Origin.Z <= max.Z {
		return true
	}

	tmin, tmax := -1e300, 1e300
	ok := slabAxis(r.Origin.X, r.InvDir().X, min.X, max.X, &tmin, &tmax)
	ok = ok && slabAxis(r.Origin.Y, r.InvDir().Y, min.Y, max.Y, &tmin, &tmax)
	ok = ok && slabAxis(r.Origin.Z, r.InvDir().Z, min.Z, max.Z, &tmin, &tmax)
	return ok && tmax >= 0 && tmin <= tmax
}

func slabAxis(origin, invDir, lo, hi float64, tmin, tmax *float64) bool {
	t0 := (lo - origin) * invDir
	t1 := (hi - origin) * invDir
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 > *tmin {
		*tmin = t0
	}
	if t1 < *tmax {
		*tmax = t1
	}
	return *tmin <= *tmax
}

// hitByGeneralSlab uses the same signed-distance-to-face-plane formula as
// Box.measureDistance, but only needs a boolean: any axis producing a
// non-negative in-bounds t is a hit.
func (b BoundingBox) hitByGeneralSlab(r Ray) bool {
	a := 1.0
	if !b.contains(r.Origin) {
		a = -1.0
	} else {
		return true
	}
	axes := [3]math3d.Vec3{b.N1, b.N2, b.N3}
	half := [3]float64{b.L1, b.L2, b.L3}
	p := r.Origin.Sub(b.Center)
	for i := 0; i < 3; i++ {
		n := axes[i]
		denom := r.Direction.Dot(n)
		if denom > -1e-7 && denom < 1e-7 {
			continue
		}
		t := -(p.Dot(n)) / denom
		t += a * half[i] / absf(denom)
		if t < 0 {
			continue
		}
		contact := r.At(t).Sub(b.Center)
		other1, other2 := (i+1)%3, (i+2)%3
		if absf(contact.Dot(axes[other1])) <= half[other1]+1e-9 &&
			absf(contact.Dot(axes[other2])) <= half[other2]+1e-9 {
			return true
		}
	}
	return false
}

func (b BoundingBox) contains(p math3d.Vec3) bool {
	d := p.Sub(b.Center)
	return absf(d.Dot(b.N1)) <= b.L1 && absf(d.Dot(b.N2)) <= b.L2 && absf(d.Dot(b.N3)) <= b.L3
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
