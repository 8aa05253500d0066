package scene

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
)

// withinBounds reports whether p lies inside [min,max] with a small slack
// for floating-point rounding in the bounds computation itself.
func withinBounds(p, min, max math3d.Vec3, eps float64) bool {
	return p.X >= min.X-eps && p.X <= max.X+eps &&
		p.Y >= min.Y-eps && p.Y <= max.Y+eps &&
		p.Z >= min.Z-eps && p.Z <= max.Z+eps
}

func TestSphereBoundsContainRandomSurfacePoints(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	p := &Primitive{Kind: KindSphere, Sphere: SphereData{Center: math3d.V3(3, -2, 1), Radius: 2.5}}
	min, max := p.AxisAlignedBounds()

	for i := 0; i < 1000; i++ {
		theta := r.Float64() * math.Pi
		phi := r.Float64() * 2 * math.Pi
		dir := math3d.V3(math.Sin(theta)*math.Cos(phi), math.Sin(theta)*math.Sin(phi), math.Cos(theta))
		point := p.Sphere.Center.Add(dir.Scale(p.Sphere.Radius))
		if !withinBounds(point, min, max, 1e-9) {
			t.Fatalf("surface point %v outside bounds [%v,%v]", point, min, max)
		}
	}
}

func TestBoxBoundsContainRandomSurfacePoints(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	box := BoxData{
		Center: math3d.V3(1, 1, 1),
		N1:     math3d.V3(1, 0, 0), N2: math3d.V3(0, 1, 0), N3: math3d.V3(0, 0, 1),
		L1: 2, L2: 3, L3: 0.5,
	}
	p := &Primitive{Kind: KindBox, Box: box}
	min, max := p.AxisAlignedBounds()

	for i := 0; i < 1000; i++ {
		u, v, w := r.Float64()*2-1, r.Float64()*2-1, r.Float64()*2-1
		point := box.Center.
			Add(box.N1.Scale(u * box.L1)).
			Add(box.N2.Scale(v * box.L2)).
			Add(box.N3.Scale(w * box.L3))
		if !withinBounds(point, min, max, 1e-9) {
			t.Fatalf("interior point %v outside bounds [%v,%v]", point, min, max)
		}
	}
}

func TestCylinderBoundsContainRandomSurfacePoints(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	cyl := CylinderData{Origin: math3d.V3(0, 0, 0), Direction: math3d.V3(0, 1, 0), Radius: 1.5, Length: 4}
	p := &Primitive{Kind: KindCylinder, Cylinder: cyl}
	min, max := p.AxisAlignedBounds()

	x, y := orthonormalBasisFor(cyl.Direction)
	for i := 0; i < 1000; i++ {
		along := r.Float64() * cyl.Length
		angle := r.Float64() * 2 * math.Pi
		radial := x.Scale(math.Cos(angle) * cyl.Radius).Add(y.Scale(math.Sin(angle) * cyl.Radius))
		point := cyl.Origin.Add(cyl.Direction.Scale(along)).Add(radial)
		if !withinBounds(point, min, max, 1e-6) {
			t.Fatalf("cylinder surface point %v outside bounds [%v,%v]", point, min, max)
		}
	}
}

// orthonormalBasisFor returns two unit vectors spanning the plane orthogonal
// to dir, used only to generate test points on a cylinder's curved surface.
func orthonormalBasisFor(dir math3d.Vec3) (x, y math3d.Vec3) {
	up := math3d.V3(0, 0, 1)
	if math.Abs(dir.Dot(up)) > 0.99 {
		up = math3d.V3(1, 0, 0)
	}
	x = dir.Cross(up).Normalize()
	y = dir.Cross(x).Normalize()
	return x, y
}

func TestTriangleBoundsContainVertices(t *testing.T) {
	v0, v1, v2 := math3d.V3(-1, -1, 2), math3d.V3(3, -1, 2), math3d.V3(0, 4, -1)
	flat := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	p := &Primitive{Kind: KindTriangle, Triangle: NewTriangleData(v0, v1, v2, flat, flat, flat)}
	min, max := p.AxisAlignedBounds()

	for _, v := range []math3d.Vec3{v0, v1, v2} {
		if !withinBounds(v, min, max, 1e-9) {
			t.Fatalf("vertex %v outside bounds [%v,%v]", v, min, max)
		}
	}

	// Barycentric combinations of the vertices must also stay inside.
	r := rand.New(rand.NewPCG(7, 8))
	for i := 0; i < 500; i++ {
		a, b := r.Float64(), r.Float64()
		if a+b > 1 {
			a, b = 1-a, 1-b
		}
		c := 1 - a - b
		point := v0.Scale(c).Add(v1.Scale(a)).Add(v2.Scale(b))
		if !withinBounds(point, min, max, 1e-9) {
			t.Fatalf("interior point %v outside bounds [%v,%v]", point, min, max)
		}
	}
}
