package pathtrace

import (
	"math"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
)

func TestSchlickAtNormalIncidence(t *testing.T) {
	kr := Schlick(1, 1.0, 1.5)
	r0 := math.Pow((1.0-1.5)/(1.0+1.5), 2)
	if math.Abs(kr-r0) > 1e-9 {
		t.Fatalf("at normal incidence Schlick should equal R0=%v, got %v", r0, kr)
	}
}

func TestSchlickApproachesOneAtGrazingIncidence(t *testing.T) {
	kr := Schlick(1e-6, 1.0, 1.5)
	if kr < 0.99 {
		t.Fatalf("grazing incidence should push reflectance near 1, got %v", kr)
	}
}

func TestSchlickMatchesExactFresnelAtNormalIncidence(t *testing.T) {
	n1, n2 := 1.0, 1.5
	kr := Schlick(1, n1, n2)
	exact := Fresnel(1, 1, n1, n2)
	if math.Abs(kr-exact) > 1e-9 {
		t.Fatalf("Schlick(%v) should match exact Fresnel(%v) at normal incidence", kr, exact)
	}
}

func TestSchlickApproximatesExactFresnelNearGrazing(t *testing.T) {
	n1, n2 := 1.0, 1.5
	cosTheta1 := 0.05
	sinTheta1 := math.Sqrt(1 - cosTheta1*cosTheta1)
	sinTheta2 := sinTheta1 * n1 / n2
	cosTheta2 := math.Sqrt(1 - sinTheta2*sinTheta2)

	approx := Schlick(cosTheta1, n1, n2)
	exact := Fresnel(cosTheta1, cosTheta2, n1, n2)
	if math.Abs(approx-exact) > 0.05 {
		t.Fatalf("Schlick approximation diverged too far from exact Fresnel near grazing incidence: %v vs %v", approx, exact)
	}
}

// TestRefractedDirectionRoundTrip checks Snell's law is self-consistent:
// bending a direction from a medium of index n1 into n2 and then back from
// n2 into n1 across the same interface must recover the original direction.
// normal is passed unchanged to both calls, matching the oriented-normal
// convention RefractedDirection now assumes throughout (scene.Hit.Normal is
// always oriented against the ray it was computed from, whether the ray is
// entering or exiting a dielectric).
func TestRefractedDirectionRoundTrip(t *testing.T) {
	normal := math3d.V3(0, 0, 1)
	incoming := math3d.V3(0.3, 0, -1).Normalize()
	n1, n2 := 1.0, 1.5

	refracted, ok := RefractedDirection(incoming, normal, n1, n2)
	if !ok {
		t.Fatal("expected refraction to succeed entering the denser medium")
	}

	back, ok := RefractedDirection(refracted, normal, n2, n1)
	if !ok {
		t.Fatal("expected refraction to succeed returning to the original medium")
	}

	if back.Distance(incoming) > 1e-5 {
		t.Fatalf("round-tripped direction %v does not match original %v", back, incoming)
	}
}

// TestRefractedDirectionExitsAwayFromTheNormal checks the bug the oriented-
// normal convention guards against: at normal incidence (no bend), the
// transmitted ray must continue in the same direction as the incoming ray,
// not bounce back along -incoming.
func TestRefractedDirectionExitsAwayFromTheNormal(t *testing.T) {
	normal := math3d.V3(0, 0, -1) // oriented against a ray traveling +z, i.e. exiting a surface whose geometric normal is +z
	incoming := math3d.V3(0, 0, 1)
	refracted, ok := RefractedDirection(incoming, normal, 1.5, 1.0)
	if !ok {
		t.Fatal("expected refraction to succeed at normal incidence")
	}
	if refracted.Distance(incoming) > 1e-9 {
		t.Fatalf("normal-incidence refraction should pass straight through, got %v, want %v", refracted, incoming)
	}
}

func TestRefractedDirectionReportsTotalInternalReflection(t *testing.T) {
	normal := math3d.V3(0, 0, 1)
	// A steep grazing angle from the denser medium into the rarer one
	// exceeds the critical angle and must report TIR.
	incoming := math3d.V3(0.99, 0, -0.14).Normalize()
	_, ok := RefractedDirection(incoming, normal, 1.5, 1.0)
	if ok {
		t.Fatal("expected total internal reflection to be reported")
	}
}

func TestCentralReflectedDirectionAtZeroReflectivity(t *testing.T) {
	normal := math3d.V3(0, 1, 0)
	incoming := math3d.V3(1, -1, 0).Normalize()
	dir := CentralReflectedDirection(incoming, normal, 0)
	if dir.Distance(normal) > 1e-9 {
		t.Fatalf("zero reflectivity should collapse to the normal, got %v", dir)
	}
}

func TestCentralReflectedDirectionAtFullReflectivity(t *testing.T) {
	normal := math3d.V3(0, 1, 0)
	incoming := math3d.V3(1, -1, 0).Normalize()
	dir := CentralReflectedDirection(incoming, normal, 1)
	mirror := incoming.Add(normal.Scale(2 * (-incoming.Dot(normal))))
	if dir.Distance(mirror) > 1e-9 {
		t.Fatalf("full reflectivity should equal the mirror direction %v, got %v", mirror, dir)
	}
}
