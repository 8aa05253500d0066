package pathtrace

import (
	"math"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/rng"
)

// TestRandomDirectionConeMean checks the defining statistical property of
// cone sampling: the mean cosine between a drawn direction and the cone's
// central axis converges to (1+cos(thetaMax))/2, the expectation of a
// uniform draw over cos(theta) in [cos(thetaMax), 1].
func TestRandomDirectionConeMean(t *testing.T) {
	central := math3d.V3(0, 0, 1)
	thetaMax := math.Pi / 4

	r := rng.New(7)
	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		d := RandomDirection(r, central, thetaMax)
		sum += d.Dot(central)
	}
	mean := sum / n
	want := (1 + math.Cos(thetaMax)) / 2
	if math.Abs(mean-want) > 1e-3 {
		t.Fatalf("cone mean cosine = %v, want %v (+-1e-3)", mean, want)
	}
}

func TestRandomDirectionStaysInsideCone(t *testing.T) {
	central := math3d.V3(0, 1, 0)
	thetaMax := 0.3
	cosMax := math.Cos(thetaMax)

	r := rng.New(3)
	for i := 0; i < 5000; i++ {
		d := RandomDirection(r, central, thetaMax)
		if d.Dot(central) < cosMax-1e-9 {
			t.Fatalf("direction %v fell outside the cone (cos=%v, want >= %v)", d, d.Dot(central), cosMax)
		}
	}
}

// TestCosineHemisphereStaysInHemisphere checks every draw lands on the same
// side of the surface as normal, the basic soundness property diffuse
// bounces rely on.
func TestCosineHemisphereStaysInHemisphere(t *testing.T) {
	normal := math3d.V3(0, 0, 1)
	r := rng.New(5)
	for i := 0; i < 5000; i++ {
		d := CosineHemisphere(r, normal)
		if d.Dot(normal) < -1e-9 {
			t.Fatalf("direction %v crossed to the far side of the hemisphere", d)
		}
	}
}

// TestCosineHemisphereMeanCosine checks the cosine-weighted property: mean
// cos(theta) for a cosine-weighted hemisphere sample is 2/3.
func TestCosineHemisphereMeanCosine(t *testing.T) {
	normal := math3d.V3(1, 0, 0)
	r := rng.New(9)
	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		d := CosineHemisphere(r, normal)
		sum += d.Dot(normal)
	}
	mean := sum / n
	if math.Abs(mean-2.0/3.0) > 1e-2 {
		t.Fatalf("cosine-weighted mean cosine = %v, want ~0.667", mean)
	}
}
