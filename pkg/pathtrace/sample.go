// Package pathtrace implements the Monte Carlo light transport core: cone
// and cosine-hemisphere direction sampling, the opaque/transparent shading
// decision tree, the iterative path-tracing loop (with optional Russian
// roulette and an opt-in multisample first-bounce variant), and the
// row-parallel render driver.
package pathtrace

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/rng"
)

// RandomDirection draws a direction inside a cone of half-angle thetaMax
// around central: phi uniform in [0,2pi), cos(theta) uniform in
// [cos(thetaMax), 1], then expressed in an orthonormal basis around central.
// Grounded on random_direction in tracing/directions.cpp.
func RandomDirection(r *rng.Source, central math3d.Vec3, thetaMax float64) math3d.Vec3 {
	phi := r.Float64(2 * math.Pi)
	cosThetaMax := math.Cos(thetaMax)
	cosTheta := 1 - r.Unit()*(1-cosThetaMax)
	sinTheta := math.Sqrt(nonNegative(1 - cosTheta*cosTheta))

	x, y := orthonormalBasis(central)
	return x.Scale(math.Cos(phi) * sinTheta).
		Add(y.Scale(math.Sin(phi) * sinTheta)).
		Add(central.Scale(cosTheta)).
		Normalize()
}

// CosineHemisphere draws a cosine-weighted direction over the hemisphere
// around normal, the diffuse-bounce sampling rule from spec §4.8 (distinct
// from RandomDirection's uniform-solid-angle cone, used for specular and
// refraction jitter instead).
func CosineHemisphere(r *rng.Source, normal math3d.Vec3) math3d.Vec3 {
	u1, u2 := r.Unit(), r.Unit()
	radius := math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	x, y := orthonormalBasis(normal)
	return x.Scale(radius * math.Cos(theta)).
		Add(y.Scale(radius * math.Sin(theta))).
		Add(normal.Scale(math.Sqrt(nonNegative(1 - u1)))).
		Normalize()
}

// orthonormalBasis returns two unit vectors spanning the plane orthogonal to
// central, special-casing the near-z-axis direction so the construction
// never degenerates, matching get_orthonormal_basis in the original.
func orthonormalBasis(central math3d.Vec3) (x, y math3d.Vec3) {
	a, b := central.X, central.Y
	if a*a+b*b > 1e-12 {
		x = math3d.V3(-b, a, 0).Normalize()
	} else {
		x = math3d.V3(1, 0, 0)
	}
	y = central.Cross(x).Normalize()
	return x, y
}

func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
