package pathtrace

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// CentralReflectedDirection returns the central axis of the specular
// sampling cone: a blend between the surface normal and a perfect mirror
// reflection of incoming, weighted by reflectivity. normal must already be
// oriented against incoming (scene.Hit.Normal satisfies this). Equivalent to
// (reflectivity*(2*cos-1)+1)*normal + reflectivity*incoming in the original's
// get_central_reflected_direction, simplified here to the lerp form the
// spec states directly.
func CentralReflectedDirection(incoming, normal math3d.Vec3, reflectivity float64) math3d.Vec3 {
	cos := -incoming.Dot(normal)
	mirror := incoming.Add(normal.Scale(2 * cos))
	return normal.Lerp(mirror, reflectivity)
}

// SinRefracted returns Snell's law's bent-ray transverse component vx and
// sin²θ₂ = |vx|², per get_sin_refracted: vx = (n1/n2) * (dir - (dir·normal)*normal).
func SinRefracted(dir, normal math3d.Vec3, currentIndex, surfaceIndex float64) (vx math3d.Vec3, sinThetaSq float64) {
	ratio := currentIndex / surfaceIndex
	vx = dir.Sub(normal.Scale(dir.Dot(normal))).Scale(ratio)
	return vx, vx.LenSq()
}

// RefractedDirection computes the refracted ray direction via Snell's law,
// reporting ok=false (total internal reflection) when sin²θ₂ >= 1, matching
// get_refracted_direction/the TIR check in the shading decision tree. normal
// must already be oriented against dir (scene.Hit.Normal satisfies this, as
// does orientNormal in scene/primitive.go), so the transmitted ray's
// normal-aligned component always points along -normal, regardless of
// whether the ray is entering or exiting the medium.
func RefractedDirection(dir, normal math3d.Vec3, currentIndex, surfaceIndex float64) (refracted math3d.Vec3, ok bool) {
	vx, sinSq := SinRefracted(dir, normal, currentIndex, surfaceIndex)
	if sinSq >= 1 {
		return math3d.Vec3{}, false
	}
	return vx.Add(normal.Negate().Scale(math.Sqrt(1 - sinSq))).Normalize(), true
}

// Schlick returns Schlick's approximation of the Fresnel reflectance Kr for
// unpolarized light crossing from a medium of index n1 into one of index n2,
// given the cosine of the angle of incidence.
func Schlick(cosTheta, n1, n2 float64) float64 {
	r0 := (n1 - n2) / (n1 + n2)
	r0 *= r0
	return r0 + (1-r0)*math.Pow(1-cosTheta, 5)
}

// Fresnel returns the exact (non-approximated) unpolarized Fresnel
// reflectance, averaging the orthogonal and parallel polarization terms, for
// a ray crossing at angle θ1 (cosine cosTheta1) into a medium where the
// refracted angle has cosine cosTheta2. Kept for tests that check Schlick's
// approximation against the exact formula at normal and grazing incidence;
// the shading path itself uses Schlick per spec §4.8.
func Fresnel(cosTheta1, cosTheta2, n1, n2 float64) float64 {
	rOrth := (n1*cosTheta1 - n2*cosTheta2) / (n1*cosTheta1 + n2*cosTheta2)
	rPar := (n2*cosTheta1 - n1*cosTheta2) / (n2*cosTheta1 + n1*cosTheta2)
	return 0.5 * (rOrth*rOrth + rPar*rPar)
}
