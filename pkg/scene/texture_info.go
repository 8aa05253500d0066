package scene

import "github.com/taigrr/lumen/pkg/math3d"

// TextureInfo attaches texture and normal-map indices plus per-vertex UVs and
// a precomputed tangent/bitangent pair to a textured primitive. A triangle
// stores 3 UVs, a quad 4; a sphere uses a projective (u,v) pair computed on
// the fly instead (no per-vertex storage needed). Planes, boxes and cylinders
// are not textured.
type TextureInfo struct {
	TextureIndex   int // -1 if none
	NormalMapIndex int // -1 if none
	UV             []math3d.Vec2
	Tangent        math3d.Vec3
	Bitangent      math3d.Vec3
}

// NoTexture is the sentinel TextureInfo index value meaning "untextured".
const NoTexture = -1

// ComputeTangentBasis derives a unit (tangent, bitangent) pair from two edge
// vectors and their UV deltas, the standard polygon tangent-space
// construction; the two are orthogonal only when the UV mapping is not
// skewed (and in the degenerate fallback). du1,dv1,du2,dv2 are the UV deltas along edge1/edge2.
func ComputeTangentBasis(edge1, edge2 math3d.Vec3, du1, dv1, du2, dv2 float64) (tangent, bitangent math3d.Vec3) {
	det := du1*dv2 - du2*dv1
	if det > -1e-10 && det < 1e-10 {
		// Degenerate UV mapping: fall back to an arbitrary basis orthogonal
		// to the face normal via the first edge.
		t := edge1.Normalize()
		n := edge1.Cross(edge2).Normalize()
		return t, n.Cross(t)
	}
	r := 1.0 / det
	tangent = edge1.Scale(dv2 * r).Sub(edge2.Scale(dv1 * r)).Normalize()
	bitangent = edge2.Scale(du1 * r).Sub(edge1.Scale(du2 * r)).Normalize()
	return tangent, bitangent
}

// WorldNormal rotates a tangent-space normal map sample into world space
// using the precomputed (tangent, bitangent) pair and the geometric normal,
// per spec §4.11: tangent*nx + bitangent*ny + localNormal*nz.
func (ti *TextureInfo) WorldNormal(faceNormal, sample math3d.Vec3) math3d.Vec3 {
	return ti.Tangent.Scale(sample.X).
		Add(ti.Bitangent.Scale(sample.Y)).
		Add(faceNormal.Scale(sample.Z)).
		Normalize()
}
