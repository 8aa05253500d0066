package scene

import (
	"math"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
)

func TestSampleNormalMapPerturbsAFlatNormalQuad(t *testing.T) {
	s := NewScene()
	nm := &NormalMap{Width: 1, Height: 1, Normals: []math3d.Vec3{math3d.V3(0.3, 0.4, math.Sqrt(1 - 0.09 - 0.16))}}
	normalMapIdx := s.AddNormalMap(nm)

	v0, v1, v2, v3 := math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0)
	flat := math3d.V3(0, 0, 1)
	quad := NewQuadData(v0, v1, v2, v3, flat, flat, flat, flat)

	ti := TextureInfo{
		TextureIndex:   NoTexture,
		NormalMapIndex: normalMapIdx,
		UV:             []math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)},
		Tangent:        math3d.V3(1, 0, 0),
		Bitangent:      math3d.V3(0, 1, 0),
	}
	tiIdx := s.AddTextureInfo(ti)

	p := &Primitive{Kind: KindQuad, TextureInfoIndex: tiIdx, Quad: quad}
	hit := Hit{Point: math3d.V3(0.5, -0.5, 0), Normal: flat, Primitive: p}

	perturbed, ok := s.SampleNormalMap(p, hit)
	if !ok {
		t.Fatal("expected a normal map sample, the primitive carries one")
	}
	if perturbed.Distance(flat) < 1e-3 {
		t.Fatalf("expected the sampled normal to differ from the unperturbed normal, got %v", perturbed)
	}
	if math.Abs(perturbed.Len()-1) > 1e-9 {
		t.Fatalf("expected a unit vector, got length %v", perturbed.Len())
	}
}

func TestSampleNormalMapAbsentReturnsFalse(t *testing.T) {
	s := NewScene()
	p := &Primitive{Kind: KindSphere, TextureInfoIndex: NoTexture, Sphere: SphereData{Center: math3d.Zero3(), Radius: 1}}
	hit := Hit{Point: math3d.V3(0, 0, 1), Normal: math3d.V3(0, 0, 1), Primitive: p}
	if _, ok := s.SampleNormalMap(p, hit); ok {
		t.Fatal("expected no normal map sample for an untextured primitive")
	}
}

func TestWorldNormalAtIdentitySampleRecoversFaceNormal(t *testing.T) {
	ti := TextureInfo{Tangent: math3d.V3(1, 0, 0), Bitangent: math3d.V3(0, 1, 0)}
	faceNormal := math3d.V3(0, 0, 1)
	got := ti.WorldNormal(faceNormal, math3d.V3(0, 0, 1))
	if got.Distance(faceNormal) > 1e-9 {
		t.Fatalf("a (0,0,1) tangent-space sample should recover the face normal unchanged, got %v", got)
	}
}
