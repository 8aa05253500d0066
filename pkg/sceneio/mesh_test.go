package sceneio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

const triangleOBJ = `
# a single unit triangle, plus a quad face to exercise fan-triangulation
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func writeOBJ(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mesh.obj")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadOBJFanTriangulatesQuadFace(t *testing.T) {
	path := writeOBJ(t, triangleOBJ)
	tris, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("expected a quad face to fan-triangulate into 2 triangles, got %d", len(tris))
	}
	for i, tri := range tris {
		if !tri.HasUV {
			t.Fatalf("triangle %d: expected UVs from vt references", i)
		}
	}
	want0 := math3d.V3(0, 0, 0)
	if tris[0].V0.Distance(want0) > 1e-9 {
		t.Fatalf("triangle 0 vertex 0 = %v, want %v", tris[0].V0, want0)
	}
}

func TestLoadOBJDerivesFlatNormalsWhenAbsent(t *testing.T) {
	path := writeOBJ(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	tris, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
	want := math3d.V3(0, 0, 1)
	if tris[0].N0.Distance(want) > 1e-9 {
		t.Fatalf("expected a flat normal %v, got %v", want, tris[0].N0)
	}
	if tris[0].HasUV {
		t.Fatal("expected no UVs when the face omits vt references")
	}
}

func TestLoadOBJReportsOutOfRangeIndex(t *testing.T) {
	path := writeOBJ(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n")
	_, err := LoadOBJ(path)
	if err == nil {
		t.Fatal("expected an error for an out-of-range vertex index")
	}
	if _, ok := err.(*MeshError); !ok {
		t.Fatalf("expected *MeshError, got %T (%v)", err, err)
	}
}

func TestBuildMeshPrimitivesAppliesShiftAndScale(t *testing.T) {
	s := scene.NewScene()
	tris := []MeshTriangle{{
		V0: math3d.V3(0, 0, 0), V1: math3d.V3(1, 0, 0), V2: math3d.V3(0, 1, 0),
		N0: math3d.V3(0, 0, 1), N1: math3d.V3(0, 0, 1), N2: math3d.V3(0, 0, 1),
	}}
	shift := math3d.V3(10, 0, 0)
	prims := BuildMeshPrimitives(s, tris, 3, scene.NoTexture, shift, 2)
	if len(prims) != 1 {
		t.Fatalf("expected 1 primitive, got %d", len(prims))
	}
	p := prims[0]
	if p.MaterialIndex != 3 {
		t.Fatalf("expected material index 3, got %d", p.MaterialIndex)
	}
	if p.TextureInfoIndex != scene.NoTexture {
		t.Fatalf("expected no texture info, got %d", p.TextureInfoIndex)
	}
	want := math3d.V3(10, 0, 0)
	if p.Triangle.V0.Distance(want) > 1e-9 {
		t.Fatalf("expected shifted+scaled vertex %v, got %v", want, p.Triangle.V0)
	}
}

func TestBuildMeshPrimitivesAttachesTextureInfoWhenUVsPresent(t *testing.T) {
	s := scene.NewScene()
	tris := []MeshTriangle{{
		V0: math3d.V3(0, 0, 0), V1: math3d.V3(1, 0, 0), V2: math3d.V3(0, 1, 0),
		N0: math3d.V3(0, 0, 1), N1: math3d.V3(0, 0, 1), N2: math3d.V3(0, 0, 1),
		HasUV: true,
		UV0:   math3d.V2(0, 0), UV1: math3d.V2(1, 0), UV2: math3d.V2(0, 1),
	}}
	prims := BuildMeshPrimitives(s, tris, 0, 5, math3d.Zero3(), 1)
	p := prims[0]
	if p.TextureInfoIndex == scene.NoTexture {
		t.Fatal("expected a texture info to be attached when UVs are present and a texture index is given")
	}
}
