package pathtrace

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/rng"
	"github.com/taigrr/lumen/pkg/scene"
)

// These tests exercise the six end-to-end scenarios as whole-scene renders
// rather than unit checks on a single function. The ones that need many
// samples to converge are skipped under -short.

func colorDistance(a, b color.Color) float64 {
	dr, dg, db := a.R-b.R, a.G-b.G, a.B-b.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// samplePixel averages n independent Trace samples of ray, seeding a fresh
// rng per sample from seed so repeated calls in one test don't correlate.
func samplePixel(s *scene.Scene, tracer Tracer, ray scene.Ray, n int, seed uint64) color.Color {
	sum := color.Black
	for i := 0; i < n; i++ {
		r := rng.ForPixel(seed, i)
		sum = sum.Add(tracer.Trace(s, ray, r))
	}
	return sum.Div(float64(n))
}

// TestSceneDiffuseSphereBrightestAtPoleFacingLight builds a single diffuse
// sphere lit from directly above by an emissive sphere and checks the
// Lambertian falloff: the pole facing the light must be much brighter than
// the pole facing away from it.
func TestSceneDiffuseSphereBrightestAtPoleFacingLight(t *testing.T) {
	if testing.Short() {
		t.Skip("whole-scene render, skipped under -short")
	}

	s := scene.NewScene()
	sphereMat := s.AddMaterial(scene.Diffuse(color.White))
	s.AddPrimitive(&scene.Primitive{
		Kind:             scene.KindSphere,
		MaterialIndex:    sphereMat,
		TextureInfoIndex: scene.NoTexture,
		Sphere:           scene.SphereData{Center: math3d.Zero3(), Radius: 1},
	})

	lightMat := s.AddMaterial(scene.Light(color.White, 4))
	s.AddPrimitive(&scene.Primitive{
		Kind:             scene.KindSphere,
		MaterialIndex:    lightMat,
		TextureInfoIndex: scene.NoTexture,
		Sphere:           scene.SphereData{Center: math3d.V3(0, 10, 0), Radius: 2},
	})
	s.Build()

	tracer := DefaultTracer(4)
	top := samplePixel(s, tracer, scene.NewRay(math3d.V3(0, 3, 0), math3d.V3(0, -1, 0)), 2000, 1)
	bottom := samplePixel(s, tracer, scene.NewRay(math3d.V3(0, -3, 0), math3d.V3(0, 1, 0)), 2000, 2)

	if top.Luminance() < 15*bottom.Luminance() {
		t.Fatalf("top pole luminance %v is not >=15x bottom pole luminance %v", top.Luminance(), bottom.Luminance())
	}
}

// TestSceneFacingMirrorsConvergeToBackground checks that a ray passing
// straight through the center of one of two mirror spheres facing each other
// across a gap bounces back the way it came and escapes to the unattenuated
// background: reflectivity=1 with reflects_color=false carries no color
// information through a bounce, so the background reaching the camera is not
// tinted by the mirror's own color.
func TestSceneFacingMirrorsConvergeToBackground(t *testing.T) {
	s := scene.NewScene()
	s.Background = scene.Background{Color: color.RGB(0.2, 0.4, 0.8)}

	mirror := s.AddMaterial(scene.Mirror(color.RGB(1, 0, 0)))
	s.AddPrimitive(&scene.Primitive{
		Kind: scene.KindSphere, MaterialIndex: mirror, TextureInfoIndex: scene.NoTexture,
		Sphere: scene.SphereData{Center: math3d.V3(-1, 0, 0), Radius: 0.4},
	})
	s.AddPrimitive(&scene.Primitive{
		Kind: scene.KindSphere, MaterialIndex: mirror, TextureInfoIndex: scene.NoTexture,
		Sphere: scene.SphereData{Center: math3d.V3(1, 0, 0), Radius: 0.4},
	})
	s.Build()

	tracer := DefaultTracer(4)
	r := rng.New(11)
	// Travels straight through the right sphere's center, parallel to the
	// line joining the two spheres, so it never comes near the left one.
	ray := scene.NewRay(math3d.V3(1, 0, -5), math3d.V3(0, 0, 1))
	got := tracer.Trace(s, ray, r)

	if colorDistance(got, s.Background.Color) > 1e-6 {
		t.Fatalf("ray reflected by the mirror should reach the background unattenuated, got %v want %v", got, s.Background.Color)
	}
}

// TestSceneGlassSphereInvertsBehindIt checks the defining property of a
// converging lens: a ray displaced upward from the optical axis, after
// refracting through a glass sphere centered on that axis, bends toward the
// opposite (downward) side of the axis.
func TestSceneGlassSphereInvertsBehindIt(t *testing.T) {
	s := scene.NewScene()
	glass := s.AddMaterial(scene.Glass(color.White))
	s.AddPrimitive(&scene.Primitive{
		Kind: scene.KindSphere, MaterialIndex: glass,
		Sphere: scene.SphereData{Center: math3d.Zero3(), Radius: 1},
	})
	s.Build()

	ray := scene.NewRay(math3d.V3(0, 0.3, -5), math3d.V3(0, 0, 1))
	hit, ok := s.FindClosestObject(ray)
	if !ok {
		t.Fatal("expected the offset ray to hit the glass sphere")
	}
	m := s.MaterialFor(hit.Primitive)
	refracted, ok := RefractedDirection(hit.Ray.Direction, hit.Normal, 1, m.RefractionIndex)
	if !ok {
		t.Fatal("expected refraction to succeed entering the glass sphere")
	}
	if refracted.Y >= 0 {
		t.Fatalf("a ray entering above the optical axis should bend toward it, got direction %v", refracted)
	}
}

// TestSceneTexturedQuadWithIdentityNormalMapMatchesTextureColor builds a
// checkerboard-textured quad with a normal map that encodes the untouched
// face normal (0,0,1) in tangent space, and checks that a diffuse bounce off
// the quad's center carries exactly that texel's color as its throughput,
// which is what a one-bounce render against a white background shows at that
// pixel.
func TestSceneTexturedQuadWithIdentityNormalMapMatchesTextureColor(t *testing.T) {
	s := scene.NewScene()
	s.Background = scene.Background{Color: color.White}

	tex := scene.NewTexture(2, 2)
	tex.Set(0, 0, color.RGB(1, 0, 0))
	tex.Set(1, 0, color.RGB(0, 0, 1))
	tex.Set(0, 1, color.RGB(0, 0, 1))
	tex.Set(1, 1, color.RGB(1, 0, 0))
	texIdx := s.AddTexture(tex)

	nm := &scene.NormalMap{Width: 1, Height: 1, Normals: []math3d.Vec3{math3d.V3(0, 0, 1)}}
	nmIdx := s.AddNormalMap(nm)

	v0, v1, v2, v3 := math3d.V3(-1, -1, 0), math3d.V3(1, -1, 0), math3d.V3(1, 1, 0), math3d.V3(-1, 1, 0)
	flat := math3d.V3(0, 0, -1) // faces the camera looking down +z
	quad := scene.NewQuadData(v0, v1, v2, v3, flat, flat, flat, flat)

	ti := scene.TextureInfo{
		TextureIndex:   texIdx,
		NormalMapIndex: nmIdx,
		UV:             []math3d.Vec2{math3d.V2(0, 0), math3d.V2(1, 0), math3d.V2(1, 1), math3d.V2(0, 1)},
		Tangent:        math3d.V3(1, 0, 0),
		Bitangent:      math3d.V3(0, -1, 0),
	}
	tiIdx := s.AddTextureInfo(ti)

	quadMat := s.AddMaterial(scene.Diffuse(color.RGB(0.9, 0.1, 0.2)))
	s.AddPrimitive(&scene.Primitive{
		Kind: scene.KindQuad, MaterialIndex: quadMat, TextureInfoIndex: tiIdx,
		Quad: quad,
	})
	s.Build()

	tracer := DefaultTracer(2)
	r := rng.New(5)
	// Offset slightly off dead-center: the quad's two triangles split along
	// the v0-v2 diagonal, and a ray aimed at the exact geometric center lands
	// on that diagonal, an ambiguous boundary case for uv lookup.
	ray := scene.NewRay(math3d.V3(0.05, -0.05, -5), math3d.V3(0, 0, 1))
	got := tracer.Trace(s, ray, r)

	want := tex.Get(0.5, 0.5)
	if colorDistance(got, want) > 1.0/255 {
		t.Fatalf("quad-center render %v should match texture-center color %v within one RGB unit", got, want)
	}
}

// TestSceneDenseMeshTraversalVisitsAFractionOfPrimitives checks that
// clustering a finely tessellated surface keeps per-ray traversal sublinear:
// most rays should prune the vast majority of the mesh's triangles via the
// bounding hierarchy instead of testing every one of them.
func TestSceneDenseMeshTraversalVisitsAFractionOfPrimitives(t *testing.T) {
	if testing.Short() {
		t.Skip("dense mesh traversal sweep, skipped under -short")
	}

	const gridPerFace = 16 // gridPerFace^2 quads per face, 6 faces, 2 triangles per quad
	prims := tessellatedCubeTriangles(gridPerFace)

	const polygonsPerBounding = 12
	indices := make([]int, len(prims))
	for i := range indices {
		indices[i] = i
	}
	root := scene.BuildHierarchy(prims, indices, polygonsPerBounding)

	depth := hierarchyDepth(&root)
	minDepth := int(math.Log(float64(len(prims))/float64(polygonsPerBounding)) / math.Log(3))
	if depth < minDepth {
		t.Fatalf("hierarchy depth %d is shallower than expected minimum %d for %d primitives", depth, minDepth, len(prims))
	}

	prng := rand.New(rand.NewPCG(7, 13))
	const numRays = 500
	visited := 0
	for i := 0; i < numRays; i++ {
		origin := math3d.V3(prng.Float64()*10-5, prng.Float64()*10-5, prng.Float64()*10-5)
		dir := math3d.V3(prng.Float64()*2-1, prng.Float64()*2-1, prng.Float64()*2-1)
		if dir.LenSq() < 1e-12 {
			continue
		}
		visited += countVisited(&root, scene.NewRay(origin, dir.Normalize()))
	}
	avgFraction := float64(visited) / float64(numRays) / float64(len(prims))
	if avgFraction > 0.02 {
		t.Fatalf("average fraction of primitives visited per ray %v exceeds 2%%", avgFraction)
	}
}

// tessellatedCubeTriangles builds a cube spanning [-1,1] on each axis whose six faces are each
// divided into gridPerFace x gridPerFace quads, each quad split into two
// triangles, enough primitives to give the clustering hierarchy real depth.
func tessellatedCubeTriangles(gridPerFace int) []*scene.Primitive {
	var prims []*scene.Primitive
	step := 2.0 / float64(gridPerFace)

	addFace := func(corner, du, dv math3d.Vec3) {
		for i := 0; i < gridPerFace; i++ {
			for j := 0; j < gridPerFace; j++ {
				v0 := corner.Add(du.Scale(float64(i) * step)).Add(dv.Scale(float64(j) * step))
				v1 := v0.Add(du.Scale(step))
				v2 := v0.Add(du.Scale(step)).Add(dv.Scale(step))
				v3 := v0.Add(dv.Scale(step))
				n := du.Cross(dv).Normalize()
				prims = append(prims,
					&scene.Primitive{Kind: scene.KindTriangle, Triangle: scene.NewTriangleData(v0, v1, v2, n, n, n)},
					&scene.Primitive{Kind: scene.KindTriangle, Triangle: scene.NewTriangleData(v0, v2, v3, n, n, n)},
				)
			}
		}
	}

	addFace(math3d.V3(-1, -1, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0))  // +z
	addFace(math3d.V3(1, -1, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)) // -z
	addFace(math3d.V3(-1, -1, -1), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)) // -x
	addFace(math3d.V3(1, -1, 1), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0))  // +x
	addFace(math3d.V3(-1, 1, 1), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1))  // +y
	addFace(math3d.V3(-1, -1, -1), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)) // -y

	return prims
}

func hierarchyDepth(n *scene.HierarchyNode) int {
	if len(n.Children) == 0 {
		return 1
	}
	max := 0
	for i := range n.Children {
		if d := hierarchyDepth(&n.Children[i]); d > max {
			max = d
		}
	}
	return max + 1
}

// countVisited walks the hierarchy exactly as FindClosestObject does,
// counting primitives directly tested against r, to measure how much of the
// tree a single ray's traversal prunes.
func countVisited(n *scene.HierarchyNode, r scene.Ray) int {
	if !n.Check(r) {
		return 0
	}
	count := len(n.Primitives)
	for i := range n.Children {
		count += countVisited(&n.Children[i], r)
	}
	return count
}

// TestSceneCornellBoxClusteredMatchesBruteForce builds a small Cornell-box
// scene and checks that rendering the center-floor pixel through the
// clustered hierarchy agrees with rendering the identical geometry with
// clustering disabled (a flat, brute-force scan): since traversal only prunes
// candidates and never changes which primitive is nearest, the two must
// trace the same path for the same rng seed.
func TestSceneCornellBoxClusteredMatchesBruteForce(t *testing.T) {
	if testing.Short() {
		t.Skip("cornell-box render, skipped under -short")
	}

	clustered := buildCornellBox(8)
	bruteForce := buildCornellBox(0)

	camera := render.NewCamera(math3d.V3(0, 0, -4.5), math3d.V3(0, 0, 1), math3d.Up(), math.Pi/3, math.Pi/3, 64, 64)
	tracer := DefaultTracer(4)

	const samples = 64
	x, y := 32, 56 // roughly the center-floor pixel
	pixelIndex := y*64 + x

	sumA, sumB := color.Black, color.Black
	for i := 0; i < samples; i++ {
		rayJitter := rng.ForPixel(99, pixelIndex*samples+i)
		ray := camera.PrimaryRay(x, y, rayJitter)

		rA := rng.ForPixel(1, pixelIndex*samples+i)
		rB := rng.ForPixel(1, pixelIndex*samples+i)
		sumA = sumA.Add(tracer.Trace(clustered, ray, rA))
		sumB = sumB.Add(tracer.Trace(bruteForce, ray, rB))
	}
	colorA := sumA.Div(samples)
	colorB := sumB.Div(samples)

	if colorDistance(colorA, colorB) > 0.02*math.Max(1, colorB.Luminance()) {
		t.Fatalf("clustered render %v diverged from brute-force render %v by more than 2%%", colorA, colorB)
	}
	if math.IsNaN(colorA.Luminance()) || math.IsInf(colorA.Luminance(), 0) {
		t.Fatalf("center-floor pixel diverged to %v", colorA)
	}
}

// buildCornellBox returns a minimal Cornell-box-like scene: a floor,
// ceiling, back wall, red left wall, green right wall, and a small emissive
// ceiling light, all diffuse quads. polygonsPerBounding of 0 disables
// clustering (brute-force linear traversal); any positive value clusters.
func buildCornellBox(polygonsPerBounding int) *scene.Scene {
	s := scene.NewScene()
	s.PolygonsPerBounding = polygonsPerBounding

	white := s.AddMaterial(scene.Diffuse(color.RGB(0.73, 0.73, 0.73)))
	red := s.AddMaterial(scene.Diffuse(color.RGB(0.65, 0.05, 0.05)))
	green := s.AddMaterial(scene.Diffuse(color.RGB(0.12, 0.45, 0.15)))
	light := s.AddMaterial(scene.Light(color.White, 8))

	addQuad := func(mat int, v0, v1, v2, v3 math3d.Vec3) {
		n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		s.AddPrimitive(&scene.Primitive{
			Kind: scene.KindQuad, MaterialIndex: mat, TextureInfoIndex: scene.NoTexture,
			Quad: scene.NewQuadData(v0, v1, v2, v3, n, n, n, n),
		})
	}

	// Floor, ceiling, back wall.
	addQuad(white, math3d.V3(-2, -2, -2), math3d.V3(2, -2, -2), math3d.V3(2, -2, 2), math3d.V3(-2, -2, 2))
	addQuad(white, math3d.V3(-2, 2, 2), math3d.V3(2, 2, 2), math3d.V3(2, 2, -2), math3d.V3(-2, 2, -2))
	addQuad(white, math3d.V3(-2, -2, 2), math3d.V3(2, -2, 2), math3d.V3(2, 2, 2), math3d.V3(-2, 2, 2))
	// Left wall (red), right wall (green).
	addQuad(red, math3d.V3(-2, -2, 2), math3d.V3(-2, -2, -2), math3d.V3(-2, 2, -2), math3d.V3(-2, 2, 2))
	addQuad(green, math3d.V3(2, -2, -2), math3d.V3(2, -2, 2), math3d.V3(2, 2, 2), math3d.V3(2, 2, -2))
	// Small ceiling light.
	addQuad(light, math3d.V3(-0.5, 1.99, 0.5), math3d.V3(0.5, 1.99, 0.5), math3d.V3(0.5, 1.99, -0.5), math3d.V3(-0.5, 1.99, -0.5))

	s.Build()
	return s
}
