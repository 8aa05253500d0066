package scene

import "github.com/taigrr/lumen/pkg/math3d"

// Scene owns every arena the path tracer reads from by index: primitives,
// materials, textures, normal maps, and texture-info records, plus the
// clustering forest built over the primitive arena and the background seen
// by escaping rays. Mirrors the minimal `scene` class in the original's
// scene.hpp, widened to actually own the data the camera/scene.hpp version
// left to global state.
type Scene struct {
	Primitives   []*Primitive
	Materials    []Material
	Textures     []*Texture
	NormalMaps   []*NormalMap
	TextureInfos []TextureInfo

	// Roots is the forest of hierarchy trees traversal walks: one per
	// load_obj batch (built immediately, at load time, over just
	// that batch's primitives) plus one covering every primitive declared
	// loose in the scene file (built by Build, once parsing finishes).
	Roots []HierarchyNode

	Background Background

	// PolygonsPerBounding controls the hierarchy fan-out passed to
	// BuildHierarchy; 0 disables clustering (a flat Container, linear scan).
	PolygonsPerBounding int

	// Seed is a base RNG seed carried with the scene. The renderer does not
	// read it: per-pixel generators derive from pathtrace.RenderOptions.Seed
	// via rng.ForPixel.
	Seed uint64

	// pending holds indices of primitives added via AddPrimitive that have
	// not yet been folded into a hierarchy root; Build clusters exactly
	// these and clears the list, so calling Build more than once (e.g. after
	// further AddPrimitive calls) grows the forest rather than losing
	// earlier primitives.
	pending []int
}

// NewScene returns an empty Scene ready to have primitives/materials
// appended before Build is called.
func NewScene() *Scene {
	return &Scene{PolygonsPerBounding: 5}
}

// Build constructs a clustering hierarchy over every primitive added since
// the last Build call (via AddPrimitive) and appends it as a new root to the
// forest. Must be called once after all loose primitives have been appended
// and before the first FindClosestObject/Trace call; primitives added
// through AddMeshPrimitives are already covered by their own root and do not
// need a further Build call.
func (s *Scene) Build() {
	if len(s.pending) == 0 {
		return
	}
	root := BuildHierarchy(s.Primitives, s.pending, s.PolygonsPerBounding)
	s.Roots = append(s.Roots, root)
	s.pending = nil
}

// AddMeshPrimitives appends a batch of primitives (typically triangles from
// a load_obj directive) to the arena and immediately builds a
// dedicated hierarchy root over just that batch using the scene's current
// PolygonsPerBounding, per spec §6's "constructs a bounding hierarchy for
// the loaded set" — mirroring the original's eager per-mesh sub-hierarchy
// instead of waiting for a final whole-scene Build.
func (s *Scene) AddMeshPrimitives(prims []*Primitive) {
	indices := make([]int, len(prims))
	for i, p := range prims {
		indices[i] = s.AddPrimitiveLoose(p)
	}
	root := BuildHierarchy(s.Primitives, indices, s.PolygonsPerBounding)
	s.Roots = append(s.Roots, root)
}

// FindClosestObject is the scene-scoped entry point path tracing calls for
// every primary and secondary ray.
func (s *Scene) FindClosestObject(r Ray) (Hit, bool) {
	return FindClosestObject(s.Primitives, s.Roots, r)
}

// MaterialFor returns the material bound to a primitive.
func (s *Scene) MaterialFor(p *Primitive) Material {
	return s.Materials[p.MaterialIndex]
}

// TextureInfoFor returns the texture-info record bound to a primitive, if
// any (p.TextureInfoIndex == NoTexture otherwise).
func (s *Scene) TextureInfoFor(p *Primitive) (TextureInfo, bool) {
	if p.TextureInfoIndex == NoTexture {
		return TextureInfo{}, false
	}
	return s.TextureInfos[p.TextureInfoIndex], true
}

// AddPrimitive appends a primitive declared loose in the scene file (not
// part of a load_obj batch) to the arena, queuing it for the next
// Build call, and returns its index.
func (s *Scene) AddPrimitive(p *Primitive) int {
	idx := s.AddPrimitiveLoose(p)
	s.pending = append(s.pending, idx)
	return idx
}

// AddPrimitiveLoose appends a primitive to the arena without queuing it for
// Build, used by AddMeshPrimitives, which builds its own root immediately.
func (s *Scene) AddPrimitiveLoose(p *Primitive) int {
	s.Primitives = append(s.Primitives, p)
	return len(s.Primitives) - 1
}

// AddMaterial appends a material to the arena and returns its index.
func (s *Scene) AddMaterial(m Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// AddTexture appends a texture to the arena and returns its index.
func (s *Scene) AddTexture(t *Texture) int {
	s.Textures = append(s.Textures, t)
	return len(s.Textures) - 1
}

// AddNormalMap appends a normal map to the arena and returns its index.
func (s *Scene) AddNormalMap(n *NormalMap) int {
	s.NormalMaps = append(s.NormalMaps, n)
	return len(s.NormalMaps) - 1
}

// AddTextureInfo appends a texture-info record and returns its index.
func (s *Scene) AddTextureInfo(ti TextureInfo) int {
	s.TextureInfos = append(s.TextureInfos, ti)
	return len(s.TextureInfos) - 1
}

// Bounds returns the world-space bounds of every primitive in the scene.
func (s *Scene) Bounds() (min, max math3d.Vec3) {
	if len(s.Primitives) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}
	min, max = s.Primitives[0].AxisAlignedBounds()
	for _, p := range s.Primitives[1:] {
		pmin, pmax := p.AxisAlignedBounds()
		min = min.Min(pmin)
		max = max.Max(pmax)
	}
	return min, max
}
