package scene

import (
	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/math3d"
)

// SampleTexture returns the textured surface color at a hit, if the
// primitive carries a texture, else (Color{}, false). Triangles and quads
// interpolate the TextureInfo's per-vertex UVs using the same barycentric
// weights the intersection already derived; spheres use a projective
// equirectangular (u,v) computed directly from the hit point.
func (s *Scene) SampleTexture(p *Primitive, hit Hit) (color.Color, bool) {
	if p.TextureInfoIndex == NoTexture {
		return color.Color{}, false
	}
	ti := s.TextureInfos[p.TextureInfoIndex]
	if ti.TextureIndex == NoTexture {
		return color.Color{}, false
	}
	u, v, ok := p.uvAt(hit.Point, ti)
	if !ok {
		return color.Color{}, false
	}
	return s.Textures[ti.TextureIndex].Get(u, v), true
}

// SampleNormalMap returns the world-space perturbed normal at a hit, if the
// primitive's TextureInfo names a normal map, else (zero, false).
func (s *Scene) SampleNormalMap(p *Primitive, hit Hit) (math3d.Vec3, bool) {
	if p.TextureInfoIndex == NoTexture {
		return math3d.Vec3{}, false
	}
	ti := s.TextureInfos[p.TextureInfoIndex]
	if ti.NormalMapIndex == NoTexture {
		return math3d.Vec3{}, false
	}
	u, v, ok := p.uvAt(hit.Point, ti)
	if !ok {
		return math3d.Vec3{}, false
	}
	sample := s.NormalMaps[ti.NormalMapIndex].Get(u, v)
	return ti.WorldNormal(hit.Normal, sample), true
}

// uvAt computes the (u,v) texture coordinate at point on primitive p, using
// ti's per-vertex UVs for polygon types or a direct projection for curved
// ones. Untextured primitive kinds (plane, box, cylinder) return ok=false.
func (p *Primitive) uvAt(point math3d.Vec3, ti TextureInfo) (u, v float64, ok bool) {
	switch p.Kind {
	case KindSphere:
		local := point.Sub(p.Sphere.Center).Normalize()
		u, v = sphereUV(local)
		return u, v, true
	case KindTriangle:
		if len(ti.UV) < 3 {
			return 0, 0, false
		}
		l1, l2 := barycentricOf(p.Triangle.V0, p.Triangle.V1, p.Triangle.V2, point)
		l0 := 1 - l1 - l2
		uv := ti.UV[0].Scale(l0).Add(ti.UV[1].Scale(l1)).Add(ti.UV[2].Scale(l2))
		return uv.X, uv.Y, true
	case KindQuad:
		if len(ti.UV) < 4 {
			return 0, 0, false
		}
		q := &p.Quad
		if triangleContains(q.V0, q.V1, q.V2, point) {
			l1, l2 := barycentricOf(q.V0, q.V1, q.V2, point)
			l0 := 1 - l1 - l2
			uv := ti.UV[0].Scale(l0).Add(ti.UV[1].Scale(l1)).Add(ti.UV[2].Scale(l2))
			return uv.X, uv.Y, true
		}
		l1, l2 := barycentricOf(q.V0, q.V2, q.V3, point)
		l0 := 1 - l1 - l2
		uv := ti.UV[0].Scale(l0).Add(ti.UV[2].Scale(l1)).Add(ti.UV[3].Scale(l2))
		return uv.X, uv.Y, true
	}
	return 0, 0, false
}
