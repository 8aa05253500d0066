// Package sceneio implements the scene description's external collaborators:
// the text-format scene parser and the mesh loaders (.obj, .gltf/.glb) that
// back the load_obj directive. These are declared out of the core's scope by
// spec.md §1 ("only their interfaces matter to the core") but still need a
// concrete implementation for load_obj to be end-to-end testable.
package sceneio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/scene"
)

// MeshTriangle is one loaded triangle, still in mesh-local (pre shift/scale)
// coordinates, carrying per-vertex normals and UVs when the source format
// provides them; HasUV reports whether all three vertices carried UVs.
type MeshTriangle struct {
	V0, V1, V2    math3d.Vec3
	N0, N1, N2    math3d.Vec3
	HasUV         bool
	UV0, UV1, UV2 math3d.Vec2
}

// MeshError reports a malformed mesh file with the offending line, matching
// the parse-error taxonomy spec.md §7 requires for every asset reader: a
// human-readable message naming the offending token/line, never a silent
// default fill-in.
type MeshError struct {
	Path string
	Line int
	Msg  string
}

func (e *MeshError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// LoadOBJ parses a Wavefront .obj file's v/vt/vn/f directives into
// MeshTriangle values. Only triangle and convex-polygon faces are supported
// (polygons are fan-triangulated around the first vertex); any other
// directive is ignored, matching the original obj_parser.hpp's directive
// set. Faces that reference an out-of-range index are reported as a
// MeshError rather than silently skipped or clamped.
func LoadOBJ(path string) ([]MeshTriangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	var positions []math3d.Vec3
	var normals []math3d.Vec3
	var uvs []math3d.Vec2
	var tris []MeshTriangle

	type idx struct{ v, vt, vn int } // 1-based; 0 means absent

	resolve := func(tok string) (idx, error) {
		parts := strings.Split(tok, "/")
		var out idx
		var err error
		if out.v, err = strconv.Atoi(parts[0]); err != nil {
			return idx{}, fmt.Errorf("bad vertex index %q", tok)
		}
		if len(parts) > 1 && parts[1] != "" {
			if out.vt, err = strconv.Atoi(parts[1]); err != nil {
				return idx{}, fmt.Errorf("bad uv index %q", tok)
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if out.vn, err = strconv.Atoi(parts[2]); err != nil {
				return idx{}, fmt.Errorf("bad normal index %q", tok)
			}
		}
		return out, nil
	}

	vertexOf := func(i idx) (pos, norm math3d.Vec3, uv math3d.Vec2, hasUV bool, err error) {
		if i.v < 1 || i.v > len(positions) {
			return pos, norm, uv, false, fmt.Errorf("vertex index %d out of range (have %d)", i.v, len(positions))
		}
		pos = positions[i.v-1]
		if i.vn != 0 {
			if i.vn < 1 || i.vn > len(normals) {
				return pos, norm, uv, false, fmt.Errorf("normal index %d out of range (have %d)", i.vn, len(normals))
			}
			norm = normals[i.vn-1]
		}
		if i.vt != 0 {
			if i.vt < 1 || i.vt > len(uvs) {
				return pos, norm, uv, false, fmt.Errorf("uv index %d out of range (have %d)", i.vt, len(uvs))
			}
			uv = uvs[i.vt-1]
			hasUV = true
		}
		return pos, norm, uv, hasUV, nil
	}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, &MeshError{Path: path, Line: lineNo, Msg: err.Error()}
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, &MeshError{Path: path, Line: lineNo, Msg: err.Error()}
			}
			normals = append(normals, v.Normalize())
		case "vt":
			if len(fields) < 3 {
				return nil, &MeshError{Path: path, Line: lineNo, Msg: "vt needs 2 components"}
			}
			u, err1 := strconv.ParseFloat(fields[1], 64)
			v, err2 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil {
				return nil, &MeshError{Path: path, Line: lineNo, Msg: "malformed vt"}
			}
			uvs = append(uvs, math3d.V2(u, 1-v)) // OBJ's V=0 is the bottom row
		case "f":
			if len(fields) < 4 {
				return nil, &MeshError{Path: path, Line: lineNo, Msg: "face needs at least 3 vertices"}
			}
			verts := fields[1:]
			resolved := make([]idx, len(verts))
			for i, tok := range verts {
				ri, err := resolve(tok)
				if err != nil {
					return nil, &MeshError{Path: path, Line: lineNo, Msg: err.Error()}
				}
				resolved[i] = ri
			}
			// Fan-triangulate polygon faces around vertex 0.
			for i := 1; i+1 < len(resolved); i++ {
				p0, n0, uv0, hasUV0, err := vertexOf(resolved[0])
				if err != nil {
					return nil, &MeshError{Path: path, Line: lineNo, Msg: err.Error()}
				}
				p1, n1, uv1, hasUV1, err := vertexOf(resolved[i])
				if err != nil {
					return nil, &MeshError{Path: path, Line: lineNo, Msg: err.Error()}
				}
				p2, n2, uv2, hasUV2, err := vertexOf(resolved[i+1])
				if err != nil {
					return nil, &MeshError{Path: path, Line: lineNo, Msg: err.Error()}
				}
				if n0 == (math3d.Vec3{}) || n1 == (math3d.Vec3{}) || n2 == (math3d.Vec3{}) {
					flat := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
					n0, n1, n2 = flat, flat, flat
				}
				tris = append(tris, MeshTriangle{
					V0: p0, V1: p1, V2: p2,
					N0: n0, N1: n1, N2: n2,
					HasUV: hasUV0 && hasUV1 && hasUV2,
					UV0:   uv0, UV1: uv1, UV2: uv2,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj %q: %w", path, err)
	}
	return tris, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("need 3 components, got %d", len(fields))
	}
	x, err1 := strconv.ParseFloat(fields[0], 64)
	y, err2 := strconv.ParseFloat(fields[1], 64)
	z, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return math3d.Vec3{}, fmt.Errorf("malformed vector %v", fields)
	}
	return math3d.V3(x, y, z), nil
}

// BuildMeshPrimitives turns loaded triangles into scene.Primitive values,
// applying the load_obj directive's shift/scale transform (spec.md §6) and
// binding every triangle to materialIndex and, when textureIndex is not
// scene.NoTexture and the triangle carries UVs, a freshly appended
// TextureInfo with that triangle's own per-vertex UV trio and tangent basis.
func BuildMeshPrimitives(s *scene.Scene, tris []MeshTriangle, materialIndex, textureIndex int, shift math3d.Vec3, factor float64) []*scene.Primitive {
	prims := make([]*scene.Primitive, 0, len(tris))
	for _, t := range tris {
		v0 := t.V0.Scale(factor).Add(shift)
		v1 := t.V1.Scale(factor).Add(shift)
		v2 := t.V2.Scale(factor).Add(shift)

		p := &scene.Primitive{
			Kind:             scene.KindTriangle,
			MaterialIndex:    materialIndex,
			TextureInfoIndex: scene.NoTexture,
			Triangle:         scene.NewTriangleData(v0, v1, v2, t.N0, t.N1, t.N2),
		}

		if textureIndex != scene.NoTexture && t.HasUV {
			edge1, edge2 := v1.Sub(v0), v2.Sub(v0)
			du1, dv1 := t.UV1.X-t.UV0.X, t.UV1.Y-t.UV0.Y
			du2, dv2 := t.UV2.X-t.UV0.X, t.UV2.Y-t.UV0.Y
			tangent, bitangent := scene.ComputeTangentBasis(edge1, edge2, du1, dv1, du2, dv2)
			ti := scene.TextureInfo{
				TextureIndex:   textureIndex,
				NormalMapIndex: scene.NoTexture,
				UV:             []math3d.Vec2{t.UV0, t.UV1, t.UV2},
				Tangent:        tangent,
				Bitangent:      bitangent,
			}
			p.TextureInfoIndex = s.AddTextureInfo(ti)
		}

		prims = append(prims, p)
	}
	return prims
}
