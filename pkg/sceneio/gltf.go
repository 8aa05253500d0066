package sceneio

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/lumen/pkg/math3d"
)

// LoadGLTF parses a .gltf/.glb document's triangle-mode mesh primitives into
// MeshTriangle values, the gltf counterpart to LoadOBJ feeding the same
// load_obj directive (the mesh file's extension picks which of
// LoadOBJ/LoadGLTF runs). Adapted from the teacher's GLTFLoader.Load/processMesh: the
// accessor-decoding plumbing (readVec3Accessor/readIndices/
// readAccessorData) is kept essentially verbatim, since it is pure
// binary-format parsing with nothing ray-tracer-specific to adapt; the
// mesh-assembly half is rewritten to emit MeshTriangle trios directly
// instead of populating a rasterizer-facing Mesh/Face pair, and the
// teacher's CCW-to-CW winding reversal (needed only because its rasterizer
// used a left-handed screen-space convention) is dropped, since ray/triangle
// intersection here is winding-independent (triangle.go's barycentric test
// has no notion of front/back face).
func LoadGLTF(path string) ([]MeshTriangle, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %q: %w", path, err)
	}

	var tris []MeshTriangle
	for _, m := range doc.Meshes {
		meshTris, err := trianglesFromMesh(doc, m)
		if err != nil {
			return nil, fmt.Errorf("gltf %q: mesh %q: %w", path, m.Name, err)
		}
		tris = append(tris, meshTris...)
	}
	return tris, nil
}

func trianglesFromMesh(doc *gltf.Document, m *gltf.Mesh) ([]MeshTriangle, error) {
	var tris []MeshTriangle
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue // lines/points have no surface for the path tracer
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return nil, fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(doc, normIdx); err != nil {
				return nil, fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(doc, uvIdx); err != nil {
				return nil, fmt.Errorf("read uvs: %w", err)
			}
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return nil, fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		hasUV := len(uvs) == len(positions)
		hasNormals := len(normals) == len(positions)

		for i := 0; i+2 < len(indices); i += 3 {
			i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
			p0, p1, p2 := positions[i0], positions[i1], positions[i2]

			var n0, n1, n2 math3d.Vec3
			if hasNormals {
				n0, n1, n2 = normals[i0], normals[i1], normals[i2]
			} else {
				flat := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
				n0, n1, n2 = flat, flat, flat
			}

			t := MeshTriangle{V0: p0, V1: p1, V2: p2, N0: n0, N1: n1, N2: n2}
			if hasUV {
				// gltf's V=0 is the top row; flip to match the sphere/obj
				// (u,v) convention the rest of the texturing code uses.
				t.HasUV = true
				t.UV0 = math3d.V2(uvs[i0].X, 1-uvs[i0].Y)
				t.UV1 = math3d.V2(uvs[i1].X, 1-uvs[i1].Y)
				t.UV2 = math3d.V2(uvs[i2].X, 1-uvs[i2].Y)
			}
			tris = append(tris, t)
		}
	}
	return tris, nil
}

func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([][3]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC3")
	}
	result := make([]math3d.Vec3, len(floats))
	for i, f := range floats {
		result[i] = math3d.V3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return result, nil
}

func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec2 {
		return nil, fmt.Errorf("expected VEC2, got %v", accessor.Type)
	}
	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	floats, ok := data.([][2]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected data type for VEC2")
	}
	result := make([]math3d.Vec2, len(floats))
	for i, f := range floats {
		result[i] = math3d.V2(float64(f[0]), float64(f[1]))
	}
	return result, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	data, err := readAccessorData(doc, accessor)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []uint8:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	case []uint16:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	case []uint32:
		result := make([]int, len(v))
		for i, x := range v {
			result[i] = int(x)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("unexpected index type: %T", data)
	}
}

// readAccessorData reads raw data from a GLTF accessor, handling the
// interleaved-buffer-view stride case. External (non-embedded) buffers are
// rejected: load_obj only ever hands this loader a single self
// contained .glb/.gltf-with-embedded-buffers path, per spec.md §6.
func readAccessorData(doc *gltf.Document, accessor *gltf.Accessor) (any, error) {
	if accessor.BufferView == nil {
		return nil, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.URI != "" {
		return nil, fmt.Errorf("external buffers not supported")
	}
	bufData := buffer.Data
	if bufData == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	count := accessor.Count

	switch accessor.Type {
	case gltf.AccessorVec3:
		if stride == 0 {
			stride = 12
		}
		result := make([][3]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 3 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorVec2:
		if stride == 0 {
			stride = 8
		}
		result := make([][2]float32, count)
		for i := range count {
			offset := start + i*stride
			for j := range 2 {
				result[i][j] = readFloat32(bufData[offset+j*4:])
			}
		}
		return result, nil

	case gltf.AccessorScalar:
		if stride == 0 {
			switch accessor.ComponentType {
			case gltf.ComponentUbyte:
				stride = 1
			case gltf.ComponentUshort:
				stride = 2
			case gltf.ComponentUint:
				stride = 4
			}
		}
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			result := make([]uint8, count)
			for i := range count {
				result[i] = bufData[start+i*stride]
			}
			return result, nil
		case gltf.ComponentUshort:
			result := make([]uint16, count)
			for i := range count {
				offset := start + i*stride
				result[i] = uint16(bufData[offset]) | uint16(bufData[offset+1])<<8
			}
			return result, nil
		case gltf.ComponentUint:
			result := make([]uint32, count)
			for i := range count {
				offset := start + i*stride
				result[i] = uint32(bufData[offset]) |
					uint32(bufData[offset+1])<<8 |
					uint32(bufData[offset+2])<<16 |
					uint32(bufData[offset+3])<<24
			}
			return result, nil
		}
	}
	return nil, fmt.Errorf("unsupported accessor type: %v / %v", accessor.Type, accessor.ComponentType)
}

func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
