package sceneio

import (
	"bufio"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/render"
	"github.com/taigrr/lumen/pkg/scene"
)

func init() {
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
}

// ParseError reports a malformed scene-file line: the offending file, line
// number, and a human-readable message. Matches spec.md §7's parse-error
// taxonomy exactly — surfaced with the offending token/line, never absorbed
// into a default.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// ParsedScene bundles the two top-level objects a scene file produces: the
// Scene (primitives/materials/textures/hierarchy/background) and the
// Camera, kept separate because pkg/render.Camera depends on pkg/scene, not
// the reverse, so Scene itself has no Camera field.
type ParsedScene struct {
	Scene  *scene.Scene
	Camera *render.Camera
}

// ParseFile reads and parses a scene description file, per spec.md §6's
// line-oriented grammar. Missing cross-references (a material/texture/
// normal-map name used before its load_texture/load_normal_map/material
// directive) are reported as ParseErrors, not filled with defaults, per
// spec.md §7.
func ParseFile(path string) (*ParsedScene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene %q: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse runs the grammar over r, resolving relative load_obj/load_texture/
// load_normal_map/background_texture paths against basePath's directory.
func Parse(r io.Reader, basePath string) (*ParsedScene, error) {
	p := &parser{
		path:       basePath,
		dir:        filepath.Dir(basePath),
		scene:      scene.NewScene(),
		materials:  map[string]int{},
		textures:   map[string]int{},
		normalMaps: map[string]int{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scene %q: %w", basePath, err)
	}

	if p.camera == nil {
		return nil, p.errorf("scene file has no camera directive")
	}
	p.scene.Build()
	return &ParsedScene{Scene: p.scene, Camera: p.camera}, nil
}

type parser struct {
	path string
	dir  string
	line int

	scene  *scene.Scene
	camera *render.Camera

	width, height int

	materials  map[string]int
	textures   map[string]int
	normalMaps map[string]int
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Path: p.path, Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseLine(raw string) error {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	tokens := tokenizeLine(line)
	if len(tokens) == 0 {
		return nil
	}
	directive, rest := tokens[0], tokens[1:]

	switch directive {
	case "resolution":
		return p.parseResolution(rest)
	case "camera":
		return p.parseCamera(rest)
	case "background_color":
		return p.parseBackgroundColor(rest)
	case "background_texture":
		return p.parseBackgroundTexture(rest)
	case "polygons_per_bounding":
		return p.parsePolygonsPerBounding(rest)
	case "material":
		return p.parseMaterial(rest)
	case "load_texture":
		return p.parseLoadTexture(rest)
	case "load_normal_map":
		return p.parseLoadNormalMap(rest)
	case "sphere":
		return p.parseSphere(rest)
	case "plane":
		return p.parsePlane(rest)
	case "box":
		return p.parseBox(rest)
	case "cylinder":
		return p.parseCylinder(rest)
	case "triangle":
		return p.parseTriangle(rest)
	case "quad":
		return p.parseQuad(rest)
	case "load_obj":
		return p.parseLoadMesh(rest)
	default:
		return p.errorf("unknown directive %q", directive)
	}
}

// tokenizeLine splits a directive line on whitespace, except that
// parenthesized groups (which may themselves nest, e.g. a material literal
// embedding a color vector) are never split, letting the material
// directive's `(key:value key:value ...)` form and a plain `key:(x,y,z)`
// vector share one splitting rule.
func tokenizeLine(line string) []string {
	var tokens []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '(':
			depth++
			cur.WriteRune(r)
		case r == ')':
			depth--
			cur.WriteRune(r)
		case r == ' ' || r == '\t':
			if depth > 0 {
				cur.WriteRune(r)
			} else {
				flush()
			}
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// kv splits directive args into a key->value map by the first colon in each
// token; a token with no colon is stored under its own text as both key and
// value, supporting positional-looking directives that mix the two (none of
// spec.md's do today, but keeps the helper total).
func kv(tokens []string) map[string]string {
	m := make(map[string]string, len(tokens))
	for _, t := range tokens {
		if i := strings.IndexByte(t, ':'); i >= 0 {
			m[t[:i]] = t[i+1:]
		} else {
			m[t] = t
		}
	}
	return m
}

func parseVec3Str(s string) (math3d.Vec3, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return math3d.Vec3{}, fmt.Errorf("expected (x,y,z), got %q", s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 3 {
		return math3d.Vec3{}, fmt.Errorf("expected 3 components in %q", s)
	}
	var out [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return math3d.Vec3{}, fmt.Errorf("malformed number %q in %q", part, s)
		}
		out[i] = v
	}
	return math3d.V3(out[0], out[1], out[2]), nil
}

func parseVec2Str(s string) (math3d.Vec2, error) {
	v, err := parseVec3Str(strings.Replace(s, ")", ",0)", 1))
	if err != nil {
		return math3d.Vec2{}, err
	}
	return math3d.V2(v.X, v.Y), nil
}

func parseFloatStr(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseIntStr(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseBoolStr(s string) (bool, error) {
	return strconv.ParseBool(strings.TrimSpace(s))
}

func (p *parser) vec3(m map[string]string, key string) (math3d.Vec3, error) {
	s, ok := m[key]
	if !ok {
		return math3d.Vec3{}, p.errorf("missing %s:(x,y,z)", key)
	}
	v, err := parseVec3Str(s)
	if err != nil {
		return math3d.Vec3{}, p.errorf("%s: %v", key, err)
	}
	return v, nil
}

func (p *parser) float(m map[string]string, key string, def float64) (float64, error) {
	s, ok := m[key]
	if !ok {
		return def, nil
	}
	v, err := parseFloatStr(s)
	if err != nil {
		return 0, p.errorf("%s: %v", key, err)
	}
	return v, nil
}

func (p *parser) requiredFloat(m map[string]string, key string) (float64, error) {
	s, ok := m[key]
	if !ok {
		return 0, p.errorf("missing %s:<float>", key)
	}
	v, err := parseFloatStr(s)
	if err != nil {
		return 0, p.errorf("%s: %v", key, err)
	}
	return v, nil
}

func (p *parser) parseResolution(tokens []string) error {
	m := kv(tokens)
	w, err := parseIntStr(m["width"])
	if err != nil {
		return p.errorf("resolution width: %v", err)
	}
	h, err := parseIntStr(m["height"])
	if err != nil {
		return p.errorf("resolution height: %v", err)
	}
	p.width, p.height = w, h
	return nil
}

func (p *parser) parseCamera(tokens []string) error {
	if p.width == 0 || p.height == 0 {
		return p.errorf("camera directive requires a prior resolution directive")
	}
	m := kv(tokens)
	pos, err := p.vec3(m, "position")
	if err != nil {
		return err
	}
	dir, err := p.vec3(m, "direction")
	if err != nil {
		return err
	}
	up, err := p.vec3(m, "rightdir")
	if err != nil {
		return err
	}
	fovW, err := p.requiredFloat(m, "fov_width")
	if err != nil {
		return err
	}
	distance, err := p.float(m, "distance", 1)
	if err != nil {
		return err
	}

	aspect := float64(p.height) / float64(p.width)
	halfW := math.Tan(fovW / 2)
	fovH := 2 * math.Atan(halfW * aspect)

	cam := render.NewCamera(pos, dir, up, fovW, fovH, p.width, p.height)
	cam.Distance = distance

	if focal, ok := m["focal_distance"]; ok {
		v, err := parseFloatStr(focal)
		if err != nil {
			return p.errorf("focal_distance: %v", err)
		}
		cam.FocalDistance = v
	}
	if aperture, ok := m["aperture"]; ok {
		v, err := parseFloatStr(aperture)
		if err != nil {
			return p.errorf("aperture: %v", err)
		}
		cam.Aperture = v
	}
	p.camera = cam
	return nil
}

func (p *parser) parseBackgroundColor(tokens []string) error {
	if len(tokens) != 3 {
		return p.errorf("background_color needs 3 components, got %d", len(tokens))
	}
	var comps [3]float64
	for i, t := range tokens {
		v, err := parseFloatStr(t)
		if err != nil {
			return p.errorf("background_color: %v", err)
		}
		comps[i] = v
	}
	p.scene.Background.Color = color.RGB(comps[0], comps[1], comps[2])
	return nil
}

func (p *parser) parseBackgroundTexture(tokens []string) error {
	if len(tokens) == 0 {
		return p.errorf("background_texture needs a file path")
	}
	file := tokens[0]
	m := kv(tokens[1:])
	tex, err := p.loadTexture(file)
	if err != nil {
		return p.errorf("background_texture: %v", err)
	}
	p.scene.Background.Texture = tex
	if v, err := p.float(m, "rotate_x", 0); err != nil {
		return err
	} else {
		p.scene.Background.RotateX = v
	}
	if v, err := p.float(m, "rotate_y", 0); err != nil {
		return err
	} else {
		p.scene.Background.RotateY = v
	}
	if v, err := p.float(m, "rotate_z", 0); err != nil {
		return err
	} else {
		p.scene.Background.RotateZ = v
	}
	// gamma:<f> is the post-process display-gamma hint the out-of-core
	// viewer applies (spec.md §1); the core has nothing to do with it.
	return nil
}

func (p *parser) parsePolygonsPerBounding(tokens []string) error {
	if len(tokens) != 1 {
		return p.errorf("polygons_per_bounding needs exactly 1 integer")
	}
	n, err := parseIntStr(tokens[0])
	if err != nil {
		return p.errorf("polygons_per_bounding: %v", err)
	}
	p.scene.PolygonsPerBounding = n
	return nil
}

// parseMaterial implements `material <name> (key:value ...)`.
func (p *parser) parseMaterial(tokens []string) error {
	if len(tokens) < 2 {
		return p.errorf("material needs a name and a (...) field list")
	}
	name := tokens[0]
	body := strings.Join(tokens[1:], " ")
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return p.errorf("material %s: fields must be wrapped in (...)", name)
	}
	fields := tokenizeLine(body[1 : len(body)-1])
	mat, err := p.materialFromFields(fields)
	if err != nil {
		return p.errorf("material %s: %v", name, err)
	}
	p.materials[name] = p.scene.AddMaterial(mat)
	return nil
}

func (p *parser) materialFromFields(fields []string) (scene.Material, error) {
	m := kv(fields)
	mat := scene.Material{RefractionIndex: 1}

	if v, ok := m["color"]; ok {
		c, err := parseVec3Str(v)
		if err != nil {
			return mat, fmt.Errorf("color: %w", err)
		}
		mat.Color = color.RGB(c.X, c.Y, c.Z)
	}
	if v, ok := m["emitted_color"]; ok {
		c, err := parseVec3Str(v)
		if err != nil {
			return mat, fmt.Errorf("emitted_color: %w", err)
		}
		mat.EmittedColor = color.RGB(c.X, c.Y, c.Z)
	}
	var err error
	if mat.Reflectivity, err = floatField(m, "reflectivity", 0); err != nil {
		return mat, err
	}
	if mat.EmissionIntensity, err = floatField(m, "emission", 0); err != nil {
		return mat, err
	}
	if mat.SpecularProbability, err = floatField(m, "specular_p", 0); err != nil {
		return mat, err
	}
	if s, ok := m["reflects_color"]; ok {
		b, err := parseBoolStr(s)
		if err != nil {
			return mat, fmt.Errorf("reflects_color: %w", err)
		}
		mat.ReflectsColor = b
	}
	if mat.Transparency, err = floatField(m, "transparency", 0); err != nil {
		return mat, err
	}
	if mat.RefractionScattering, err = floatField(m, "scattering", 0); err != nil {
		return mat, err
	}
	if mat.RefractionIndex, err = floatField(m, "refraction_index", 1); err != nil {
		return mat, err
	}
	return mat, nil
}

func floatField(m map[string]string, key string, def float64) (float64, error) {
	s, ok := m[key]
	if !ok {
		return def, nil
	}
	v, err := parseFloatStr(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func (p *parser) parseLoadTexture(tokens []string) error {
	if len(tokens) != 2 {
		return p.errorf("load_texture needs a name and a file path")
	}
	name, file := tokens[0], tokens[1]
	tex, err := p.loadTexture(file)
	if err != nil {
		return p.errorf("load_texture %s: %v", name, err)
	}
	p.textures[name] = p.scene.AddTexture(tex)
	return nil
}

func (p *parser) parseLoadNormalMap(tokens []string) error {
	if len(tokens) != 2 {
		return p.errorf("load_normal_map needs a name and a file path")
	}
	name, file := tokens[0], tokens[1]
	nm, err := p.loadNormalMap(file)
	if err != nil {
		return p.errorf("load_normal_map %s: %v", name, err)
	}
	p.normalMaps[name] = p.scene.AddNormalMap(nm)
	return nil
}

func (p *parser) resolvePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(p.dir, file)
}

func (p *parser) loadTexture(file string) (*scene.Texture, error) {
	img, err := decodeImage(p.resolvePath(file))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	tex := scene.NewTexture(bounds.Dx(), bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			tex.Set(x, y, color.RGB(float64(r)/65535, float64(g)/65535, float64(b)/65535))
		}
	}
	return tex, nil
}

func (p *parser) loadNormalMap(file string) (*scene.NormalMap, error) {
	img, err := decodeImage(p.resolvePath(file))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	nm := &scene.NormalMap{Width: bounds.Dx(), Height: bounds.Dy(), Normals: make([]math3d.Vec3, bounds.Dx()*bounds.Dy())}
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			n := math3d.V3(2*float64(r)/65535-1, 2*float64(g)/65535-1, 2*float64(b)/65535-1)
			nm.Normals[y*nm.Width+x] = n.Normalize()
		}
	}
	return nm, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	return img, nil
}

func (p *parser) materialIndex(m map[string]string) (int, error) {
	name, ok := m["material"]
	if !ok {
		return 0, fmt.Errorf("missing material:<name>")
	}
	idx, ok := p.materials[name]
	if !ok {
		return 0, fmt.Errorf("material %q used before its material directive", name)
	}
	return idx, nil
}

// textureRefs returns the texture/normal-map arena indices named by
// texture:<name> and normal_map:<name>, or scene.NoTexture when absent.
func (p *parser) textureRefs(m map[string]string) (texIdx, normIdx int, err error) {
	texIdx, normIdx = scene.NoTexture, scene.NoTexture
	if name, ok := m["texture"]; ok {
		idx, ok := p.textures[name]
		if !ok {
			return 0, 0, fmt.Errorf("texture %q used before its load_texture directive", name)
		}
		texIdx = idx
	}
	if name, ok := m["normal_map"]; ok {
		idx, ok := p.normalMaps[name]
		if !ok {
			return 0, 0, fmt.Errorf("normal_map %q used before its load_normal_map directive", name)
		}
		normIdx = idx
	}
	return texIdx, normIdx, nil
}

func (p *parser) parseSphere(tokens []string) error {
	m := kv(tokens)
	center, err := p.vec3(m, "center")
	if err != nil {
		return err
	}
	radius, err := p.requiredFloat(m, "radius")
	if err != nil {
		return err
	}
	matIdx, err := p.materialIndex(m)
	if err != nil {
		return p.errorf("sphere: %v", err)
	}
	texIdx, normIdx, err := p.textureRefs(m)
	if err != nil {
		return p.errorf("sphere: %v", err)
	}

	prim := &scene.Primitive{
		Kind:             scene.KindSphere,
		MaterialIndex:    matIdx,
		TextureInfoIndex: scene.NoTexture,
		Sphere:           scene.SphereData{Center: center, Radius: radius},
	}
	if texIdx != scene.NoTexture || normIdx != scene.NoTexture {
		prim.TextureInfoIndex = p.scene.AddTextureInfo(scene.TextureInfo{TextureIndex: texIdx, NormalMapIndex: normIdx})
	}
	p.scene.AddPrimitive(prim)
	return nil
}

func (p *parser) parsePlane(tokens []string) error {
	m := kv(tokens)
	point, err := p.vec3(m, "point")
	if err != nil {
		return err
	}
	normal, err := p.vec3(m, "normal")
	if err != nil {
		return err
	}
	matIdx, err := p.materialIndex(m)
	if err != nil {
		return p.errorf("plane: %v", err)
	}
	p.scene.AddPrimitive(&scene.Primitive{
		Kind:             scene.KindPlane,
		MaterialIndex:    matIdx,
		TextureInfoIndex: scene.NoTexture,
		Plane:            scene.PlaneData{Point: point, Normal: normal.Normalize()},
	})
	return nil
}

func (p *parser) parseBox(tokens []string) error {
	m := kv(tokens)
	center, err := p.vec3(m, "center")
	if err != nil {
		return err
	}
	n1, err := p.vec3(m, "n1")
	if err != nil {
		return err
	}
	n2, err := p.vec3(m, "n2")
	if err != nil {
		return err
	}
	n3 := n1.Cross(n2).Normalize()
	l1, err := p.requiredFloat(m, "l1")
	if err != nil {
		return err
	}
	l2, err := p.requiredFloat(m, "l2")
	if err != nil {
		return err
	}
	l3, err := p.requiredFloat(m, "l3")
	if err != nil {
		return err
	}
	matIdx, err := p.materialIndex(m)
	if err != nil {
		return p.errorf("box: %v", err)
	}
	p.scene.AddPrimitive(&scene.Primitive{
		Kind:             scene.KindBox,
		MaterialIndex:    matIdx,
		TextureInfoIndex: scene.NoTexture,
		Box:              scene.BoxData{Center: center, N1: n1.Normalize(), N2: n2.Normalize(), N3: n3, L1: l1, L2: l2, L3: l3},
	})
	return nil
}

func (p *parser) parseCylinder(tokens []string) error {
	m := kv(tokens)
	origin, err := p.vec3(m, "origin")
	if err != nil {
		return err
	}
	direction, err := p.vec3(m, "direction")
	if err != nil {
		return err
	}
	radius, err := p.requiredFloat(m, "radius")
	if err != nil {
		return err
	}
	length, err := p.requiredFloat(m, "length")
	if err != nil {
		return err
	}
	matIdx, err := p.materialIndex(m)
	if err != nil {
		return p.errorf("cylinder: %v", err)
	}
	p.scene.AddPrimitive(&scene.Primitive{
		Kind:             scene.KindCylinder,
		MaterialIndex:    matIdx,
		TextureInfoIndex: scene.NoTexture,
		Cylinder:         scene.CylinderData{Origin: origin, Direction: direction.Normalize(), Radius: radius, Length: length},
	})
	return nil
}

func (p *parser) parseTriangle(tokens []string) error {
	m := kv(tokens)
	v0, err := p.vec3(m, "v0")
	if err != nil {
		return err
	}
	v1, err := p.vec3(m, "v1")
	if err != nil {
		return err
	}
	v2, err := p.vec3(m, "v2")
	if err != nil {
		return err
	}
	flat := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	n0 := p.vec3OrDefault(m, "n0", flat)
	n1 := p.vec3OrDefault(m, "n1", flat)
	n2 := p.vec3OrDefault(m, "n2", flat)
	matIdx, err := p.materialIndex(m)
	if err != nil {
		return p.errorf("triangle: %v", err)
	}
	texIdx, normIdx, err := p.textureRefs(m)
	if err != nil {
		return p.errorf("triangle: %v", err)
	}

	prim := &scene.Primitive{
		Kind:             scene.KindTriangle,
		MaterialIndex:    matIdx,
		TextureInfoIndex: scene.NoTexture,
		Triangle:         scene.NewTriangleData(v0, v1, v2, n0, n1, n2),
	}
	if texIdx != scene.NoTexture || normIdx != scene.NoTexture {
		ti, err := p.triangleTextureInfo(m, v0, v1, v2, texIdx, normIdx)
		if err != nil {
			return p.errorf("triangle: %v", err)
		}
		prim.TextureInfoIndex = p.scene.AddTextureInfo(ti)
	}
	p.scene.AddPrimitive(prim)
	return nil
}

func (p *parser) vec3OrDefault(m map[string]string, key string, def math3d.Vec3) math3d.Vec3 {
	s, ok := m[key]
	if !ok {
		return def
	}
	v, err := parseVec3Str(s)
	if err != nil {
		return def
	}
	return v
}

func (p *parser) triangleTextureInfo(m map[string]string, v0, v1, v2 math3d.Vec3, texIdx, normIdx int) (scene.TextureInfo, error) {
	uv0, err := p.vec2(m, "uv0")
	if err != nil {
		return scene.TextureInfo{}, err
	}
	uv1, err := p.vec2(m, "uv1")
	if err != nil {
		return scene.TextureInfo{}, err
	}
	uv2, err := p.vec2(m, "uv2")
	if err != nil {
		return scene.TextureInfo{}, err
	}
	edge1, edge2 := v1.Sub(v0), v2.Sub(v0)
	du1, dv1 := uv1.X-uv0.X, uv1.Y-uv0.Y
	du2, dv2 := uv2.X-uv0.X, uv2.Y-uv0.Y
	tangent, bitangent := scene.ComputeTangentBasis(edge1, edge2, du1, dv1, du2, dv2)
	return scene.TextureInfo{
		TextureIndex: texIdx, NormalMapIndex: normIdx,
		UV: []math3d.Vec2{uv0, uv1, uv2}, Tangent: tangent, Bitangent: bitangent,
	}, nil
}

func (p *parser) vec2(m map[string]string, key string) (math3d.Vec2, error) {
	s, ok := m[key]
	if !ok {
		return math3d.Vec2{}, fmt.Errorf("missing %s:(u,v)", key)
	}
	v, err := parseVec2Str(s)
	if err != nil {
		return math3d.Vec2{}, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func (p *parser) parseQuad(tokens []string) error {
	m := kv(tokens)
	v0, err := p.vec3(m, "v0")
	if err != nil {
		return err
	}
	v1, err := p.vec3(m, "v1")
	if err != nil {
		return err
	}
	v2, err := p.vec3(m, "v2")
	if err != nil {
		return err
	}
	v3, err := p.vec3(m, "v3")
	if err != nil {
		return err
	}
	flat := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
	n0 := p.vec3OrDefault(m, "n0", flat)
	n1 := p.vec3OrDefault(m, "n1", flat)
	n2 := p.vec3OrDefault(m, "n2", flat)
	n3 := p.vec3OrDefault(m, "n3", flat)
	matIdx, err := p.materialIndex(m)
	if err != nil {
		return p.errorf("quad: %v", err)
	}
	texIdx, normIdx, err := p.textureRefs(m)
	if err != nil {
		return p.errorf("quad: %v", err)
	}

	prim := &scene.Primitive{
		Kind:             scene.KindQuad,
		MaterialIndex:    matIdx,
		TextureInfoIndex: scene.NoTexture,
		Quad:             scene.NewQuadData(v0, v1, v2, v3, n0, n1, n2, n3),
	}
	if texIdx != scene.NoTexture || normIdx != scene.NoTexture {
		uv0, e1 := p.vec2(m, "uv0")
		uv1, e2 := p.vec2(m, "uv1")
		uv2, e3 := p.vec2(m, "uv2")
		uv3, e4 := p.vec2(m, "uv3")
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
			return p.errorf("quad: missing uv0..uv3 for a textured quad")
		}
		edge1, edge2 := v1.Sub(v0), v2.Sub(v0)
		du1, dv1 := uv1.X-uv0.X, uv1.Y-uv0.Y
		du2, dv2 := uv2.X-uv0.X, uv2.Y-uv0.Y
		tangent, bitangent := scene.ComputeTangentBasis(edge1, edge2, du1, dv1, du2, dv2)
		ti := scene.TextureInfo{
			TextureIndex: texIdx, NormalMapIndex: normIdx,
			UV: []math3d.Vec2{uv0, uv1, uv2, uv3}, Tangent: tangent, Bitangent: bitangent,
		}
		prim.TextureInfoIndex = p.scene.AddTextureInfo(ti)
	}
	p.scene.AddPrimitive(prim)
	return nil
}

// parseLoadMesh implements `load_obj <file> (texture:<name|none>
// shift:(x,y,z) scale:<f> material:<name>)`: dispatches to LoadOBJ or
// LoadGLTF by file extension, builds scene.Primitive triangles via
// BuildMeshPrimitives, and folds them into the scene's hierarchy forest as
// their own root via Scene.AddMeshPrimitives.
func (p *parser) parseLoadMesh(tokens []string) error {
	if len(tokens) == 0 {
		return p.errorf("load_obj needs a file path")
	}
	file := tokens[0]
	m := kv(tokens[1:])

	matIdx, err := p.materialIndex(m)
	if err != nil {
		return p.errorf("load_obj: %v", err)
	}
	texIdx := scene.NoTexture
	if name, ok := m["texture"]; ok && name != "none" {
		idx, ok := p.textures[name]
		if !ok {
			return p.errorf("load_obj: texture %q used before its load_texture directive", name)
		}
		texIdx = idx
	}
	shift := p.vec3OrDefault(m, "shift", math3d.Zero3())
	scaleFactor, err := p.float(m, "scale", 1)
	if err != nil {
		return p.errorf("load_obj: %v", err)
	}

	path := p.resolvePath(file)
	var tris []MeshTriangle
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		tris, err = LoadOBJ(path)
	case ".glb", ".gltf":
		tris, err = LoadGLTF(path)
	default:
		return p.errorf("load_obj: unrecognized mesh extension %q", filepath.Ext(path))
	}
	if err != nil {
		return p.errorf("load_obj: %v", err)
	}

	prims := BuildMeshPrimitives(p.scene, tris, matIdx, texIdx, shift, scaleFactor)
	p.scene.AddMeshPrimitives(prims)
	return nil
}
