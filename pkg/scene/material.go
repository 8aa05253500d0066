package scene

import "github.com/taigrr/lumen/pkg/color"

// Material mirrors the original's material class: a plain value object (Go
// structs are copied by value already, so the C++ move-only constraint has no
// Go-side analogue to enforce).
type Material struct {
	Color               color.Color
	EmittedColor        color.Color
	Reflectivity        float64 // 0 = pure diffuse, 1 = pure mirror
	EmissionIntensity   float64
	SpecularProbability float64 // probability of a specular bounce
	ReflectsColor       bool    // tint specular bounces with Color, else leave white
	Transparency        float64
	RefractionScattering float64
	RefractionIndex     float64 // >= 1
}

// Opaque reports whether the material has zero transparency.
func (m Material) Opaque() bool { return m.Transparency == 0 }

// Emissive reports whether the material emits light.
func (m Material) Emissive() bool { return m.EmissionIntensity > 0 }

// HasSpecProb reports whether the specular-probability fast path (==1) does
// not apply, i.e. whether the opaque branch must actually sample it.
func (m Material) HasSpecProb() bool { return m.SpecularProbability < 1 }

// Diffuse returns a purely diffuse material of the given color, matching the
// original's diffuse_material helper and the DIFFUSE static prototype.
func Diffuse(c color.Color) Material {
	return Material{Color: c, SpecularProbability: 0, RefractionIndex: 1}
}

// Mirror returns a perfect, color-preserving mirror.
func Mirror(c color.Color) Material {
	return Material{
		Color:               c,
		Reflectivity:        1,
		SpecularProbability: 1,
		ReflectsColor:       false,
		RefractionIndex:     1,
	}
}

// Glass returns a clear dielectric with the classic refraction index 1.5.
func Glass(tint color.Color) Material {
	return Material{
		Color:           tint,
		Transparency:    1,
		RefractionIndex: 1.5,
	}
}

// Water returns a dielectric with refraction index 1.3.
func Water(tint color.Color) Material {
	return Material{
		Color:           tint,
		Transparency:    1,
		RefractionIndex: 1.3,
	}
}

// Light returns an emissive material of the given color and intensity,
// matching the original's light_material helper.
func Light(c color.Color, intensity float64) Material {
	return Material{Color: c, EmittedColor: c, EmissionIntensity: intensity, RefractionIndex: 1}
}
