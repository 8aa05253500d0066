package pathtrace

import (
	"math"

	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/rng"
	"github.com/taigrr/lumen/pkg/scene"
)

// TraceMultisample implements spec §4.9's multisample first-bounce variant:
// at the first hit, precompute the two candidate bounce branches (specular
// vs. diffuse for an opaque surface, reflect vs. refract for a transparent
// one), split MultisampleRays secondary rays between them in proportion to
// each branch's selection probability, and average the results. Every
// bounce after the first uses the ordinary single-sample Trace loop.
func (t Tracer) TraceMultisample(s *scene.Scene, ray scene.Ray, r *rng.Source) color.Color {
	hit, ok := s.FindClosestObject(ray)
	if !ok {
		return s.Background.Sample(ray.Direction)
	}

	m := s.MaterialFor(hit.Primitive)
	emitted := color.Black
	if m.Emissive() {
		emitted = m.EmittedColor.Scale(m.EmissionIntensity)
		if m.EmissionIntensity >= 1 {
			return emitted
		}
	}

	surfaceColor := m.Color
	if tex, ok := s.SampleTexture(hit.Primitive, hit); ok {
		surfaceColor = tex
	}
	if normal, ok := s.SampleNormalMap(hit.Primitive, hit); ok {
		hit.Normal = normal
	}

	n := t.MultisampleRays
	branchA, branchB, probA, probB := t.splitBranches(hit, m, surfaceColor)

	samplesA := int(math.Round(float64(n) * probA))
	if samplesA < 0 {
		samplesA = 0
	}
	if samplesA > n {
		samplesA = n
	}
	samplesB := n - samplesA

	sum := color.Black
	for i := 0; i < samplesA; i++ {
		sum = sum.Add(t.continuePath(s, r, hit, branchA(r)))
	}
	for i := 0; i < samplesB; i++ {
		sum = sum.Add(t.continuePath(s, r, hit, branchB(r)))
	}
	_ = probB // probB only informs the sample split; no separate reweighting is needed.

	if n == 0 {
		return emitted
	}
	return emitted.Add(sum.Scale(1 / float64(n)))
}

// continuePath biases the next ray off hit per bnc's direction and resumes
// the ordinary single-sample loop for the remaining bounces, managing the
// refraction-index stack from this one bounce onward.
func (t Tracer) continuePath(s *scene.Scene, r *rng.Source, hit scene.Hit, bnc Bounce) color.Color {
	stack := []float64{1}
	if bnc.EnteringGlass {
		stack = append(stack, bnc.glassIndex)
	}
	outward := bnc.Direction.Dot(hit.Normal) > 0
	origin := ApplyBias(hit.Point, hit.Normal, outward)
	next := scene.NewRay(origin, bnc.Direction)
	return t.traceFrom(s, next, r, bnc.Throughput, color.Black, stack, 1)
}

// splitBranches returns the two candidate first-bounce directions (each a
// closure redrawing its own jitter from r) and their selection
// probabilities, for an opaque or transparent surface respectively.
func (t Tracer) splitBranches(hit scene.Hit, m scene.Material, surfaceColor color.Color) (branchA, branchB func(*rng.Source) Bounce, probA, probB float64) {
	if m.Opaque() {
		specProb := 1.0
		if m.HasSpecProb() {
			specProb = m.SpecularProbability
		}
		specular := func(r *rng.Source) Bounce {
			central := CentralReflectedDirection(hit.Ray.Direction, hit.Normal, m.Reflectivity)
			thetaMax := math.Pi * (1 - m.Reflectivity)
			throughput := color.White
			if m.ReflectsColor {
				throughput = surfaceColor
			}
			return Bounce{Direction: RandomDirection(r, central, thetaMax), Throughput: throughput}
		}
		diffuse := func(r *rng.Source) Bounce {
			return Bounce{Direction: CosineHemisphere(r, hit.Normal), Throughput: surfaceColor}
		}
		return specular, diffuse, specProb, 1 - specProb
	}

	cosTheta := -hit.Ray.Direction.Dot(hit.Normal)
	n1, n2 := 1.0, m.RefractionIndex
	if !hit.Inward {
		n1, n2 = m.RefractionIndex, 1.0
	}
	kr := Schlick(cosTheta, n1, n2)
	transparency := m.Transparency
	if transparency < 1e-9 {
		transparency = 1e-9
	}
	kr = clamp01(kr / transparency)

	reflect := func(*rng.Source) Bounce {
		central := CentralReflectedDirection(hit.Ray.Direction, hit.Normal, 1)
		return Bounce{Direction: central, Throughput: color.White}
	}
	refract := func(r *rng.Source) Bounce {
		refracted, ok := RefractedDirection(hit.Ray.Direction, hit.Normal, n1, n2)
		if !ok {
			return reflect(r)
		}
		thetaMax := m.RefractionScattering * math.Pi / 2
		return Bounce{
			Direction:     RandomDirection(r, refracted, thetaMax),
			Throughput:    surfaceColor,
			EnteringGlass: hit.Inward,
			ExitingGlass:  !hit.Inward,
			glassIndex:    m.RefractionIndex,
		}
	}
	return reflect, refract, kr, 1 - kr
}
