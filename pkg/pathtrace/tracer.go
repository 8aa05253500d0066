package pathtrace

import (
	"github.com/taigrr/lumen/pkg/color"
	"github.com/taigrr/lumen/pkg/rng"
	"github.com/taigrr/lumen/pkg/scene"
)

// Tracer configures one path-tracing run: the bounce cap, optional Russian
// roulette termination, and the opt-in multisample first-bounce variant
// (spec §4.9). The zero value runs the plain single-sample path with no
// roulette, matching the original's default behavior.
type Tracer struct {
	MaxBounces int

	// RussianRoulette enables probabilistic early termination after
	// MinBounces steps, continuing with probability
	// max(throughput.r,g,b) and dividing throughput by that probability on
	// survival, keeping the estimator unbiased. Off by default.
	RussianRoulette bool
	MinBounces      int

	// Multisample, when true, has Render cast MultisampleRays secondary
	// rays at the first hit split between its two candidate bounce
	// branches instead of one, per spec §4.9's multisample variant. Off by
	// default.
	Multisample     bool
	MultisampleRays int
}

// DefaultTracer returns a Tracer with the given bounce cap and Russian
// roulette/multisample disabled, the original's default configuration.
func DefaultTracer(maxBounces int) Tracer {
	return Tracer{MaxBounces: maxBounces, MinBounces: 3}
}

// Trace runs one unidirectional path starting at ray and returns the
// estimated radiance, implementing spec §4.9's iterative loop.
func (t Tracer) Trace(s *scene.Scene, ray scene.Ray, r *rng.Source) color.Color {
	return t.traceFrom(s, ray, r, color.White, color.Black, []float64{1}, 0)
}

// traceFrom continues a path from bounce index startBounce with the given
// accumulators already populated, letting the multisample variant hand off
// to the ordinary single-sample loop after its first, specially-sampled hit.
func (t Tracer) traceFrom(s *scene.Scene, ray scene.Ray, r *rng.Source, throughput, emitted color.Color, indexStack []float64, startBounce int) color.Color {
	for bounce := startBounce; bounce < t.MaxBounces; bounce++ {
		hit, ok := s.FindClosestObject(ray)
		if !ok {
			return throughput.Mul(s.Background.Sample(ray.Direction)).Add(emitted)
		}

		m := s.MaterialFor(hit.Primitive)
		if m.Emissive() {
			emitted = emitted.Add(throughput.Mul(m.EmittedColor.Scale(m.EmissionIntensity)))
			if m.EmissionIntensity >= 1 {
				return emitted
			}
		}

		surfaceColor := m.Color
		if tex, ok := s.SampleTexture(hit.Primitive, hit); ok {
			surfaceColor = tex
		}
		if n, ok := s.SampleNormalMap(hit.Primitive, hit); ok {
			hit.Normal = n
		}

		bnc, nextStack := t.shade(r, hit, m, surfaceColor, indexStack)
		indexStack = nextStack
		throughput = throughput.Mul(bnc.Throughput)

		if t.RussianRoulette && bounce >= t.MinBounces {
			p := throughput.MaxComponent()
			if p < 1 {
				if p < 1e-6 || r.Unit() >= p {
					return emitted
				}
				throughput = throughput.Scale(1 / p)
			}
		}

		outward := bnc.Direction.Dot(hit.Normal) > 0
		origin := ApplyBias(hit.Point, hit.Normal, outward)
		ray = scene.NewRay(origin, bnc.Direction)
	}
	return emitted
}

// shade dispatches to the opaque or transparent shading rule and manages
// the refraction-index stack push/pop the transparent branch requests.
func (t Tracer) shade(r *rng.Source, hit scene.Hit, m scene.Material, surfaceColor color.Color, indexStack []float64) (Bounce, []float64) {
	if m.Opaque() {
		return ShadeOpaque(r, hit, m, surfaceColor), indexStack
	}

	n1 := indexStack[len(indexStack)-1]
	n2 := m.RefractionIndex
	if !hit.Inward && len(indexStack) > 1 {
		n2 = indexStack[len(indexStack)-2]
	}
	bnc := ShadeTransparent(r, hit, m, surfaceColor, n1, n2)

	switch {
	case bnc.EnteringGlass:
		indexStack = append(indexStack, m.RefractionIndex)
	case bnc.ExitingGlass && len(indexStack) > 1:
		indexStack = indexStack[:len(indexStack)-1]
	}
	return bnc, indexStack
}

// Render drives one pixel's accumulated sample: either the plain Trace call,
// or, when Multisample is enabled, TraceMultisample.
func (t Tracer) Render(s *scene.Scene, ray scene.Ray, r *rng.Source) color.Color {
	if t.Multisample && t.MultisampleRays > 1 {
		return t.TraceMultisample(s, ray, r)
	}
	return t.Trace(s, ray, r)
}
