// Package rng provides the per-goroutine pseudo-random source used by the
// path tracer. It is never shared across goroutines: each pixel's draws come
// from its own instance, seeded from a deterministic combination of the
// render seed and the pixel index so results do not depend on scheduling
// order.
package rng

import "math/rand/v2"

// Source is a reseedable uniform generator, equivalent to the original
// randomgen: it returns reals in [0,m).
type Source struct {
	r *rand.Rand
}

// New creates a Source seeded deterministically from seed. Two Sources
// created with the same seed draw identical sequences.
func New(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed>>32|1))}
}

// ForPixel derives a per-pixel Source from a global seed, so that the
// sequence of draws for a given (pixel, sample) pair is independent of
// worker scheduling.
func ForPixel(seed uint64, pixelIndex int) *Source {
	return New(seed ^ uint64(pixelIndex)*0x9E3779B97F4A7C15)
}

// Float64 returns a uniform real in [0,m).
func (s *Source) Float64(m float64) float64 {
	return s.r.Float64() * m
}

// Unit returns a uniform real in [0,1).
func (s *Source) Unit() float64 {
	return s.r.Float64()
}
