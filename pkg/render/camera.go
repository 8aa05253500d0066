// Package render holds the ray-generation camera, the HDR film accumulator,
// and the interactive terminal preview, the "outer surface" collaborators
// the path-tracing core in pkg/pathtrace hands rays to and pixels back from.
package render

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/rng"
	"github.com/taigrr/lumen/pkg/scene"
)

// Camera generates primary rays for an image of Width x Height pixels,
// grounded on scene/camera.hpp + camera.cpp: an orthonormal basis
// (direction, toTheRight, toTheBottom) and the per-pixel step sizes are
// precomputed once at construction, not recomputed per ray.
type Camera struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3
	Right     math3d.Vec3
	Down      math3d.Vec3

	Width, Height int
	Distance      float64 // image-plane distance from Origin

	// AA is the Gaussian jitter standard deviation, in pixels, applied to
	// the pinhole ray for anti-aliasing. 0 disables jitter.
	AA float64

	// Aperture and FocalDistance enable the thin-lens depth-of-field
	// variant when Aperture > 0; FocalDistance is measured along Direction.
	Aperture      float64
	FocalDistance float64

	di, dj             float64
	halfFovW, halfFovH float64
}

// NewCamera builds a Camera looking from origin toward direction (need not
// be unit), with the given up hint used only to derive an orthonormal basis,
// horizontal/vertical field-of-view in radians, and output resolution.
func NewCamera(origin, direction, up math3d.Vec3, fovW, fovH float64, width, height int) *Camera {
	dir := direction.Normalize()
	right := dir.Cross(up).Normalize()
	down := dir.Cross(right) // to_the_bottom = direction x to_the_right

	c := &Camera{
		Origin: origin, Direction: dir, Right: right, Down: down,
		Width: width, Height: height, Distance: 1,
	}
	c.halfFovW = -math.Tan(fovW / 2)
	c.halfFovH = -math.Tan(fovH / 2)
	c.di = -2 * c.halfFovW / float64(width)
	c.dj = -2 * c.halfFovH / float64(height)
	return c
}

// PrimaryRay generates the stochastic pinhole ray through pixel (i,j),
// jittering the sample point within the pixel (uniformly) and, if AA > 0,
// adding Gaussian anti-aliasing jitter, matching gen_ray in the original.
func (c *Camera) PrimaryRay(i, j int, r *rng.Source) scene.Ray {
	fi, fj := float64(i)+r.Unit(), float64(j)+r.Unit()
	if c.AA > 0 {
		fi += gaussian(r) * c.AA
		fj += gaussian(r) * c.AA
	}
	dir := c.rayDirection(fi, fj)
	return scene.NewRay(c.Origin, dir)
}

// PrimaryRayLens generates a thin-lens depth-of-field ray through pixel
// (i,j): the focal point is the deterministic point the pinhole ray would
// hit on the focal plane, and the ray origin is jittered across a disk of
// radius Aperture/2 on the lens plane, aimed back at that focal point.
func (c *Camera) PrimaryRayLens(i, j int, r *rng.Source) scene.Ray {
	fi, fj := float64(i)+r.Unit(), float64(j)+r.Unit()
	pinhole := c.rayDirection(fi, fj)
	focal := c.Origin.Add(pinhole.Scale(c.FocalDistance / c.Direction.Dot(pinhole)))

	lensRadius := c.Aperture / 2
	lx, ly := sampleDisk(r, lensRadius)
	lensOrigin := c.Origin.Add(c.Right.Scale(lx)).Add(c.Down.Scale(ly))
	return scene.NewRay(lensOrigin, focal.Sub(lensOrigin))
}

// rayDirection is gen_ray's core formula: dir = (halfFovW + i*di)*right +
// (halfFovH + j*dj)*down + distance*direction.
func (c *Camera) rayDirection(i, j float64) math3d.Vec3 {
	return c.Right.Scale(c.halfFovW + i*c.di).
		Add(c.Down.Scale(c.halfFovH + j*c.dj)).
		Add(c.Direction.Scale(c.Distance))
}

// gaussian draws a standard-normal sample via the Box-Muller transform,
// using the scene-wide per-pixel Source so anti-aliasing jitter stays
// reproducible alongside every other random draw on the path.
func gaussian(r *rng.Source) float64 {
	u1 := math.Max(r.Unit(), 1e-12)
	u2 := r.Unit()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// sampleDisk draws a uniform point on a disk of the given radius via
// polar sampling.
func sampleDisk(r *rng.Source, radius float64) (x, y float64) {
	theta := r.Float64(2 * math.Pi)
	rad := radius * math.Sqrt(r.Unit())
	return rad * math.Cos(theta), rad * math.Sin(theta)
}
