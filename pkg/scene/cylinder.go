package scene

import (
	"math"

	"github.com/taigrr/lumen/pkg/math3d"
)

// CylinderData is a finite cylinder: an origin, a unit axis direction, a
// radius, and a length measured along the axis from the origin.
type CylinderData struct {
	Origin    math3d.Vec3
	Direction math3d.Vec3 // unit
	Radius    float64
	Length    float64
}

// measureDistance solves the infinite-cylinder quadratic in the plane
// orthogonal to the axis, then falls back to the two end-caps when the side
// solution's axial projection falls outside [0,Length]. Grounded on the case
// table in the original cylinder intersection routine: of the two roots of
// the side quadratic, whichever has an in-range projection wins; if neither
// does, the ray must cross an end-cap disk instead.
func (c *CylinderData) measureDistance(r Ray) (float64, bool) {
	if c.Radius < degenerateEps || c.Length < degenerateEps {
		return 0, false
	}

	ump := r.Origin.Sub(c.Origin)
	umpDirec := ump.Dot(c.Direction)
	dirDirec := r.Direction.Dot(c.Direction)
	a := ump.Sub(c.Direction.Scale(umpDirec))
	b := r.Direction.Sub(c.Direction.Scale(dirDirec))

	ab := a.Dot(b)
	bb := b.LenSq()
	rr := c.Radius * c.Radius

	if bb < degenerateEps {
		// Ray parallel to the axis: no side intersection, caps only.
		return c.capIntersection(r, umpDirec, dirDirec)
	}

	delta := ab*ab - bb*(a.LenSq()-rr)
	if delta < 0 {
		return 0, false
	}
	sq := math.Sqrt(delta)

	t1 := (-ab - sq) / bb
	t2 := (-ab + sq) / bb
	outside := true

	if t1 >= 0 {
		s1 := umpDirec + t1*dirDirec
		if s1 >= 0 {
			if s1 <= c.Length {
				return t1, true
			}
			s2 := umpDirec + t2*dirDirec
			if s2 > c.Length {
				return 0, false
			}
		} else {
			s2 := umpDirec + t2*dirDirec
			if s2 < 0 {
				return 0, false
			}
		}
	} else {
		if t2 < 0 {
			return 0, false
		}
		s1 := umpDirec + t1*dirDirec
		s2 := umpDirec + t2*dirDirec
		s1ok := s1 >= 0 && s1 <= c.Length
		s2ok := s2 >= 0 && s2 <= c.Length
		outside = umpDirec < 0 || umpDirec > c.Length
		if s2ok {
			if s1ok || !outside {
				return t2, true
			}
		} else {
			if s1 < 0 {
				if s2 < 0 {
					return 0, false
				}
			} else if s1 <= c.Length {
				if outside {
					return 0, false
				}
			} else if s2 > c.Length {
				return 0, false
			}
		}
	}

	return c.edgeDiskIntersection(r, umpDirec, dirDirec, outside)
}

// capIntersection handles the degenerate case where the ray runs parallel to
// the cylinder's axis: the only possible hits are the two end-cap disks.
func (c *CylinderData) capIntersection(r Ray, umpDirec, dirDirec float64) (float64, bool) {
	if dirDirec > -degenerateEps && dirDirec < degenerateEps {
		return 0, false
	}
	outside := umpDirec < 0 || umpDirec > c.Length
	return c.edgeDiskIntersection(r, umpDirec, dirDirec, outside)
}

func (c *CylinderData) edgeDiskIntersection(r Ray, umpDirec, dirDirec float64, outside bool) (float64, bool) {
	if dirDirec > -degenerateEps && dirDirec < degenerateEps {
		return 0, false
	}
	var t float64
	if outside == (dirDirec >= 0) {
		t = -umpDirec / dirDirec
	} else {
		t = (-umpDirec + c.Length) / dirDirec
	}
	if t < 0 {
		return 0, false
	}
	p := r.At(t).Sub(c.Origin)
	proj := p.Dot(c.Direction)
	radial := p.Sub(c.Direction.Scale(proj))
	if radial.LenSq() > c.Radius*c.Radius+1e-9 {
		return 0, false
	}
	return t, true
}

func (c *CylinderData) computeIntersection(r Ray, t float64, prim *Primitive) Hit {
	p := r.At(t)
	pmpos := p.Sub(c.Origin)
	rr := c.Radius * c.Radius

	notOnBottom := pmpos.LenSq() >= rr
	hitsSide := notOnBottom && pmpos.Sub(c.Direction.Scale(c.Length)).LenSq() >= rr

	var n math3d.Vec3
	if hitsSide {
		proj := pmpos.Dot(c.Direction)
		n = pmpos.Sub(c.Direction.Scale(proj)).Div(c.Radius)
	} else if notOnBottom {
		n = c.Direction
	} else {
		n = c.Direction.Negate()
	}
	normal, inward := orientNormal(r.Direction, n)
	return Hit{Ray: r, Point: p, Normal: normal, Primitive: prim, Inward: inward}
}

// bounds returns a conservative (non-tight) axis-aligned box: the exact
// extent of a tilted cylinder is not a simple closed form, so each axis uses
// the looser of the two end positions offset by the radius, matching the
// original's documented "exact solution is not trivial" shortcut.
func (c *CylinderData) bounds() (min, max math3d.Vec3) {
	p0 := c.Origin
	p1 := c.Origin.Add(c.Direction.Scale(c.Length))
	r := math3d.V3(c.Radius, c.Radius, c.Radius)
	return p0.Min(p1).Sub(r), p0.Max(p1).Add(r)
}
