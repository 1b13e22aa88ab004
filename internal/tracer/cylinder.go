package tracer

import (
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// Truncation limits a cylinder or cone along y. Minimum and Maximum are
// exclusive; Closed adds end caps.
type Truncation struct {
	Minimum float64
	Maximum float64
	Closed  bool
}

// Unbounded extends infinitely in both directions.
func Unbounded() Truncation {
	return Truncation{Minimum: math.Inf(-1), Maximum: math.Inf(1)}
}

func (tr Truncation) within(y float64) bool {
	return tr.Minimum < y && y < tr.Maximum
}

// Cylinder has radius 1 around the y axis.
type Cylinder struct {
	shapeBase
	Truncation
}

func NewCylinder() *Cylinder {
	return &Cylinder{shapeBase: newShapeBase(), Truncation: Unbounded()}
}

func (c *Cylinder) localIntersect(r Ray) Intersections {
	var xs Intersections
	dx, dz := r.Direction.X, r.Direction.Z
	ox, oz := r.Origin.X, r.Origin.Z
	a := dx*dx + dz*dz
	if math.Abs(a) >= geom.Epsilon {
		b := 2*ox*dx + 2*oz*dz
		cc := ox*ox + oz*oz - 1
		disc := b*b - 4*a*cc
		if disc < 0 {
			return nil
		}
		xs = c.sides(c, xs, r, a, b, disc)
	}
	return c.caps(c, xs, r, func(float64) float64 { return 1 })
}

func (c *Cylinder) localNormalAt(p geom.Tuple) geom.Tuple {
	dist := p.X*p.X + p.Z*p.Z
	switch {
	case dist < 1 && p.Y >= c.Maximum-geom.Epsilon:
		return geom.Vector(0, 1, 0)
	case dist < 1 && p.Y <= c.Minimum+geom.Epsilon:
		return geom.Vector(0, -1, 0)
	default:
		return geom.Vector(p.X, 0, p.Z)
	}
}

func (c *Cylinder) Bounds() Bounds {
	return NewBounds(geom.Point(-1, c.Minimum, -1), geom.Point(1, c.Maximum, 1))
}

// Cone is the double-napped cone x² + z² = y².
type Cone struct {
	shapeBase
	Truncation
}

func NewCone() *Cone {
	return &Cone{shapeBase: newShapeBase(), Truncation: Unbounded()}
}

func (c *Cone) localIntersect(r Ray) Intersections {
	var xs Intersections
	dx, dy, dz := r.Direction.X, r.Direction.Y, r.Direction.Z
	ox, oy, oz := r.Origin.X, r.Origin.Y, r.Origin.Z
	a := dx*dx - dy*dy + dz*dz
	b := 2 * (ox*dx - oy*dy + oz*dz)
	cc := ox*ox - oy*oy + oz*oz
	switch {
	case math.Abs(a) < geom.Epsilon:
		// Parallel to one half of the cone: a single hit on the other half.
		if math.Abs(b) >= geom.Epsilon {
			t := -cc / (2 * b)
			if c.within(oy + t*dy) {
				xs = append(xs, Intersection{T: t, Object: c})
			}
		}
	default:
		disc := b*b - 4*a*cc
		if disc < 0 {
			if disc < -geom.Epsilon {
				return c.caps(c, xs, r, math.Abs)
			}
			disc = 0
		}
		xs = c.sides(c, xs, r, a, b, disc)
	}
	return c.caps(c, xs, r, math.Abs)
}

func (c *Cone) localNormalAt(p geom.Tuple) geom.Tuple {
	dist := p.X*p.X + p.Z*p.Z
	switch {
	case dist < c.Maximum*c.Maximum && p.Y >= c.Maximum-geom.Epsilon:
		return geom.Vector(0, 1, 0)
	case dist < c.Minimum*c.Minimum && p.Y <= c.Minimum+geom.Epsilon:
		return geom.Vector(0, -1, 0)
	}
	y := math.Sqrt(dist)
	if p.Y > 0 {
		y = -y
	}
	return geom.Vector(p.X, y, p.Z)
}

func (c *Cone) Bounds() Bounds {
	limit := math.Max(math.Abs(c.Minimum), math.Abs(c.Maximum))
	return NewBounds(geom.Point(-limit, c.Minimum, -limit), geom.Point(limit, c.Maximum, limit))
}

// sides appends the quadric roots that fall within the truncation.
func (tr Truncation) sides(obj Shape, xs Intersections, r Ray, a, b, disc float64) Intersections {
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	for _, t := range []float64{t0, t1} {
		if tr.within(r.Origin.Y + t*r.Direction.Y) {
			xs = append(xs, Intersection{T: t, Object: obj})
		}
	}
	return xs
}

// caps appends hits on the closed ends; radius gives the cap radius at y.
func (tr Truncation) caps(obj Shape, xs Intersections, r Ray, radius func(float64) float64) Intersections {
	if !tr.Closed || math.Abs(r.Direction.Y) < geom.Epsilon {
		return xs
	}
	for _, y := range []float64{tr.Minimum, tr.Maximum} {
		t := (y - r.Origin.Y) / r.Direction.Y
		x := r.Origin.X + t*r.Direction.X
		z := r.Origin.Z + t*r.Direction.Z
		rad := radius(y)
		if x*x+z*z <= rad*rad {
			xs = append(xs, Intersection{T: t, Object: obj})
		}
	}
	return xs
}
