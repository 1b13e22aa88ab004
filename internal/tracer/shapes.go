package tracer

import (
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// Sphere is the unit sphere at the origin.
type Sphere struct {
	shapeBase
}

func NewSphere() *Sphere {
	return &Sphere{shapeBase: newShapeBase()}
}

// NewGlassSphere returns a fully transparent sphere with the refractive
// index of glass.
func NewGlassSphere() *Sphere {
	s := NewSphere()
	s.material.Transparency = 1
	s.material.RefractiveIndex = Glass
	return s
}

func (s *Sphere) localIntersect(r Ray) Intersections {
	sphereToRay := r.Origin.Sub(geom.Origin)
	a := r.Direction.Dot(r.Direction)
	b := 2 * r.Direction.Dot(sphereToRay)
	c := sphereToRay.Dot(sphereToRay) - 1
	disc := b*b - 4*a*c
	if disc < 0 {
		return nil
	}
	sq := math.Sqrt(disc)
	return Intersections{
		{T: (-b - sq) / (2 * a), Object: s},
		{T: (-b + sq) / (2 * a), Object: s},
	}
}

func (s *Sphere) localNormalAt(p geom.Tuple) geom.Tuple {
	return p.Sub(geom.Origin)
}

func (s *Sphere) Bounds() Bounds {
	return NewBounds(geom.Point(-1, -1, -1), geom.Point(1, 1, 1))
}

// Plane is the infinite xz plane.
type Plane struct {
	shapeBase
}

func NewPlane() *Plane {
	return &Plane{shapeBase: newShapeBase()}
}

func (p *Plane) localIntersect(r Ray) Intersections {
	if math.Abs(r.Direction.Y) < geom.Epsilon {
		return nil
	}
	return Intersections{{T: -r.Origin.Y / r.Direction.Y, Object: p}}
}

func (p *Plane) localNormalAt(geom.Tuple) geom.Tuple {
	return geom.Vector(0, 1, 0)
}

func (p *Plane) Bounds() Bounds {
	inf := math.Inf(1)
	return NewBounds(geom.Point(-inf, 0, -inf), geom.Point(inf, 0, inf))
}

// Cube is the axis-aligned cube from -1 to 1.
type Cube struct {
	shapeBase
}

func NewCube() *Cube {
	return &Cube{shapeBase: newShapeBase()}
}

func (c *Cube) localIntersect(r Ray) Intersections {
	xmin, xmax := checkAxis(r.Origin.X, r.Direction.X, -1, 1)
	ymin, ymax := checkAxis(r.Origin.Y, r.Direction.Y, -1, 1)
	zmin, zmax := checkAxis(r.Origin.Z, r.Direction.Z, -1, 1)
	tmin := math.Max(xmin, math.Max(ymin, zmin))
	tmax := math.Min(xmax, math.Min(ymax, zmax))
	if tmin > tmax {
		return nil
	}
	return Intersections{{T: tmin, Object: c}, {T: tmax, Object: c}}
}

func (c *Cube) localNormalAt(p geom.Tuple) geom.Tuple {
	ax, ay, az := math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z)
	switch maxc := math.Max(ax, math.Max(ay, az)); maxc {
	case ax:
		return geom.Vector(p.X, 0, 0)
	case ay:
		return geom.Vector(0, p.Y, 0)
	default:
		return geom.Vector(0, 0, p.Z)
	}
}

func (c *Cube) Bounds() Bounds {
	return NewBounds(geom.Point(-1, -1, -1), geom.Point(1, 1, 1))
}
