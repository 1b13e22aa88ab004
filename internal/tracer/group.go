package tracer

import (
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// Triangle is a flat triangle given by three points.
type Triangle struct {
	shapeBase
	P1, P2, P3 geom.Tuple
	E1, E2     geom.Tuple
	Normal     geom.Tuple
}

func NewTriangle(p1, p2, p3 geom.Tuple) *Triangle {
	e1 := p2.Sub(p1)
	e2 := p3.Sub(p1)
	return &Triangle{
		shapeBase: newShapeBase(),
		P1:        p1, P2: p2, P3: p3,
		E1: e1, E2: e2,
		Normal: e2.Cross(e1).Normalize(),
	}
}

// localIntersect is the Möller–Trumbore test.
func (tri *Triangle) localIntersect(r Ray) Intersections {
	dirCrossE2 := r.Direction.Cross(tri.E2)
	det := tri.E1.Dot(dirCrossE2)
	if math.Abs(det) < geom.Epsilon {
		return nil
	}
	f := 1 / det
	p1ToOrigin := r.Origin.Sub(tri.P1)
	u := f * p1ToOrigin.Dot(dirCrossE2)
	if u < 0 || u > 1 {
		return nil
	}
	originCrossE1 := p1ToOrigin.Cross(tri.E1)
	v := f * r.Direction.Dot(originCrossE1)
	if v < 0 || u+v > 1 {
		return nil
	}
	return Intersections{{T: f * tri.E2.Dot(originCrossE1), Object: tri}}
}

func (tri *Triangle) localNormalAt(geom.Tuple) geom.Tuple {
	return tri.Normal
}

func (tri *Triangle) Bounds() Bounds {
	return EmptyBounds().AddPoint(tri.P1).AddPoint(tri.P2).AddPoint(tri.P3)
}

// Group is a transformable collection of shapes. Rays that miss the group's
// bounding box skip its children entirely.
type Group struct {
	shapeBase
	children []Shape
	bounds   Bounds
}

func NewGroup(children ...Shape) *Group {
	g := &Group{shapeBase: newShapeBase(), bounds: EmptyBounds()}
	for _, c := range children {
		g.AddChild(c)
	}
	return g
}

// AddChild makes g the parent of s. The bounding box is updated here, so
// s must have its final transform (and children) when it is added.
func (g *Group) AddChild(s Shape) {
	s.base().parent = g
	g.children = append(g.children, s)
	g.bounds = g.bounds.Union(parentBounds(s))
}

func (g *Group) Children() []Shape { return g.children }

func (g *Group) Len() int { return len(g.children) }

// SetMaterial applies m to every descendant.
func (g *Group) SetMaterial(m Material) {
	g.material = m
	for _, c := range g.children {
		c.SetMaterial(m)
	}
}

func (g *Group) Bounds() Bounds { return g.bounds }

func (g *Group) localIntersect(r Ray) Intersections {
	if len(g.children) == 0 || !g.bounds.Intersects(r) {
		return nil
	}
	var xs Intersections
	for _, c := range g.children {
		xs = append(xs, Intersect(c, r)...)
	}
	xs.sort()
	return xs
}

// localNormalAt is never reached: hits always report the child shape.
func (g *Group) localNormalAt(p geom.Tuple) geom.Tuple {
	panic("tracer: normal requested for a group")
}
