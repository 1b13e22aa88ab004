package tracer

import "github.com/kingrea/rayforge/internal/geom"

// Shape is anything a ray can hit. Each shape works in its own object space;
// Intersect and NormalAt convert between world and object space through the
// shape's transform and the transforms of its enclosing groups.
type Shape interface {
	Transform() geom.Matrix
	// SetTransform panics if m is not invertible.
	SetTransform(m geom.Matrix)
	Material() *Material
	SetMaterial(m Material)
	Parent() *Group
	// Bounds is the axis-aligned box around the shape in object space.
	Bounds() Bounds

	base() *shapeBase
	localIntersect(r Ray) Intersections
	localNormalAt(p geom.Tuple) geom.Tuple
}

type shapeBase struct {
	transform geom.Matrix
	inverse   geom.Matrix
	normal    geom.Matrix
	material  Material
	parent    *Group
}

func newShapeBase() shapeBase {
	return shapeBase{
		transform: geom.Identity(),
		inverse:   geom.Identity(),
		normal:    geom.Identity(),
		material:  DefaultMaterial(),
	}
}

func (b *shapeBase) Transform() geom.Matrix { return b.transform }

func (b *shapeBase) SetTransform(m geom.Matrix) {
	b.transform = m
	b.inverse = geom.MustInverse(m)
	b.normal = b.inverse.Transpose()
}

func (b *shapeBase) Material() *Material { return &b.material }

func (b *shapeBase) SetMaterial(m Material) { b.material = m }

func (b *shapeBase) Parent() *Group { return b.parent }

func (b *shapeBase) base() *shapeBase { return b }

// Intersect transforms r into the object space of s and intersects it.
func Intersect(s Shape, r Ray) Intersections {
	return s.localIntersect(r.Transform(s.base().inverse))
}

// NormalAt returns the world-space surface normal of s at a world point.
func NormalAt(s Shape, worldPoint geom.Tuple) geom.Tuple {
	local := WorldToObject(s, worldPoint)
	return NormalToWorld(s, s.localNormalAt(local))
}

// WorldToObject converts a world point into the object space of s,
// walking down from the outermost group.
func WorldToObject(s Shape, p geom.Tuple) geom.Tuple {
	if parent := s.Parent(); parent != nil {
		p = WorldToObject(parent, p)
	}
	return s.base().inverse.MulTuple(p)
}

// NormalToWorld converts an object-space normal of s to world space.
func NormalToWorld(s Shape, n geom.Tuple) geom.Tuple {
	n = s.base().normal.MulTuple(n)
	n.W = 0
	n = n.Normalize()
	if parent := s.Parent(); parent != nil {
		n = NormalToWorld(parent, n)
	}
	return n
}

// parentBounds is the box around s in the space of its parent.
func parentBounds(s Shape) Bounds {
	return s.Bounds().Transform(s.Transform())
}
