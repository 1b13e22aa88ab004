// Package tracer is a Whitted-style ray tracer: shapes, materials, lights,
// a world that shades ray hits, and a camera that renders it to a canvas.
package tracer

import "github.com/kingrea/rayforge/internal/geom"

// Ray is a half-line starting at Origin.
type Ray struct {
	Origin    geom.Tuple
	Direction geom.Tuple
}

func NewRay(origin, direction geom.Tuple) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// Position returns the point at distance t along the ray.
func (r Ray) Position(t float64) geom.Tuple {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transform applies m to both origin and direction.
func (r Ray) Transform(m geom.Matrix) Ray {
	return Ray{Origin: m.MulTuple(r.Origin), Direction: m.MulTuple(r.Direction)}
}
