// Package geom holds the linear algebra used by the renderer: homogeneous
// tuples, RGB colors, 4x4 matrices and the common affine transformations.
package geom

import "math"

// Epsilon is the tolerance used for floating point comparisons.
const Epsilon = 1e-5

// Tuple is a homogeneous coordinate. Points have W == 1, vectors W == 0.
type Tuple struct {
	X, Y, Z, W float64
}

// Point returns a tuple with W set to 1.
func Point(x, y, z float64) Tuple { return Tuple{x, y, z, 1} }

// Vector returns a tuple with W set to 0.
func Vector(x, y, z float64) Tuple { return Tuple{x, y, z, 0} }

// Origin is the point (0, 0, 0).
var Origin = Point(0, 0, 0)

// IsPoint reports whether t is a point.
func (t Tuple) IsPoint() bool { return t.W == 1 }

// IsVector reports whether t is a vector.
func (t Tuple) IsVector() bool { return t.W == 0 }

func (t Tuple) Add(o Tuple) Tuple {
	return Tuple{t.X + o.X, t.Y + o.Y, t.Z + o.Z, t.W + o.W}
}

func (t Tuple) Sub(o Tuple) Tuple {
	return Tuple{t.X - o.X, t.Y - o.Y, t.Z - o.Z, t.W - o.W}
}

func (t Tuple) Neg() Tuple {
	return Tuple{-t.X, -t.Y, -t.Z, -t.W}
}

func (t Tuple) Mul(s float64) Tuple {
	return Tuple{t.X * s, t.Y * s, t.Z * s, t.W * s}
}

func (t Tuple) Div(s float64) Tuple {
	return Tuple{t.X / s, t.Y / s, t.Z / s, t.W / s}
}

// Magnitude is the euclidean length, W included.
func (t Tuple) Magnitude() float64 {
	return math.Sqrt(t.X*t.X + t.Y*t.Y + t.Z*t.Z + t.W*t.W)
}

// Normalize scales t to unit length. The zero tuple is returned unchanged.
func (t Tuple) Normalize() Tuple {
	m := t.Magnitude()
	if m == 0 {
		return t
	}
	return t.Div(m)
}

// Dot includes W so a point dotted with a vector still works out.
func (t Tuple) Dot(o Tuple) float64 {
	return t.X*o.X + t.Y*o.Y + t.Z*o.Z + t.W*o.W
}

// Cross is only meaningful for vectors; the result is always a vector.
func (t Tuple) Cross(o Tuple) Tuple {
	return Vector(
		t.Y*o.Z-t.Z*o.Y,
		t.Z*o.X-t.X*o.Z,
		t.X*o.Y-t.Y*o.X,
	)
}

// Reflect mirrors t around the normal n.
func (t Tuple) Reflect(n Tuple) Tuple {
	return t.Sub(n.Mul(2 * t.Dot(n)))
}

// Equal compares component-wise within Epsilon.
func (t Tuple) Equal(o Tuple) bool {
	return Close(t.X, o.X) && Close(t.Y, o.Y) && Close(t.Z, o.Z) && Close(t.W, o.W)
}

// Close reports whether a and b differ by less than Epsilon.
func Close(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) < Epsilon
}
