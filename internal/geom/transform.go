package geom

import "math"

func Translation(x, y, z float64) Matrix {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = x, y, z
	return m
}

func Scaling(x, y, z float64) Matrix {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = x, y, z
	return m
}

// RotationX rotates r radians around the x axis (left-handed).
func RotationX(r float64) Matrix {
	sin, cos := math.Sincos(r)
	m := Identity()
	m[1][1], m[1][2] = cos, -sin
	m[2][1], m[2][2] = sin, cos
	return m
}

func RotationY(r float64) Matrix {
	sin, cos := math.Sincos(r)
	m := Identity()
	m[0][0], m[0][2] = cos, sin
	m[2][0], m[2][2] = -sin, cos
	return m
}

func RotationZ(r float64) Matrix {
	sin, cos := math.Sincos(r)
	m := Identity()
	m[0][0], m[0][1] = cos, -sin
	m[1][0], m[1][1] = sin, cos
	return m
}

// Shearing moves each component in proportion to the other two; xy is
// "x in proportion to y" and so on.
func Shearing(xy, xz, yx, yz, zx, zy float64) Matrix {
	m := Identity()
	m[0][1], m[0][2] = xy, xz
	m[1][0], m[1][2] = yx, yz
	m[2][0], m[2][1] = zx, zy
	return m
}

// Chain composes transforms in application order: Chain(a, b, c) applies a
// first and c last, i.e. it returns c × b × a.
func Chain(ms ...Matrix) Matrix {
	out := Identity()
	for _, m := range ms {
		out = m.Mul(out)
	}
	return out
}

// ViewTransform orients the world relative to an eye at from looking at to.
func ViewTransform(from, to, up Tuple) Matrix {
	forward := to.Sub(from).Normalize()
	left := forward.Cross(up.Normalize())
	trueUp := left.Cross(forward)
	orientation := Matrix{
		{left.X, left.Y, left.Z, 0},
		{trueUp.X, trueUp.Y, trueUp.Z, 0},
		{-forward.X, -forward.Y, -forward.Z, 0},
		{0, 0, 0, 1},
	}
	return orientation.Mul(Translation(-from.X, -from.Y, -from.Z))
}
