package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertTuple(t *testing.T, want, got Tuple) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %+v, got %+v", want, got)
}

func assertMatrix(t *testing.T, want, got Matrix) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want\n%v\ngot\n%v", want, got)
}

func TestPointsAndVectors(t *testing.T) {
	p := Point(4.3, -4.2, 3.1)
	assert.True(t, p.IsPoint())
	assert.False(t, p.IsVector())

	v := Vector(4.3, -4.2, 3.1)
	assert.True(t, v.IsVector())

	// point - point is a vector, point - vector a point
	assertTuple(t, Vector(-2, -4, -6), Point(3, 2, 1).Sub(Point(5, 6, 7)))
	assertTuple(t, Point(-2, -4, -6), Point(3, 2, 1).Sub(Vector(5, 6, 7)))
	assertTuple(t, Tuple{-1, 2, -3, 4}, Tuple{1, -2, 3, -4}.Neg())
	assertTuple(t, Tuple{3.5, -7, 10.5, -14}, Tuple{1, -2, 3, -4}.Mul(3.5))
	assertTuple(t, Tuple{0.5, -1, 1.5, -2}, Tuple{1, -2, 3, -4}.Div(2))
}

func TestVectorMath(t *testing.T) {
	assert.InDelta(t, math.Sqrt(14), Vector(1, 2, 3).Magnitude(), Epsilon)
	assert.InDelta(t, 1, Vector(1, 2, 3).Normalize().Magnitude(), Epsilon)
	assertTuple(t, Vector(0.26726, 0.53452, 0.80178), Vector(1, 2, 3).Normalize())
	assertTuple(t, Vector(0, 0, 0), Vector(0, 0, 0).Normalize())

	a, b := Vector(1, 2, 3), Vector(2, 3, 4)
	assert.InDelta(t, 20, a.Dot(b), Epsilon)
	assertTuple(t, Vector(-1, 2, -1), a.Cross(b))
	assertTuple(t, Vector(1, -2, 1), b.Cross(a))
}

func TestReflect(t *testing.T) {
	assertTuple(t, Vector(1, 1, 0), Vector(1, -1, 0).Reflect(Vector(0, 1, 0)))
	s := math.Sqrt2 / 2
	assertTuple(t, Vector(1, 0, 0), Vector(0, -1, 0).Reflect(Vector(s, s, 0)))
}

func TestColors(t *testing.T) {
	assert.True(t, RGB(1.6, 0.7, 1.0).Equal(RGB(0.9, 0.6, 0.75).Add(RGB(0.7, 0.1, 0.25))))
	assert.True(t, RGB(0.2, 0.5, 0.5).Equal(RGB(0.9, 0.6, 0.75).Sub(RGB(0.7, 0.1, 0.25))))
	assert.True(t, RGB(0.4, 0.6, 0.8).Equal(RGB(0.2, 0.3, 0.4).Mul(2)))
	assert.True(t, RGB(0.9, 0.2, 0.04).Equal(RGB(1, 0.2, 0.4).Blend(RGB(0.9, 1, 0.1))))
}

func TestMatrixMultiply(t *testing.T) {
	a := Matrix{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 8, 7, 6}, {5, 4, 3, 2}}
	b := Matrix{{-2, 1, 2, 3}, {3, 2, 1, -1}, {4, 3, 6, 5}, {1, 2, 7, 8}}
	want := Matrix{{20, 22, 50, 48}, {44, 54, 114, 108}, {40, 58, 110, 102}, {16, 26, 46, 42}}
	assertMatrix(t, want, a.Mul(b))
	assertMatrix(t, a, a.Mul(Identity()))

	m := Matrix{{1, 2, 3, 4}, {2, 4, 4, 2}, {8, 6, 4, 1}, {0, 0, 0, 1}}
	assertTuple(t, Tuple{18, 24, 33, 1}, m.MulTuple(Tuple{1, 2, 3, 1}))

	tr := Matrix{{0, 9, 3, 0}, {9, 8, 0, 8}, {1, 8, 5, 3}, {0, 0, 5, 8}}
	assertMatrix(t, Matrix{{0, 9, 1, 0}, {9, 8, 8, 0}, {3, 0, 5, 5}, {0, 8, 3, 8}}, tr.Transpose())
	assertMatrix(t, Identity(), Identity().Transpose())
}

func TestDeterminantAndCofactors(t *testing.T) {
	m := Matrix{{-2, -8, 3, 5}, {-3, 1, 7, 3}, {1, 2, -9, 6}, {-6, 7, 7, -9}}
	assert.InDelta(t, 690, m.Cofactor(0, 0), Epsilon)
	assert.InDelta(t, 447, m.Cofactor(0, 1), Epsilon)
	assert.InDelta(t, 210, m.Cofactor(0, 2), Epsilon)
	assert.InDelta(t, 51, m.Cofactor(0, 3), Epsilon)
	assert.InDelta(t, -4071, m.Determinant(), Epsilon)
	assert.True(t, m.Invertible())

	singular := Matrix{{-4, 2, -2, -3}, {9, 6, 2, 6}, {0, -5, 1, -5}, {0, 0, 0, 0}}
	assert.False(t, singular.Invertible())
	_, err := singular.Inverse()
	assert.ErrorIs(t, err, ErrSingular)
	assert.Panics(t, func() { MustInverse(singular) })
}

func TestInverse(t *testing.T) {
	a := Matrix{{-5, 2, 6, -8}, {1, -5, 1, 8}, {7, 7, -6, -7}, {1, -3, 7, 4}}
	inv, err := a.Inverse()
	require.NoError(t, err)
	assert.InDelta(t, 532, a.Determinant(), Epsilon)
	assert.InDelta(t, -160.0/532, inv[3][2], Epsilon)
	assert.InDelta(t, 105.0/532, inv[2][3], Epsilon)
	want := Matrix{
		{0.21805, 0.45113, 0.24060, -0.04511},
		{-0.80827, -1.45677, -0.44361, 0.52068},
		{-0.07895, -0.22368, -0.05263, 0.19737},
		{-0.52256, -0.81391, -0.30075, 0.30639},
	}
	assertMatrix(t, want, inv)

	b := Matrix{{8, 2, 2, 2}, {3, -1, 7, 0}, {7, 0, 5, 4}, {6, -2, 0, 5}}
	c := a.Mul(b)
	assertMatrix(t, a, c.Mul(MustInverse(b)))
}

func TestTransformations(t *testing.T) {
	p := Point(-3, 4, 5)
	assertTuple(t, Point(2, 1, 7), Translation(5, -3, 2).MulTuple(p))
	assertTuple(t, Point(-8, 7, 3), MustInverse(Translation(5, -3, 2)).MulTuple(p))
	v := Vector(-3, 4, 5)
	assertTuple(t, v, Translation(5, -3, 2).MulTuple(v))
	assertTuple(t, Vector(-8, 18, 32), Scaling(2, 3, 4).MulTuple(Vector(-4, 6, 8)))
	assertTuple(t, Point(-2, 3, 4), Scaling(-1, 1, 1).MulTuple(Point(2, 3, 4)))

	s := math.Sqrt2 / 2
	assertTuple(t, Point(0, s, s), RotationX(math.Pi/4).MulTuple(Point(0, 1, 0)))
	assertTuple(t, Point(0, 0, 1), RotationX(math.Pi/2).MulTuple(Point(0, 1, 0)))
	assertTuple(t, Point(0, s, -s), MustInverse(RotationX(math.Pi/4)).MulTuple(Point(0, 1, 0)))
	assertTuple(t, Point(s, 0, s), RotationY(math.Pi/4).MulTuple(Point(0, 0, 1)))
	assertTuple(t, Point(-1, 0, 0), RotationZ(math.Pi/2).MulTuple(Point(0, 1, 0)))

	assertTuple(t, Point(5, 3, 4), Shearing(1, 0, 0, 0, 0, 0).MulTuple(Point(2, 3, 4)))
	assertTuple(t, Point(2, 3, 7), Shearing(0, 0, 0, 0, 0, 1).MulTuple(Point(2, 3, 4)))

	chained := Chain(RotationX(math.Pi/2), Scaling(5, 5, 5), Translation(10, 5, 7))
	assertTuple(t, Point(15, 0, 7), chained.MulTuple(Point(1, 0, 1)))
}

func TestViewTransform(t *testing.T) {
	up := Vector(0, 1, 0)
	assertMatrix(t, Identity(), ViewTransform(Point(0, 0, 0), Point(0, 0, -1), up))
	assertMatrix(t, Scaling(-1, 1, -1), ViewTransform(Point(0, 0, 0), Point(0, 0, 1), up))
	assertMatrix(t, Translation(0, 0, -8), ViewTransform(Point(0, 0, 8), Point(0, 0, 0), up))

	got := ViewTransform(Point(1, 3, 2), Point(4, -2, 8), Vector(1, 1, 0))
	want := Matrix{
		{-0.50709, 0.50709, 0.67612, -2.36643},
		{0.76772, 0.60609, 0.12122, -2.82843},
		{-0.35857, 0.59761, -0.71714, 0},
		{0, 0, 0, 1},
	}
	assertMatrix(t, want, got)
}
