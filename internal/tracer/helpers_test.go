package tracer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kingrea/rayforge/internal/geom"
)

var (
	sqrt2over2 = math.Sqrt2 / 2
	sqrt3over3 = math.Sqrt(3) / 3
)

func assertTuple(t *testing.T, want, got geom.Tuple, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %+v, got %+v %v", want, got, msgAndArgs)
}

func assertColor(t *testing.T, want, got geom.Color, delta float64) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, delta, "red")
	assert.InDelta(t, want.G, got.G, delta, "green")
	assert.InDelta(t, want.B, got.B, delta, "blue")
}

func ts(xs Intersections) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x.T
	}
	return out
}

func assertTs(t *testing.T, want []float64, xs Intersections) {
	t.Helper()
	got := ts(xs)
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "t[%d]", i)
	}
}

// spyShape records the last local ray it was asked to intersect.
type spyShape struct {
	shapeBase
	saved *Ray
}

func newSpy() *spyShape {
	return &spyShape{shapeBase: newShapeBase()}
}

func (p *spyShape) localIntersect(r Ray) Intersections {
	p.saved = &r
	return nil
}

func (p *spyShape) localNormalAt(pt geom.Tuple) geom.Tuple {
	return geom.Vector(pt.X, pt.Y, pt.Z)
}

func (p *spyShape) Bounds() Bounds {
	return NewBounds(geom.Point(-1, -1, -1), geom.Point(1, 1, 1))
}

// pointPattern colors a point with its own coordinates.
type pointPattern struct {
	patternBase
}

func newPointPattern() *pointPattern {
	return &pointPattern{patternBase: newPatternBase()}
}

func (p *pointPattern) At(pt geom.Tuple) geom.Color {
	return geom.RGB(pt.X, pt.Y, pt.Z)
}
