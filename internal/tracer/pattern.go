package tracer

import (
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// Pattern colors a surface by position. At receives a point in pattern
// space; PatternAtShape does the conversion from world space.
type Pattern interface {
	At(p geom.Tuple) geom.Color
	Transform() geom.Matrix
	SetTransform(m geom.Matrix)
	inverse() geom.Matrix
}

type patternBase struct {
	transform geom.Matrix
	inv       geom.Matrix
}

func newPatternBase() patternBase {
	return patternBase{transform: geom.Identity(), inv: geom.Identity()}
}

func (p *patternBase) Transform() geom.Matrix { return p.transform }

func (p *patternBase) SetTransform(m geom.Matrix) {
	p.transform = m
	p.inv = geom.MustInverse(m)
}

func (p *patternBase) inverse() geom.Matrix { return p.inv }

// PatternAtShape evaluates pat at a world point on obj. A nil obj skips the
// object transform.
func PatternAtShape(pat Pattern, obj Shape, worldPoint geom.Tuple) geom.Color {
	p := worldPoint
	if obj != nil {
		p = WorldToObject(obj, worldPoint)
	}
	return pat.At(pat.inverse().MulTuple(p))
}

// Stripe alternates A and B along x.
type Stripe struct {
	patternBase
	A, B geom.Color
}

func NewStripe(a, b geom.Color) *Stripe {
	return &Stripe{patternBase: newPatternBase(), A: a, B: b}
}

func (s *Stripe) At(p geom.Tuple) geom.Color {
	if floorMod2(p.X) == 0 {
		return s.A
	}
	return s.B
}

// Gradient blends linearly from A to B across each unit of x.
type Gradient struct {
	patternBase
	A, B geom.Color
}

func NewGradient(a, b geom.Color) *Gradient {
	return &Gradient{patternBase: newPatternBase(), A: a, B: b}
}

func (g *Gradient) At(p geom.Tuple) geom.Color {
	fraction := p.X - math.Floor(p.X)
	return g.A.Add(g.B.Sub(g.A).Mul(fraction))
}

// Ring alternates A and B in concentric rings around the y axis.
type Ring struct {
	patternBase
	A, B geom.Color
}

func NewRing(a, b geom.Color) *Ring {
	return &Ring{patternBase: newPatternBase(), A: a, B: b}
}

func (r *Ring) At(p geom.Tuple) geom.Color {
	if floorMod2(math.Sqrt(p.X*p.X+p.Z*p.Z)) == 0 {
		return r.A
	}
	return r.B
}

// Checkers alternates A and B in unit cubes.
type Checkers struct {
	patternBase
	A, B geom.Color
}

func NewCheckers(a, b geom.Color) *Checkers {
	return &Checkers{patternBase: newPatternBase(), A: a, B: b}
}

func (c *Checkers) At(p geom.Tuple) geom.Color {
	sum := math.Floor(p.X) + math.Floor(p.Y) + math.Floor(p.Z)
	if floorMod2(sum) == 0 {
		return c.A
	}
	return c.B
}

// floorMod2 returns floor(v) mod 2 as 0 or 1, also for negative v.
func floorMod2(v float64) int {
	m := int(math.Floor(v)) % 2
	if m < 0 {
		m += 2
	}
	return m
}
