package tracer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kingrea/rayforge/internal/geom"
)

func TestDefaultMaterial(t *testing.T) {
	m := DefaultMaterial()
	assert.Equal(t, geom.White, m.Color)
	assert.Equal(t, 0.1, m.Ambient)
	assert.Equal(t, 0.9, m.Diffuse)
	assert.Equal(t, 0.9, m.Specular)
	assert.Equal(t, 200.0, m.Shininess)
	assert.Equal(t, 0.0, m.Reflective)
	assert.Equal(t, 0.0, m.Transparency)
	assert.Equal(t, 1.0, m.RefractiveIndex)
	assert.Equal(t, m, *NewSphere().Material())
}

func TestLighting(t *testing.T) {
	m := DefaultMaterial()
	position := geom.Point(0, 0, 0)
	normal := geom.Vector(0, 0, -1)
	obj := NewSphere()

	cases := []struct {
		name     string
		eye      geom.Tuple
		light    geom.Tuple
		shadowed bool
		want     float64
	}{
		{"eye between light and surface", geom.Vector(0, 0, -1), geom.Point(0, 0, -10), false, 1.9},
		{"eye offset 45 degrees", geom.Vector(0, sqrt2over2, -sqrt2over2), geom.Point(0, 0, -10), false, 1.0},
		{"light offset 45 degrees", geom.Vector(0, 0, -1), geom.Point(0, 10, -10), false, 0.7364},
		{"eye in reflection path", geom.Vector(0, -sqrt2over2, -sqrt2over2), geom.Point(0, 10, -10), false, 1.6364},
		{"light behind surface", geom.Vector(0, 0, -1), geom.Point(0, 0, 10), false, 0.1},
		{"surface in shadow", geom.Vector(0, 0, -1), geom.Point(0, 0, -10), true, 0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			light := NewPointLight(tc.light, geom.White)
			got := m.Lighting(obj, light, position, tc.eye, normal, tc.shadowed)
			assertColor(t, geom.RGB(tc.want, tc.want, tc.want), got, 1e-4)
		})
	}
}

func TestLightingWithPattern(t *testing.T) {
	m := DefaultMaterial()
	m.Pattern = NewStripe(geom.White, geom.Black)
	m.Ambient, m.Diffuse, m.Specular = 1, 0, 0
	eye := geom.Vector(0, 0, -1)
	normal := geom.Vector(0, 0, -1)
	light := NewPointLight(geom.Point(0, 0, -10), geom.White)
	obj := NewSphere()

	assert.Equal(t, geom.White, m.Lighting(obj, light, geom.Point(0.9, 0, 0), eye, normal, false))
	assert.Equal(t, geom.Black, m.Lighting(obj, light, geom.Point(1.1, 0, 0), eye, normal, false))
}

func TestStripePattern(t *testing.T) {
	p := NewStripe(geom.White, geom.Black)
	for _, tc := range []struct {
		point geom.Tuple
		want  geom.Color
	}{
		{geom.Point(0, 1, 0), geom.White},
		{geom.Point(0, 0, 2), geom.White},
		{geom.Point(0.9, 0, 0), geom.White},
		{geom.Point(1, 0, 0), geom.Black},
		{geom.Point(-0.1, 0, 0), geom.Black},
		{geom.Point(-1, 0, 0), geom.Black},
		{geom.Point(-1.1, 0, 0), geom.White},
	} {
		assert.Equal(t, tc.want, p.At(tc.point), "%+v", tc.point)
	}
}

func TestPatternTransforms(t *testing.T) {
	obj := NewSphere()
	obj.SetTransform(geom.Scaling(2, 2, 2))
	p := NewStripe(geom.White, geom.Black)
	assert.Equal(t, geom.White, PatternAtShape(p, obj, geom.Point(1.5, 0, 0)))

	p.SetTransform(geom.Scaling(2, 2, 2))
	assert.Equal(t, geom.White, PatternAtShape(p, NewSphere(), geom.Point(1.5, 0, 0)))

	p.SetTransform(geom.Translation(0.5, 0, 0))
	assert.Equal(t, geom.White, PatternAtShape(p, obj, geom.Point(2.5, 0, 0)))

	pat := newPointPattern()
	pat.SetTransform(geom.Translation(0.5, 1, 1.5))
	assertColor(t, geom.RGB(0.75, 0.5, 0.25), PatternAtShape(pat, obj, geom.Point(2.5, 3, 3.5)), 1e-9)
	assertColor(t, geom.RGB(2, 3, 4), PatternAtShape(newPointPattern(), nil, geom.Point(2, 3, 4)), 1e-9)
}

func TestGradientRingCheckers(t *testing.T) {
	g := NewGradient(geom.White, geom.Black)
	assertColor(t, geom.White, g.At(geom.Point(0, 0, 0)), 1e-9)
	assertColor(t, geom.RGB(0.75, 0.75, 0.75), g.At(geom.Point(0.25, 0, 0)), 1e-9)
	assertColor(t, geom.RGB(0.25, 0.25, 0.25), g.At(geom.Point(0.75, 0, 0)), 1e-9)

	r := NewRing(geom.White, geom.Black)
	assert.Equal(t, geom.White, r.At(geom.Point(0, 0, 0)))
	assert.Equal(t, geom.Black, r.At(geom.Point(1, 0, 0)))
	assert.Equal(t, geom.Black, r.At(geom.Point(0, 0, 1)))
	assert.Equal(t, geom.Black, r.At(geom.Point(0.708, 0, 0.708)))

	c := NewCheckers(geom.White, geom.Black)
	assert.Equal(t, geom.White, c.At(geom.Point(0.99, 0, 0)))
	assert.Equal(t, geom.Black, c.At(geom.Point(1.01, 0, 0)))
	assert.Equal(t, geom.Black, c.At(geom.Point(0, 1.01, 0)))
	assert.Equal(t, geom.Black, c.At(geom.Point(0, 0, 1.01)))
	assert.Equal(t, geom.White, c.At(geom.Point(-0.5, -0.5, 0.5)))
}
