// Package scene builds the demo scene rendered by the canvas command.
package scene

import (
	"fmt"
	"math"

	"github.com/kingrea/rayforge/internal/geom"
	"github.com/kingrea/rayforge/internal/objfile"
	"github.com/kingrea/rayforge/internal/tracer"
)

// Options size the camera and optionally add an OBJ model.
type Options struct {
	Width  int
	Height int
	// FieldOfView is in degrees.
	FieldOfView float64
	Workers     int
	// Model is an optional OBJ file placed on the floor right of center.
	Model string
}

// DefaultOptions renders a small preview.
func DefaultOptions() Options {
	return Options{Width: 400, Height: 200, FieldOfView: 60}
}

// Validate rejects sizes the camera cannot use.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("scene: size must be positive, got %dx%d", o.Width, o.Height)
	}
	if o.FieldOfView <= 0 || o.FieldOfView >= 180 {
		return fmt.Errorf("scene: field of view must be between 0 and 180 degrees, got %g", o.FieldOfView)
	}
	return nil
}

// Build returns the world and a camera looking at it.
func Build(opts Options) (*tracer.World, *tracer.Camera, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	w := tracer.NewWorld()
	w.AddLight(tracer.NewPointLight(geom.Point(-10, 10, -10), geom.White))
	w.Add(floor(), backdrop())
	w.Add(spheres()...)
	w.Add(glassBall(), crate(), pillar())

	if opts.Model != "" {
		model, err := objfile.Load(opts.Model)
		if err != nil {
			return nil, nil, err
		}
		w.Add(placeModel(model))
	}

	cam := tracer.NewCamera(opts.Width, opts.Height, opts.FieldOfView*math.Pi/180)
	cam.Workers = opts.Workers
	cam.SetTransform(geom.ViewTransform(geom.Point(0, 1.5, -5), geom.Point(0, 1, 0), geom.Vector(0, 1, 0)))
	return w, cam, nil
}

func floor() tracer.Shape {
	p := tracer.NewPlane()
	checkers := tracer.NewCheckers(geom.RGB(0.9, 0.9, 0.9), geom.RGB(0.35, 0.35, 0.4))
	checkers.SetTransform(geom.RotationY(math.Pi / 6))
	m := p.Material()
	m.Pattern = checkers
	m.Specular = 0
	m.Reflective = 0.15
	return p
}

func backdrop() tracer.Shape {
	p := tracer.NewPlane()
	p.SetTransform(geom.Translation(0, 0, 10).Mul(geom.RotationX(math.Pi / 2)))
	rings := tracer.NewRing(geom.RGB(0.55, 0.65, 0.8), geom.RGB(0.45, 0.55, 0.7))
	rings.SetTransform(geom.Scaling(0.5, 0.5, 0.5))
	m := p.Material()
	m.Pattern = rings
	m.Specular = 0
	return p
}

func spheres() []tracer.Shape {
	middle := tracer.NewSphere()
	middle.SetTransform(geom.Translation(-0.5, 1, 0.5))
	stripes := tracer.NewStripe(geom.RGB(0.1, 1, 0.5), geom.RGB(0.1, 0.6, 0.3))
	stripes.SetTransform(geom.Chain(geom.Scaling(0.2, 0.2, 0.2), geom.RotationZ(math.Pi/4)))
	mm := middle.Material()
	mm.Pattern = stripes
	mm.Diffuse = 0.7
	mm.Specular = 0.3

	right := tracer.NewSphere()
	right.SetTransform(geom.Translation(1.5, 0.5, -0.5).Mul(geom.Scaling(0.5, 0.5, 0.5)))
	rm := right.Material()
	rm.Color = geom.RGB(0.5, 1, 0.1)
	rm.Diffuse = 0.7
	rm.Specular = 0.3
	rm.Reflective = 0.2

	left := tracer.NewSphere()
	left.SetTransform(geom.Translation(-1.5, 0.33, -0.75).Mul(geom.Scaling(0.33, 0.33, 0.33)))
	gradient := tracer.NewGradient(geom.RGB(1, 0.8, 0.1), geom.RGB(1, 0.2, 0.1))
	gradient.SetTransform(geom.Translation(-1, 0, 0).Mul(geom.Scaling(2, 1, 1)))
	lm := left.Material()
	lm.Pattern = gradient
	lm.Diffuse = 0.7
	lm.Specular = 0.3

	return []tracer.Shape{middle, right, left}
}

func glassBall() tracer.Shape {
	s := tracer.NewGlassSphere()
	s.SetTransform(geom.Translation(0.4, 0.35, -1.6).Mul(geom.Scaling(0.35, 0.35, 0.35)))
	m := s.Material()
	m.Color = geom.RGB(0.05, 0.05, 0.08)
	m.Diffuse = 0.1
	m.Ambient = 0.05
	m.Specular = 1
	m.Shininess = 300
	m.Reflective = 0.9
	return s
}

func crate() tracer.Shape {
	c := tracer.NewCube()
	c.SetTransform(geom.Chain(
		geom.Scaling(0.3, 0.3, 0.3),
		geom.RotationY(math.Pi/5),
		geom.Translation(-2.3, 0.3, 1.2),
	))
	m := c.Material()
	m.Color = geom.RGB(0.8, 0.5, 0.3)
	m.Diffuse = 0.8
	m.Specular = 0.1
	return c
}

func pillar() tracer.Shape {
	c := tracer.NewCylinder()
	c.Minimum, c.Maximum, c.Closed = 0, 1, true
	c.SetTransform(geom.Translation(2.4, 0, 1.5).Mul(geom.Scaling(0.4, 1.6, 0.4)))
	m := c.Material()
	m.Color = geom.RGB(0.7, 0.7, 0.75)
	m.Reflective = 0.1
	return c
}

// placeModel scales the model to fit a unit box and sets it on the floor.
func placeModel(model *objfile.Model) tracer.Shape {
	g := model.ToGroup()
	b := g.Bounds()
	if b.Empty() {
		return g
	}
	size := math.Max(b.Max.X-b.Min.X, math.Max(b.Max.Y-b.Min.Y, b.Max.Z-b.Min.Z))
	scale := 1.0
	if size > 0 {
		scale = 1 / size
	}
	cx := (b.Min.X + b.Max.X) / 2
	cz := (b.Min.Z + b.Max.Z) / 2
	g.SetTransform(geom.Chain(
		geom.Translation(-cx, -b.Min.Y, -cz),
		geom.Scaling(scale, scale, scale),
		geom.Translation(1, 0, 1.5),
	))
	m := tracer.DefaultMaterial()
	m.Color = geom.RGB(0.9, 0.75, 0.5)
	m.Specular = 0.4
	g.SetMaterial(m)
	return g
}
