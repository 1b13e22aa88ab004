package tracer

import (
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// MaxDepth bounds reflection and refraction recursion.
const MaxDepth = 6

// World is a scene: objects and the lights that illuminate them.
type World struct {
	Objects []Shape
	Lights  []PointLight
}

func NewWorld() *World {
	return &World{}
}

// DefaultWorld is two concentric spheres lit from the upper left.
func DefaultWorld() *World {
	outer := NewSphere()
	outer.material.Color = geom.RGB(0.8, 1.0, 0.6)
	outer.material.Diffuse = 0.7
	outer.material.Specular = 0.2

	inner := NewSphere()
	inner.SetTransform(geom.Scaling(0.5, 0.5, 0.5))

	return &World{
		Objects: []Shape{outer, inner},
		Lights:  []PointLight{NewPointLight(geom.Point(-10, 10, -10), geom.White)},
	}
}

func (w *World) Add(shapes ...Shape) {
	w.Objects = append(w.Objects, shapes...)
}

func (w *World) AddLight(l PointLight) {
	w.Lights = append(w.Lights, l)
}

// Intersect returns every intersection of r with the world, sorted by T.
func (w *World) Intersect(r Ray) Intersections {
	var xs Intersections
	for _, obj := range w.Objects {
		xs = append(xs, Intersect(obj, r)...)
	}
	xs.sort()
	return xs
}

// ShadeHit returns the color at comps. remaining is the recursion budget
// left for reflected and refracted rays.
func (w *World) ShadeHit(comps Comps, remaining int) geom.Color {
	m := comps.Object.Material()
	surface := geom.Black
	for _, light := range w.Lights {
		shadowed := w.IsShadowed(comps.OverPoint, light)
		surface = surface.Add(m.Lighting(comps.Object, light, comps.OverPoint, comps.EyeV, comps.NormalV, shadowed))
	}
	reflected := w.ReflectedColor(comps, remaining)
	refracted := w.RefractedColor(comps, remaining)
	if m.Reflective > 0 && m.Transparency > 0 {
		reflectance := comps.Schlick()
		return surface.Add(reflected.Mul(reflectance)).Add(refracted.Mul(1 - reflectance))
	}
	return surface.Add(reflected).Add(refracted)
}

// ColorAt traces r into the world. Misses are black.
func (w *World) ColorAt(r Ray, remaining int) geom.Color {
	xs := w.Intersect(r)
	hit, ok := xs.Hit()
	if !ok {
		return geom.Black
	}
	return w.ShadeHit(PrepareComputations(hit, r, xs), remaining)
}

// IsShadowed reports whether an object sits between point and light.
func (w *World) IsShadowed(point geom.Tuple, light PointLight) bool {
	v := light.Position.Sub(point)
	distance := v.Magnitude()
	r := NewRay(point, v.Normalize())
	hit, ok := w.Intersect(r).Hit()
	return ok && hit.T < distance
}

func (w *World) ReflectedColor(comps Comps, remaining int) geom.Color {
	reflective := comps.Object.Material().Reflective
	if reflective == 0 || remaining <= 0 {
		return geom.Black
	}
	r := NewRay(comps.OverPoint, comps.ReflectV)
	return w.ColorAt(r, remaining-1).Mul(reflective)
}

// RefractedColor follows the ray through a transparent surface using
// Snell's law. Total internal reflection yields black.
func (w *World) RefractedColor(comps Comps, remaining int) geom.Color {
	transparency := comps.Object.Material().Transparency
	if transparency == 0 || remaining <= 0 {
		return geom.Black
	}
	nRatio := comps.N1 / comps.N2
	cosI := comps.EyeV.Dot(comps.NormalV)
	sin2T := nRatio * nRatio * (1 - cosI*cosI)
	if sin2T > 1 {
		return geom.Black
	}
	cosT := math.Sqrt(1 - sin2T)
	direction := comps.NormalV.Mul(nRatio*cosI - cosT).Sub(comps.EyeV.Mul(nRatio))
	r := NewRay(comps.UnderPoint, direction)
	return w.ColorAt(r, remaining-1).Mul(transparency)
}
