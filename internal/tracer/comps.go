package tracer

import (
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// Comps are the values World needs to shade one intersection.
type Comps struct {
	T      float64
	Object Shape

	Point      geom.Tuple
	OverPoint  geom.Tuple
	UnderPoint geom.Tuple
	EyeV       geom.Tuple
	NormalV    geom.Tuple
	ReflectV   geom.Tuple
	Inside     bool

	// N1 and N2 are the refractive indices on either side of the surface.
	N1, N2 float64
}

// PrepareComputations precomputes shading state for hit. xs is every
// intersection along r and is used to find the materials the ray passes
// between; it may be nil for opaque scenes.
func PrepareComputations(hit Intersection, r Ray, xs Intersections) Comps {
	comps := Comps{
		T:      hit.T,
		Object: hit.Object,
		Point:  r.Position(hit.T),
		EyeV:   r.Direction.Neg(),
	}
	comps.NormalV = NormalAt(hit.Object, comps.Point)
	if comps.NormalV.Dot(comps.EyeV) < 0 {
		comps.Inside = true
		comps.NormalV = comps.NormalV.Neg()
	}
	comps.ReflectV = r.Direction.Reflect(comps.NormalV)
	offset := comps.NormalV.Mul(geom.Epsilon)
	comps.OverPoint = comps.Point.Add(offset)
	comps.UnderPoint = comps.Point.Sub(offset)
	comps.N1, comps.N2 = refractiveIndices(hit, xs)
	return comps
}

// refractiveIndices walks xs tracking which objects the ray is inside.
func refractiveIndices(hit Intersection, xs Intersections) (n1, n2 float64) {
	n1, n2 = Vacuum, Vacuum
	if len(xs) == 0 {
		xs = Intersections{hit}
	}
	var containers []Shape
	for _, x := range xs {
		isHit := x == hit
		if isHit && len(containers) > 0 {
			n1 = containers[len(containers)-1].Material().RefractiveIndex
		}
		if i := indexOf(containers, x.Object); i >= 0 {
			containers = append(containers[:i], containers[i+1:]...)
		} else {
			containers = append(containers, x.Object)
		}
		if isHit {
			if len(containers) > 0 {
				n2 = containers[len(containers)-1].Material().RefractiveIndex
			}
			break
		}
	}
	return n1, n2
}

func indexOf(shapes []Shape, s Shape) int {
	for i, c := range shapes {
		if c == s {
			return i
		}
	}
	return -1
}

// Schlick approximates the fraction of light reflected at the surface.
func (c Comps) Schlick() float64 {
	cos := c.EyeV.Dot(c.NormalV)
	if c.N1 > c.N2 {
		n := c.N1 / c.N2
		sin2t := n * n * (1 - cos*cos)
		if sin2t > 1 {
			return 1
		}
		cos = math.Sqrt(1 - sin2t)
	}
	r0 := (c.N1 - c.N2) / (c.N1 + c.N2)
	r0 *= r0
	return r0 + (1-r0)*math.Pow(1-cos, 5)
}
