package tracer

import (
	"math"

	"github.com/kingrea/rayforge/internal/geom"
)

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max geom.Tuple
}

// EmptyBounds contains nothing; adding a point makes it that point.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{Min: geom.Point(inf, inf, inf), Max: geom.Point(-inf, -inf, -inf)}
}

// InfiniteBounds contains everything.
func InfiniteBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{Min: geom.Point(-inf, -inf, -inf), Max: geom.Point(inf, inf, inf)}
}

func NewBounds(min, max geom.Tuple) Bounds {
	return Bounds{Min: min, Max: max}
}

// Empty reports whether b has never had a point added.
func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

func (b Bounds) infinite() bool {
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		if math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

// AddPoint grows b to contain p.
func (b Bounds) AddPoint(p geom.Tuple) Bounds {
	return Bounds{
		Min: geom.Point(math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)),
		Max: geom.Point(math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)),
	}
}

// Union returns the smallest box containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.Empty() {
		return b
	}
	return b.AddPoint(o.Min).AddPoint(o.Max)
}

// Transform returns the box around the eight transformed corners of b.
// Boxes with an infinite extent stay infinite.
func (b Bounds) Transform(m geom.Matrix) Bounds {
	if b.Empty() {
		return b
	}
	if b.infinite() {
		return InfiniteBounds()
	}
	out := EmptyBounds()
	for _, x := range []float64{b.Min.X, b.Max.X} {
		for _, y := range []float64{b.Min.Y, b.Max.Y} {
			for _, z := range []float64{b.Min.Z, b.Max.Z} {
				out = out.AddPoint(m.MulTuple(geom.Point(x, y, z)))
			}
		}
	}
	return out
}

// Intersects reports whether r passes through the box.
func (b Bounds) Intersects(r Ray) bool {
	if b.Empty() {
		return false
	}
	xmin, xmax := checkAxis(r.Origin.X, r.Direction.X, b.Min.X, b.Max.X)
	ymin, ymax := checkAxis(r.Origin.Y, r.Direction.Y, b.Min.Y, b.Max.Y)
	zmin, zmax := checkAxis(r.Origin.Z, r.Direction.Z, b.Min.Z, b.Max.Z)
	tmin := math.Max(xmin, math.Max(ymin, zmin))
	tmax := math.Min(xmax, math.Min(ymax, zmax))
	return tmin <= tmax && tmax >= 0
}

// checkAxis returns where a ray enters and leaves the slab [min, max].
func checkAxis(origin, direction, min, max float64) (float64, float64) {
	tminNumerator := min - origin
	tmaxNumerator := max - origin
	var tmin, tmax float64
	if math.Abs(direction) >= geom.Epsilon {
		tmin = tminNumerator / direction
		tmax = tmaxNumerator / direction
	} else {
		tmin = infTimes(tminNumerator)
		tmax = infTimes(tmaxNumerator)
	}
	if tmin > tmax {
		tmin, tmax = tmax, tmin
	}
	return tmin, tmax
}

// infTimes is v × ∞ with 0 × ∞ treated as 0 rather than NaN.
func infTimes(v float64) float64 {
	switch {
	case v > 0:
		return math.Inf(1)
	case v < 0:
		return math.Inf(-1)
	default:
		return 0
	}
}
