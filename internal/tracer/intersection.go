package tracer

import "sort"

// Intersection records where a ray met an object.
type Intersection struct {
	T      float64
	Object Shape
}

// Intersections is kept sorted by T once built by NewIntersections or
// World.Intersect.
type Intersections []Intersection

// NewIntersections sorts xs by distance.
func NewIntersections(xs ...Intersection) Intersections {
	out := Intersections(xs)
	out.sort()
	return out
}

func (xs Intersections) sort() {
	sort.SliceStable(xs, func(i, j int) bool { return xs[i].T < xs[j].T })
}

// Hit returns the visible intersection: the lowest non-negative T.
func (xs Intersections) Hit() (Intersection, bool) {
	best := -1
	for i, x := range xs {
		if x.T < 0 {
			continue
		}
		if best < 0 || x.T < xs[best].T {
			best = i
		}
	}
	if best < 0 {
		return Intersection{}, false
	}
	return xs[best], true
}
