package geo

import (
	"math"

	"github.com/paulmach/orb"
)

type segmentKind int

const (
	segmentNone segmentKind = iota
	segmentPoint
	segmentOverlap
)

// lessPoint orders points lexicographically by X then Y. For collinear
// points this is also their order along the line.
func lessPoint(a, b orb.Point) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// intersectSegments intersects the closed segments ab and cd. The result does
// not depend on argument order or segment direction: both segments are put in
// canonical order first, so callers intersecting the same pair from either
// side get identical coordinates.
func intersectSegments(a, b, c, d orb.Point) (segmentKind, orb.Point, orb.Point) {
	if lessPoint(b, a) {
		a, b = b, a
	}
	if lessPoint(d, c) {
		c, d = d, c
	}
	if lessPoint(c, a) || (c == a && lessPoint(d, b)) {
		a, b, c, d = c, d, a, b
	}

	o1 := sign(orient(a, b, c))
	o2 := sign(orient(a, b, d))

	if o1 == 0 && o2 == 0 {
		lo, hi := a, b
		if lessPoint(lo, c) {
			lo = c
		}
		if lessPoint(d, hi) {
			hi = d
		}
		switch {
		case lessPoint(hi, lo):
			return segmentNone, orb.Point{}, orb.Point{}
		case lo == hi:
			return segmentPoint, lo, lo
		}
		return segmentOverlap, lo, hi
	}

	o3 := sign(orient(c, d, a))
	o4 := sign(orient(c, d, b))
	if o1*o2 > 0 || o3*o4 > 0 {
		return segmentNone, orb.Point{}, orb.Point{}
	}

	// An endpoint lying exactly on the other segment is returned verbatim.
	switch {
	case o1 == 0:
		return segmentPoint, c, c
	case o2 == 0:
		return segmentPoint, d, d
	case o3 == 0:
		return segmentPoint, a, a
	case o4 == 0:
		return segmentPoint, b, b
	}

	den := (b[0]-a[0])*(d[1]-c[1]) - (b[1]-a[1])*(d[0]-c[0])
	t := ((c[0]-a[0])*(d[1]-c[1]) - (c[1]-a[1])*(d[0]-c[0])) / den
	p := orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
	return segmentPoint, p, p
}

// project returns the parameter of p projected on segment ab, clamped to
// [0, 1], and the squared distance from p to that projection.
func project(p, a, b orb.Point) (float64, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return 0, sq(p[0]-a[0]) + sq(p[1]-a[1])
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	t = math.Max(0, math.Min(1, t))
	x, y := a[0]+t*dx, a[1]+t*dy
	return t, sq(p[0]-x) + sq(p[1]-y)
}

func sq(v float64) float64 { return v * v }

func segmentBound(a, b orb.Point) orb.Bound {
	return orb.Bound{
		Min: orb.Point{math.Min(a[0], b[0]), math.Min(a[1], b[1])},
		Max: orb.Point{math.Max(a[0], b[0]), math.Max(a[1], b[1])},
	}
}
