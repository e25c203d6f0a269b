package geo

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Contains reports whether p lies inside poly. Holes are excluded and points
// on the boundary count as inside.
func Contains(poly orb.Polygon, p orb.Point) bool {
	if len(poly) == 0 {
		return false
	}
	return planar.PolygonContains(poly, p)
}

// LineIntersectsPolygon reports whether any part of ls touches poly,
// including its boundary.
func LineIntersectsPolygon(ls orb.LineString, poly orb.Polygon) bool {
	if len(ls) == 0 || len(poly) == 0 || !ls.Bound().Intersects(poly.Bound()) {
		return false
	}
	for _, p := range ls {
		if Contains(poly, p) {
			return true
		}
	}
	for i := 0; i+1 < len(ls); i++ {
		if len(ringHits(ls[i], ls[i+1], poly)) > 0 {
			return true
		}
	}
	return false
}

// LineIntersectsAny reports whether ls touches any of the polygons.
func LineIntersectsAny(ls orb.LineString, polys ...orb.Polygon) bool {
	for _, poly := range polys {
		if LineIntersectsPolygon(ls, poly) {
			return true
		}
	}
	return false
}

// InsideParts returns the parts of ls that lie inside poly, in path order.
func InsideParts(ls orb.LineString, poly orb.Polygon) []orb.LineString {
	if len(ls) < 2 || len(poly) == 0 {
		return nil
	}
	var parts []orb.LineString
	var current orb.LineString
	flush := func() {
		if len(current) > 1 {
			parts = append(parts, current)
		}
		current = nil
	}
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		if a == b {
			continue
		}
		stops := append([]hit{{0, a}}, sortedHits(a, b, poly)...)
		stops = append(stops, hit{1, b})
		for k := 0; k+1 < len(stops); k++ {
			p, q := stops[k].p, stops[k+1].p
			if p == q {
				continue
			}
			mid := lerp(a, b, (stops[k].t+stops[k+1].t)/2)
			if !Contains(poly, mid) {
				flush()
				continue
			}
			if len(current) == 0 || current[len(current)-1] != p {
				flush()
				current = orb.LineString{p}
			}
			current = append(current, q)
		}
	}
	flush()
	return parts
}

// LongestPart returns the longest of parts by planar length. Ties keep the
// earliest part.
func LongestPart(parts []orb.LineString) (orb.LineString, bool) {
	if len(parts) == 0 {
		return nil, false
	}
	best, bestLen := parts[0], planar.Length(parts[0])
	for _, p := range parts[1:] {
		if l := planar.Length(p); l > bestLen {
			best, bestLen = p, l
		}
	}
	return best, true
}

// BoundaryCrossings returns the points where ls meets the boundary of poly,
// ordered along the path of ls.
func BoundaryCrossings(ls orb.LineString, poly orb.Polygon) []orb.Point {
	var out []orb.Point
	for i := 0; i+1 < len(ls); i++ {
		a, b := ls[i], ls[i+1]
		if a == b {
			continue
		}
		for _, h := range sortedHits(a, b, poly) {
			if len(out) == 0 || out[len(out)-1] != h.p {
				out = append(out, h.p)
			}
		}
	}
	return out
}

// LargestPolygon returns the member of mp with the largest planar area.
func LargestPolygon(mp orb.MultiPolygon) (orb.Polygon, bool) {
	if len(mp) == 0 {
		return nil, false
	}
	best, bestArea := mp[0], math.Abs(planar.Area(mp[0]))
	for _, p := range mp[1:] {
		if a := math.Abs(planar.Area(p)); a > bestArea {
			best, bestArea = p, a
		}
	}
	return best, true
}

// MapEdge returns the band of width 2*buffer around the boundary of b, as a
// polygon whose hole is b shrunk by buffer. When b is too small to shrink the
// band covers the whole padded box.
func MapEdge(b orb.Bound, buffer float64) orb.Polygon {
	outer := b.Pad(buffer)
	poly := orb.Polygon{outer.ToRing()}
	inner := orb.Bound{
		Min: orb.Point{b.Min[0] + buffer, b.Min[1] + buffer},
		Max: orb.Point{b.Max[0] - buffer, b.Max[1] - buffer},
	}
	if inner.Min[0] < inner.Max[0] && inner.Min[1] < inner.Max[1] {
		hole := inner.ToRing()
		hole.Reverse()
		poly = append(poly, hole)
	}
	return poly
}

type hit struct {
	t float64
	p orb.Point
}

// ringHits returns where segment ab meets any ring of poly, with the
// parameter along ab. Collinear overlaps contribute both overlap endpoints.
func ringHits(a, b orb.Point, poly orb.Polygon) []hit {
	var hits []hit
	sb := segmentBound(a, b)
	for _, ring := range poly {
		for j := 0; j+1 < len(ring); j++ {
			r, s := ring[j], ring[j+1]
			if r == s || !sb.Intersects(segmentBound(r, s)) {
				continue
			}
			kind, x, y := intersectSegments(a, b, r, s)
			switch kind {
			case segmentPoint:
				hits = append(hits, hitAt(x, a, b))
			case segmentOverlap:
				hits = append(hits, hitAt(x, a, b), hitAt(y, a, b))
			}
		}
	}
	return hits
}

func hitAt(p, a, b orb.Point) hit {
	switch p {
	case a:
		return hit{0, p}
	case b:
		return hit{1, p}
	}
	t, _ := project(p, a, b)
	return hit{t, p}
}

// sortedHits orders ringHits along ab and drops repeated points.
func sortedHits(a, b orb.Point, poly orb.Polygon) []hit {
	hits := ringHits(a, b, poly)
	slices.SortStableFunc(hits, func(x, y hit) int {
		switch {
		case x.t < y.t:
			return -1
		case x.t > y.t:
			return 1
		}
		return 0
	})
	return slices.CompactFunc(hits, func(x, y hit) bool { return x.p == y.p })
}

func lerp(a, b orb.Point, t float64) orb.Point {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}
