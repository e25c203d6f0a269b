package geo

import (
	"errors"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
)

// ErrDegenerateIntersection is returned by [Intersection.Representatives]
// when a composite intersection contains no point components to split at.
var ErrDegenerateIntersection = errors.New("intersection has no point components")

// Kind tags the shape of an [Intersection].
type Kind int

const (
	KindEmpty Kind = iota
	KindPoint
	KindMultiPoint
	KindLine
	KindMultiLine
	KindMixed
)

var kindNames = map[Kind]string{
	KindEmpty:      "empty",
	KindPoint:      "point",
	KindMultiPoint: "multipoint",
	KindLine:       "line",
	KindMultiLine:  "multiline",
	KindMixed:      "mixed",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Intersection is the shared geometry of two polylines. Points holds isolated
// shared points and Lines holds collinear overlaps; Kind says which of the two
// are populated. Points and lines are in canonical order.
type Intersection struct {
	Kind   Kind
	Points []orb.Point
	Lines  []orb.LineString
}

// IsEmpty reports whether the polylines do not meet.
func (x Intersection) IsEmpty() bool { return x.Kind == KindEmpty }

// Geometry returns the intersection as an orb geometry.
func (x Intersection) Geometry() orb.Geometry {
	switch x.Kind {
	case KindEmpty:
		return orb.Collection{}
	case KindPoint:
		return x.Points[0]
	case KindMultiPoint:
		return orb.MultiPoint(x.Points)
	case KindLine:
		return x.Lines[0]
	case KindMultiLine:
		return orb.MultiLineString(x.Lines)
	}
	c := orb.Collection{}
	for _, p := range x.Points {
		c = append(c, p)
	}
	for _, l := range x.Lines {
		c = append(c, l)
	}
	return c
}

// WKT renders the intersection geometry as well-known text.
func (x Intersection) WKT() string {
	return wkt.MarshalString(x.Geometry())
}

// Representatives reduces the intersection to split points:
//
//   - point and multipoint keep every point
//   - line keeps the midpoint along the overlap
//   - multiline keeps the midpoint of each overlap
//   - mixed keeps its point components
//
// A mixed or unknown kind without point components returns
// [ErrDegenerateIntersection].
func (x Intersection) Representatives() ([]orb.Point, error) {
	switch x.Kind {
	case KindEmpty:
		return nil, nil
	case KindPoint, KindMultiPoint:
		return slices.Clone(x.Points), nil
	case KindLine, KindMultiLine:
		out := make([]orb.Point, 0, len(x.Lines))
		for _, l := range x.Lines {
			out = append(out, Midpoint(l))
		}
		return out, nil
	case KindMixed:
		if len(x.Points) > 0 {
			return slices.Clone(x.Points), nil
		}
	}
	return nil, ErrDegenerateIntersection
}

// IntersectLines returns the intersection of two polylines.
func IntersectLines(a, b orb.LineString) Intersection {
	if len(a) < 2 || len(b) < 2 || !a.Bound().Intersects(b.Bound()) {
		return Intersection{Kind: KindEmpty}
	}

	var points []orb.Point
	var overlaps [][2]orb.Point
	for i := 0; i+1 < len(a); i++ {
		p, q := a[i], a[i+1]
		if p == q {
			continue
		}
		pb := segmentBound(p, q)
		for j := 0; j+1 < len(b); j++ {
			r, s := b[j], b[j+1]
			if r == s || !pb.Intersects(segmentBound(r, s)) {
				continue
			}
			switch kind, x, y := intersectSegments(p, q, r, s); kind {
			case segmentPoint:
				points = append(points, x)
			case segmentOverlap:
				overlaps = append(overlaps, [2]orb.Point{x, y})
			}
		}
	}

	lines := chainOverlaps(overlaps)
	points = uniquePoints(points)
	if len(lines) > 0 {
		points = slices.DeleteFunc(points, func(p orb.Point) bool {
			return onAnyLine(p, lines)
		})
	}

	x := Intersection{Points: points, Lines: lines}
	switch {
	case len(points) == 0 && len(lines) == 0:
		x.Kind = KindEmpty
	case len(lines) == 0 && len(points) == 1:
		x.Kind = KindPoint
	case len(lines) == 0:
		x.Kind = KindMultiPoint
	case len(points) == 0 && len(lines) == 1:
		x.Kind = KindLine
	case len(points) == 0:
		x.Kind = KindMultiLine
	default:
		x.Kind = KindMixed
	}
	return x
}

// Midpoint returns the point halfway along a polyline.
func Midpoint(ls orb.LineString) orb.Point {
	return PointAlong(ls, planar.Length(ls)/2)
}

// PointAlong returns the point at the given distance along ls, measured from
// its first vertex. Distances past either end clamp to the endpoints.
func PointAlong(ls orb.LineString, dist float64) orb.Point {
	if len(ls) == 0 {
		return orb.Point{}
	}
	if dist <= 0 {
		return ls[0]
	}
	for i := 0; i+1 < len(ls); i++ {
		d := planar.Distance(ls[i], ls[i+1])
		if dist <= d && d > 0 {
			t := dist / d
			return orb.Point{
				ls[i][0] + t*(ls[i+1][0]-ls[i][0]),
				ls[i][1] + t*(ls[i+1][1]-ls[i][1]),
			}
		}
		dist -= d
	}
	return ls[len(ls)-1]
}

// chainOverlaps joins collinear overlap segments that share endpoints into
// polylines. Each chain is oriented so its first point sorts before its last,
// which makes the result independent of which polyline drove the search.
func chainOverlaps(segs [][2]orb.Point) []orb.LineString {
	if len(segs) == 0 {
		return nil
	}
	for i, s := range segs {
		if lessPoint(s[1], s[0]) {
			segs[i] = [2]orb.Point{s[1], s[0]}
		}
	}
	slices.SortFunc(segs, func(x, y [2]orb.Point) int {
		if c := comparePoints(x[0], y[0]); c != 0 {
			return c
		}
		return comparePoints(x[1], y[1])
	})
	segs = slices.Compact(segs)

	used := make([]bool, len(segs))
	var chains []orb.LineString
	for i := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		chain := orb.LineString{segs[i][0], segs[i][1]}
		for extended := true; extended; {
			extended = false
			for j := range segs {
				if used[j] {
					continue
				}
				head, tail := chain[0], chain[len(chain)-1]
				switch {
				case segs[j][0] == tail:
					chain = append(chain, segs[j][1])
				case segs[j][1] == tail:
					chain = append(chain, segs[j][0])
				case segs[j][1] == head:
					chain = append(orb.LineString{segs[j][0]}, chain...)
				case segs[j][0] == head:
					chain = append(orb.LineString{segs[j][1]}, chain...)
				default:
					continue
				}
				used[j] = true
				extended = true
			}
		}
		if lessPoint(chain[len(chain)-1], chain[0]) {
			chain.Reverse()
		}
		chains = append(chains, chain)
	}
	slices.SortFunc(chains, func(x, y orb.LineString) int {
		return comparePoints(x[0], y[0])
	})
	return chains
}

func comparePoints(a, b orb.Point) int {
	switch {
	case lessPoint(a, b):
		return -1
	case lessPoint(b, a):
		return 1
	}
	return 0
}

func uniquePoints(pts []orb.Point) []orb.Point {
	if len(pts) == 0 {
		return nil
	}
	slices.SortFunc(pts, comparePoints)
	return slices.Compact(pts)
}

func onAnyLine(p orb.Point, lines []orb.LineString) bool {
	for _, l := range lines {
		for i := 0; i+1 < len(l); i++ {
			if sign(orient(l[i], l[i+1], p)) != 0 {
				continue
			}
			if b := segmentBound(l[i], l[i+1]); b.Contains(p) {
				return true
			}
		}
	}
	return false
}
