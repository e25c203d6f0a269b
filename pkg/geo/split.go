package geo

import (
	"slices"

	"github.com/paulmach/orb"
)

type cut struct {
	seg int
	t   float64
	p   orb.Point
}

// SplitLine splits ls at the given points. Each point is located on the
// closest segment of ls and inserted verbatim, so pieces of different
// polylines split at the same point share bit-identical endpoints. Points
// equal to the first or last vertex do not split. With no effective cut the
// result is a single copy of ls.
func SplitLine(ls orb.LineString, points []orb.Point) []orb.LineString {
	if len(ls) < 2 {
		return nil
	}
	first, last := ls[0], ls[len(ls)-1]

	var cuts []cut
	for _, p := range uniquePoints(slices.Clone(points)) {
		if p == first || p == last {
			continue
		}
		best := cut{seg: -1}
		bestDist := 0.0
		for i := 0; i+1 < len(ls); i++ {
			t, d := project(p, ls[i], ls[i+1])
			if best.seg < 0 || d < bestDist {
				best = cut{seg: i, t: t, p: p}
				bestDist = d
			}
		}
		cuts = append(cuts, best)
	}
	if len(cuts) == 0 {
		return []orb.LineString{slices.Clone(ls)}
	}
	slices.SortStableFunc(cuts, func(a, b cut) int {
		if a.seg != b.seg {
			return a.seg - b.seg
		}
		switch {
		case a.t < b.t:
			return -1
		case a.t > b.t:
			return 1
		}
		return 0
	})

	var pieces []orb.LineString
	current := orb.LineString{ls[0]}
	push := func(p orb.Point) {
		if current[len(current)-1] != p {
			current = append(current, p)
		}
	}
	next := 0
	for i := 0; i+1 < len(ls); i++ {
		for ; next < len(cuts) && cuts[next].seg == i; next++ {
			push(cuts[next].p)
			if len(current) > 1 {
				pieces = append(pieces, current)
			}
			current = orb.LineString{cuts[next].p}
		}
		push(ls[i+1])
	}
	if len(current) > 1 {
		pieces = append(pieces, current)
	}
	return pieces
}
