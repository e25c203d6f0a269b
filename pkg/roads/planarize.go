package roads

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"

	"github.com/heralds-project/heralds/pkg/errors"
	"github.com/heralds-project/heralds/pkg/geo"
)

// DefaultNearbyFactor bounds the intersection search: two roads are tested
// when their centres are closer than this many road lengths.
const DefaultNearbyFactor = 2.0

// PlanarizeOptions configures [Planarize].
type PlanarizeOptions struct {
	// NearbyFactor scales a road's length into its search radius. Zero means
	// [DefaultNearbyFactor].
	NearbyFactor float64

	Logger *log.Logger
}

// PlanarizeReport summarizes a [Planarize] run.
type PlanarizeReport struct {
	Roads        int // Roads offered
	Candidates   int // Road pairs tested for intersection
	Intersecting int // Pairs that share at least one point
	SplitPoints  int // Representative points found, counted once per pair
	Pieces       int // Atomic pieces returned
	Duplicates   int // Pieces dropped because their endpoint pair was taken
	Degenerate   int // Zero-length or closed pieces dropped
	Unsplit      int // Roads returned as a single piece
}

type centre struct {
	idx int
	p   orb.Point
}

func (c centre) Point() orb.Point { return c.p }

// Planarize splits every road at its intersections with nearby roads.
//
// A pair of roads is tested when either road's centre (its length-weighted
// centroid) lies within NearbyFactor times that road's length of the other
// centre. Each intersection is reduced to split points as described by
// [geo.Intersection.Representatives]; a composite intersection with no
// point components aborts the run with a DEGENERATE_GEOMETRY error naming
// the pair. Both roads of a pair are split at the same coordinates.
//
// Pieces are returned road by road in path order. A piece whose unordered
// endpoint pair was already produced is dropped, as are zero-length and
// closed pieces, so at most one piece joins any two junctions.
func Planarize(ctx context.Context, roads []orb.LineString, opts PlanarizeOptions) ([]orb.LineString, PlanarizeReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	factor := opts.NearbyFactor
	if factor == 0 {
		factor = DefaultNearbyFactor
	}
	if err := validateRoads(roads); err != nil {
		return nil, PlanarizeReport{}, err
	}

	report := PlanarizeReport{Roads: len(roads)}
	pairs, err := candidatePairs(ctx, roads, factor)
	if err != nil {
		return nil, report, err
	}
	report.Candidates = len(pairs)

	cuts := make([][]orb.Point, len(roads))
	for _, pr := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		x := geo.IntersectLines(roads[pr[0]], roads[pr[1]])
		if x.IsEmpty() {
			continue
		}
		pts, err := x.Representatives()
		if err != nil {
			return nil, report, &errors.GeometryError{Roads: pr, Kind: x.Kind.String(), WKT: x.WKT()}
		}
		report.Intersecting++
		report.SplitPoints += len(pts)
		cuts[pr[0]] = append(cuts[pr[0]], pts...)
		cuts[pr[1]] = append(cuts[pr[1]], pts...)
	}

	seen := make(map[[2]orb.Point]struct{})
	var out []orb.LineString
	for i, r := range roads {
		pieces := geo.SplitLine(r, cuts[i])
		if len(pieces) == 1 {
			report.Unsplit++
		}
		for _, p := range pieces {
			first, last := p[0], p[len(p)-1]
			if first == last || planar.Length(p) == 0 {
				report.Degenerate++
				continue
			}
			key := endpointKey(first, last)
			if _, dup := seen[key]; dup {
				report.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p)
		}
	}
	report.Pieces = len(out)

	logger.Debug("planarized roads",
		"roads", report.Roads,
		"candidates", report.Candidates,
		"intersecting", report.Intersecting,
		"pieces", report.Pieces,
		"duplicates", report.Duplicates,
		"degenerate", report.Degenerate)
	return out, report, nil
}

// candidatePairs returns the road pairs (i < j) to test, sorted. The
// relation is symmetric: a pair qualifies when either road finds the other
// within its own radius.
func candidatePairs(ctx context.Context, roads []orb.LineString, factor float64) ([][2]int, error) {
	if len(roads) < 2 {
		return nil, nil
	}
	centres := make([]centre, len(roads))
	lengths := make([]float64, len(roads))
	bound := orb.Bound{Min: roadCentre(roads[0]), Max: roadCentre(roads[0])}
	for i, r := range roads {
		centres[i] = centre{idx: i, p: roadCentre(r)}
		lengths[i] = planar.Length(r)
		bound = bound.Extend(centres[i].p)
	}

	qt := quadtree.New(bound.Pad(1e-9))
	for _, c := range centres {
		if err := qt.Add(c); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "index road centre %d", c.idx)
		}
	}

	set := make(map[[2]int]struct{})
	var buf []orb.Pointer
	for i, c := range centres {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		radius := factor * lengths[i]
		if radius <= 0 {
			continue
		}
		area := orb.Bound{Min: c.p, Max: c.p}.Pad(radius)
		buf = qt.InBound(buf[:0], area)
		for _, found := range buf {
			other := found.(centre)
			if other.idx == i || planar.Distance(c.p, other.p) >= radius {
				continue
			}
			set[[2]int{min(i, other.idx), max(i, other.idx)}] = struct{}{}
		}
	}

	pairs := make([][2]int, 0, len(set))
	for pr := range set {
		pairs = append(pairs, pr)
	}
	slices.SortFunc(pairs, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	return pairs, nil
}

// roadCentre returns the length-weighted centroid of r, or its first point
// when r has zero length.
func roadCentre(r orb.LineString) orb.Point {
	var cx, cy, total float64
	for i := 0; i+1 < len(r); i++ {
		l := planar.Distance(r[i], r[i+1])
		cx += l * (r[i][0] + r[i+1][0]) / 2
		cy += l * (r[i][1] + r[i+1][1]) / 2
		total += l
	}
	if total == 0 {
		return r[0]
	}
	return orb.Point{cx / total, cy / total}
}

func endpointKey(a, b orb.Point) [2]orb.Point {
	if b[0] < a[0] || (b[0] == a[0] && b[1] < a[1]) {
		a, b = b, a
	}
	return [2]orb.Point{a, b}
}
